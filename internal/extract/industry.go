package extract

import (
	"regexp"
	"strings"
)

var industryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(啤酒|饮料|食品|制造|生产|加工)(?:业|行业|企业|公司)`),
	regexp.MustCompile(`(汽车|机械|电子|化工|纺织|钢铁|有色金属)(?:业|行业|制造)`),
	regexp.MustCompile(`(金融|银行|保险|证券|投资)(?:业|行业|服务)`),
	regexp.MustCompile(`(房地产|建筑|工程|装修)(?:业|行业|开发)`),
	regexp.MustCompile(`(零售|批发|贸易|商业|电商)(?:业|行业)`),
	regexp.MustCompile(`(物流|运输|快递|仓储)(?:业|行业|服务)`),
	regexp.MustCompile(`(教育|培训|咨询|医疗|健康)(?:业|行业|服务)`),
	regexp.MustCompile(`(旅游|酒店|餐饮|娱乐)(?:业|行业|服务)`),
	regexp.MustCompile(`(软件|互联网|科技|IT|通信|电信)(?:业|行业|服务)`),
	regexp.MustCompile(`(人工智能|大数据|云计算|区块链)(?:业|行业|技术)`),
	regexp.MustCompile(`(石油|天然气|煤炭|电力|新能源|太阳能|风能)(?:业|行业)`),
	regexp.MustCompile(`(农业|种植|养殖|渔业|林业)(?:业|行业)`),
	regexp.MustCompile(`主要从事\s*([^。，,\s]{2,10}?)(?:业务|行业|生产|经营)`),
	regexp.MustCompile(`(?:属于|隶属于|归属)\s*([^。，,\s]{2,10}?)(?:行业|领域)`),
	regexp.MustCompile(`([^。，,\s]{2,10}?)(?:行业|领域)(?:的|中的)(?:龙头|领军|知名|著名)企业`),
}

// industryMapping normalizes a matched keyword to the canonical industry
// name used by the record sets.
var industryMapping = map[string]string{
	"啤酒":  "食品饮料制造业",
	"饮料":  "食品饮料制造业",
	"食品":  "食品饮料制造业",
	"汽车":  "汽车制造业",
	"机械":  "机械制造业",
	"电子":  "电子信息制造业",
	"化工":  "化学工业",
	"纺织":  "纺织业",
	"钢铁":  "钢铁工业",
	"金融":  "金融业",
	"银行":  "金融业",
	"保险":  "保险业",
	"房地产": "房地产业",
	"建筑":  "建筑业",
	"零售":  "零售业",
	"批发":  "批发业",
	"物流":  "物流业",
	"教育":  "教育业",
	"医疗":  "医疗健康业",
	"旅游":  "旅游业",
	"软件":  "软件和信息技术服务业",
	"互联网": "互联网和相关服务业",
	"通信":  "电信、广播电视和卫星传输服务业",
	"石油":  "石油和天然气开采业",
	"电力":  "电力、热力、燃气及水生产和供应业",
	"农业":  "农、林、牧、渔业",
}

// IndustryFromName infers an industry directly from the company name.
// Returns "" when the name carries no recognizable industry marker.
func IndustryFromName(companyName string) string {
	switch {
	case strings.Contains(companyName, "啤酒"):
		return "食品饮料制造业"
	case strings.Contains(companyName, "银行"):
		return "金融业"
	case strings.Contains(companyName, "保险"):
		return "保险业"
	case strings.Contains(companyName, "科技"), strings.Contains(companyName, "技术"):
		return "软件和信息技术服务业"
	case strings.Contains(companyName, "地产"), strings.Contains(companyName, "置业"):
		return "房地产业"
	case strings.Contains(companyName, "汽车"):
		return "汽车制造业"
	}
	return ""
}

// IndustryQuery is the search phrasing used to look up a company's industry.
func IndustryQuery(companyName string) string {
	return companyName + " 行业 主营业务"
}

// IndustryFromSearchResults scans search hits for an industry keyword and
// normalizes it via the canonical mapping. Returns "" when nothing matched.
func IndustryFromSearchResults(hits []SearchHit) string {
	const maxHits = 5
	for i, h := range hits {
		if i >= maxHits {
			break
		}
		content := h.Snippet + " " + h.Title
		for _, re := range industryPatterns {
			m := re.FindStringSubmatch(content)
			if m == nil {
				continue
			}
			industry := strings.TrimSpace(m[1])
			for key, canonical := range industryMapping {
				if strings.Contains(industry, key) {
					return canonical
				}
			}
			if n := len([]rune(industry)); n >= 2 && n <= 15 {
				if !strings.HasSuffix(industry, "业") {
					industry += "业"
				}
				return industry
			}
		}
	}
	return ""
}
