package extract

import (
	"regexp"
	"strings"
)

var cityPatterns = []*regexp.Regexp{
	// Municipalities first so the generic pattern never splits them.
	regexp.MustCompile(`(北京市|上海市|天津市|重庆市)`),
	regexp.MustCompile(`([^省自治区市]{2,6}市)`),
	regexp.MustCompile(`(香港|澳门)`),
}

// Words that regularly show up inside a "...市" match that is actually part
// of a company name, not a city.
var cityExcludeWords = []string{"公司", "集团", "有限", "股份", "企业", "商贸", "科技", "发展"}

// CityFromAddress extracts a city-level region from a street address.
// Returns "" when nothing city-like is found.
func CityFromAddress(address string) string {
	if address == "" {
		return ""
	}
	for _, re := range cityPatterns {
		m := re.FindStringSubmatch(address)
		if m == nil {
			continue
		}
		city := m[1]
		excluded := false
		for _, w := range cityExcludeWords {
			if strings.Contains(city, w) {
				excluded = true
				break
			}
		}
		if !excluded {
			return city
		}
	}
	return ""
}

// AddressQueries returns the search phrasings tried, in order, when an
// entity has no usable address on record.
func AddressQueries(companyName string) []string {
	return []string{
		companyName + " 注册地址",
		companyName + " 公司地址",
		companyName + " 总部地址",
		companyName + " 办公地址",
	}
}

// Address-change notices outrank stale registered addresses.
var addressPriorityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:地址变更|新办公地址|总部新|迁至).*?([^。\n]*(?:市|区|县)[^。\n]*(?:街道|路|号|大厦|中心|园区)[^。\n]*)`),
	regexp.MustCompile(`(?:当前地址|现地址|现办公地址)[:：]\s*([^。\n]+(?:市|区|县|镇|街道|路|号)[^。\n]*)`),
}

var addressStaleWords = []string{"吊销", "注销", "已迁出", "原地址"}

// AddressFromContent pulls the most plausible current address for a company
// out of search result text. Priority patterns (change notices) are tried
// before the generic ones; obviously stale matches are skipped.
func AddressFromContent(content, companyName string) string {
	for _, re := range addressPriorityPatterns {
		if m := re.FindStringSubmatch(content); m != nil {
			addr := strings.TrimSpace(m[1])
			if plausibleAddress(addr) {
				return addr
			}
		}
	}

	generic := []*regexp.Regexp{
		regexp.MustCompile(regexp.QuoteMeta(companyName) + `.*?(?:注册地址|公司地址|总部地址|办公地址|地址)[:：]\s*([^。\n]+(?:市|区|县|镇|街道|路|号)[^。\n]*)`),
		regexp.MustCompile(`(?:注册地址|公司地址|总部地址|办公地址|地址)[:：]\s*([^。\n]+(?:市|区|县|镇|街道|路|号)[^。\n]*)`),
		regexp.MustCompile(`(?:位于|坐落于|设在)[:：]?\s*([^。\n]+(?:市|区|县|镇|街道|路|号)[^。\n]*)`),
		regexp.MustCompile(regexp.QuoteMeta(companyName) + `[^。\n]*?([^。\n]*(?:省|市|区|县)[^。\n]*(?:街道|路|号|大厦|中心|园区)[^。\n]*)`),
	}
	for _, re := range generic {
		if m := re.FindStringSubmatch(content); m != nil {
			addr := strings.TrimSpace(m[1])
			if !plausibleAddress(addr) {
				continue
			}
			stale := false
			for _, w := range addressStaleWords {
				if strings.Contains(addr, w) {
					stale = true
					break
				}
			}
			if !stale {
				return addr
			}
		}
	}
	return ""
}

func plausibleAddress(addr string) bool {
	if len([]rune(addr)) <= 5 {
		return false
	}
	return strings.Contains(addr, "市") || strings.Contains(addr, "区") || strings.Contains(addr, "县")
}
