package pipeline

import (
	"fmt"
	"strings"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/model"
)

// SystemPrompt is the stable preamble shared by every generation call so
// repeated runs hit the provider-side prompt cache.
const SystemPrompt = "你是一个专业的企业信息分析助手，基于提供的资料输出准确、客观的中文分析，不编造数据。"

func revenuePrompt(name, rawInfo string) string {
	return fmt.Sprintf(`请对以下企业营收信息进行标准化总结：

企业名称：%s
原始营收信息：%s

请严格按照以下格式输出：

近三年营收为 [年份][金额]元 [年份][金额]元 [年份][金额]元，综合年增长率为[数字]%%。

要求：
1. 提取最近三年的营收数据，按时间顺序排列
2. 金额保留到亿元，如"298.1亿"
3. 计算三年的综合年增长率（复合增长率）
4. 如果数据不足三年，用现有数据
5. 严格按照格式，不要添加其他内容

示例：近三年营收为 2021年298.1亿元 2022年327.2亿元 2023年339.37亿元，综合年增长率为6.8%%。`, name, rawInfo)
}

func china500Prompt(content, name string) string {
	return fmt.Sprintf(`请从以下内容中提取关于"%s"在中国五百强中的具体排名信息：

内容：%s

请只返回具体的排名信息，例如："第123名"、"排名第45位"等。
如果没有找到具体排名，请返回"具体排名未知"。
不要返回其他解释性文字。`, name, content)
}

func industryRankingPrompt(content, name, industry string) string {
	return fmt.Sprintf(`请从以下内容中分析"%s"在"%s"行业中的地位和排名：

内容：%s

请判断该企业是否属于行业前五，并返回相应的地位描述。
如果是行业前五，请返回类似"行业前五"、"行业第二"、"行业龙头"等描述。
如果不是前五但有其他重要地位，请返回相应描述。
如果无法确定，请返回"行业地位未知"。
不要返回其他解释性文字。`, name, industry, content)
}

func newsPrompt(name, rawNews string) string {
	return fmt.Sprintf(`# 角色
你是一个专业的企业资讯分析师，能够精准分析企业商业动态，并以中立客观、新闻式的专业语气为用户提供企业资讯总结。

## 任务
基于以下企业商业资讯，提供结构化的资讯总结：

企业名称：%s
原始资讯内容：%s

## 输出要求
请严格按照以下格式输出，每条资讯总结控制在30-50字：

1. [资讯总结]【引用编号】
2. [资讯总结]【引用编号】
3. [资讯总结]【引用编号】

## 技能要求
1. 提取最重要的3条商业资讯，按重要性排序
2. 每条总结应简洁明了，突出核心信息
3. 保持中立客观的新闻式语气
4. 必须保留原始的引用编号【1】【2】【3】等
5. 如果资讯不足3条，则按实际数量输出
6. 禁止添加额外的分析或评论`, name, rawNews)
}

func synthesisPrompt(p *model.Profile) string {
	return fmt.Sprintf(`作为专业企业分析师，请基于以下信息生成简洁的企业综合评估：

企业名称：%s
所在地区：%s
所属行业：%s
产业大脑：%s
产业链状态：%s
营收分析：%s
企业地位：%s
商业资讯：%s

请生成一份150字以内的综合评估，包含：
1. 企业核心优势
2. 市场地位评价
3. 发展前景判断

保持专业、客观。`,
		p.Name,
		p.Region.String(),
		p.Industry.String(),
		p.IndustryBrain.String(),
		p.ChainStatus.String(),
		p.Revenue.String(),
		p.Ranking.String(),
		p.News.Summary.String(),
	)
}

// fallbackSynthesis is the deterministic summary used when generation fails.
func fallbackSynthesis(p *model.Profile) string {
	return fmt.Sprintf("%s是一家位于%s的%s企业，具有一定的市场地位。",
		p.Name, p.Region.Or(""), p.Industry.Or(""))
}

// hitsAsContext renders numbered search hits for citation-style prompts.
func hitsAsContext(hits []extract.SearchHit) string {
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "【%d】%s %s\n", i+1, h.Title, h.Snippet)
	}
	return b.String()
}

// hitsAsText renders hits as plain evidence text for extraction prompts.
func hitsAsText(hits []extract.SearchHit) string {
	var b strings.Builder
	for _, h := range hits {
		b.WriteString(h.Title)
		b.WriteString(" ")
		b.WriteString(h.Snippet)
		b.WriteString("\n")
	}
	return b.String()
}
