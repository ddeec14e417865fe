package model

// SchemaVersion tags serialized profiles so stale cached payload shapes are
// treated as absent instead of being mis-parsed.
const SchemaVersion = "v1"

// Stage placeholders shown to the client before the owning stage runs.
const (
	PlaceholderQuerying  = "查询中..."
	PlaceholderSearching = "搜索中..."
	PlaceholderAnalyzing = "分析中..."
	PlaceholderLoading   = "加载中..."
	PlaceholderMissing   = "待补充"
)

// Terminal placeholders substituted when a stage finds no data.
const (
	NoRevenueData   = "暂无营收数据"
	NoRankingData   = "暂无排名信息"
	NoNewsData      = "暂无最新商业资讯"
	ChainUnassigned = "暂未归类"
)

// BadRegionSentinel is a historical data-quality defect: secondary-origin
// records carry this district regardless of where the company actually is.
// The location stage re-derives the region for such records and only a
// non-sentinel replacement may overwrite it.
const BadRegionSentinel = "莱西市"

// Reference is one numbered news citation.
type Reference struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// NewsDigest is the news stage output: a cited summary plus its sources.
type NewsDigest struct {
	Summary    Field       `json:"summary"`
	References []Reference `json:"references"`
}

// Profile is the accumulating enrichment aggregate. It starts as a copy of
// the entity's known fields plus placeholders for everything not yet
// computed. Stages own disjoint fields; a value set by an earlier stage is
// never overwritten except for the documented bad-region correction.
type Profile struct {
	Entity Entity `json:"entity"`

	Name       string `json:"name"`
	DataSource string `json:"data_source"`

	Region   Field `json:"region"`
	Address  Field `json:"address"`
	Industry Field `json:"industry"`

	IndustryBrain Field `json:"industry_brain"`
	ChainStatus   Field `json:"chain_status"`
	Revenue       Field `json:"revenue"`
	Ranking       Field `json:"ranking"`

	News    NewsDigest `json:"news"`
	Summary Field      `json:"summary"`
}

// NewProfile seeds a profile from a resolved entity. Known entity fields
// start set; everything else starts pending with its stage placeholder.
func NewProfile(e Entity) Profile {
	p := Profile{
		Entity:        e,
		Name:          e.DisplayName,
		DataSource:    e.DataSource,
		Region:        Pending(PlaceholderMissing),
		Address:       Pending(PlaceholderMissing),
		Industry:      Pending(PlaceholderMissing),
		IndustryBrain: Pending(PlaceholderQuerying),
		ChainStatus:   Pending(PlaceholderQuerying),
		Revenue:       Pending(PlaceholderSearching),
		Ranking:       Pending(PlaceholderAnalyzing),
		News:          NewsDigest{Summary: Pending(PlaceholderLoading)},
		Summary:       Pending(PlaceholderAnalyzing),
	}
	if e.Region != "" {
		p.Region = Set(e.Region)
	}
	if e.Address != "" {
		p.Address = Set(e.Address)
	}
	if e.Industry != "" {
		p.Industry = Set(e.Industry)
	}
	return p
}

// Details is the identity block of a profile view.
type Details struct {
	Name          string `json:"name"`
	Region        string `json:"region"`
	Address       string `json:"address"`
	Industry      string `json:"industry"`
	IndustryBrain string `json:"industry_brain"`
	ChainStatus   string `json:"chain_status"`
	RevenueInfo   string `json:"revenue_info"`
	CompanyStatus string `json:"company_status"`
	DataSource    string `json:"data_source"`
}

// NewsView is the news block of a profile view.
type NewsView struct {
	Summary    string      `json:"summary"`
	References []Reference `json:"references"`
}

// View is the client-facing rendering of a profile: display strings with
// placeholders standing in for pending fields. This is the payload shape
// serialized into snapshots and the result cache.
type View struct {
	CompanyName   string   `json:"company_name"`
	Summary       string   `json:"summary"`
	Details       Details  `json:"details"`
	News          NewsView `json:"news"`
	SchemaVersion string   `json:"schema_version"`
}

// View renders the profile for emission.
func (p Profile) View() View {
	refs := p.News.References
	if refs == nil {
		refs = []Reference{}
	}
	return View{
		CompanyName: p.Name,
		Summary:     p.Summary.String(),
		Details: Details{
			Name:          p.Name,
			Region:        p.Region.String(),
			Address:       p.Address.String(),
			Industry:      p.Industry.String(),
			IndustryBrain: p.IndustryBrain.String(),
			ChainStatus:   p.ChainStatus.String(),
			RevenueInfo:   p.Revenue.String(),
			CompanyStatus: p.Ranking.String(),
			DataSource:    p.DataSource,
		},
		News: NewsView{
			Summary:    p.News.Summary.String(),
			References: refs,
		},
		SchemaVersion: SchemaVersion,
	}
}
