package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/model"
	"github.com/timi233/enterprise-brain/internal/records"
	"github.com/timi233/enterprise-brain/internal/search"
)

// LeaderMarker appears in a chain status when the company leads its chain.
const LeaderMarker = "链主"

// webDataSource is the provenance label for fields recovered by web search.
const webDataSource = "网络搜索"

// CustomerWriter writes newly discovered facts back to the customer table.
type CustomerWriter interface {
	UpdateAddress(ctx context.Context, customerID int64, address, dataSource string) error
	UpdateIndustry(ctx context.Context, customerID, industryID int64) error
	UpdateBrain(ctx context.Context, customerID, brainID int64) error
	UpdateChainLeader(ctx context.Context, customerID, chainLeaderID int64) error
}

// ChainReader looks up chain-leader enterprises.
type ChainReader interface {
	FindByExactName(ctx context.Context, name string) (*model.Entity, error)
	FindByFuzzyName(ctx context.Context, name, baseName string) (*model.Entity, error)
}

// BrainReader looks up industries and their brain platforms.
type BrainReader interface {
	IndustryIDByName(ctx context.Context, name string) (int64, error)
	BrainsForIndustry(ctx context.Context, industryID int64) ([]records.Brain, error)
	HasChainLeaders(ctx context.Context, industryID int64) (bool, error)
}

// Runner executes the enrichment stages against a resolved profile. Each
// stage is fault-isolated: a failure logs, substitutes the stage's terminal
// placeholder, and the run continues.
type Runner struct {
	names     *extract.NameExtractor
	searcher  search.Searcher
	llm       search.Summarizer
	customers CustomerWriter
	chains    ChainReader
	brains    BrainReader
}

// NewRunner creates a stage runner.
func NewRunner(
	names *extract.NameExtractor,
	searcher search.Searcher,
	llm search.Summarizer,
	customers CustomerWriter,
	chains ChainReader,
	brains BrainReader,
) *Runner {
	return &Runner{
		names:     names,
		searcher:  searcher,
		llm:       llm,
		customers: customers,
		chains:    chains,
		brains:    brains,
	}
}

// Stage progress messages on the wire.
const (
	msgLocation      = "正在补充地区和行业信息..."
	msgEcosystem     = "正在查询产业大脑和产业链信息..."
	msgEcosystemDone = "产业信息查询完成"
	msgFinancial     = "正在搜索营收、排名与商业资讯并进行智能分析..."
	msgFinancialDone = "营收、排名与商业资讯查询完成"
	msgSynthesis     = "正在生成综合分析报告..."
	msgComplete      = "企业信息分析完成"
)

func snapshot(stage int, status model.SnapshotStatus, msg string, p *model.Profile) model.Snapshot {
	view := p.View()
	return model.Snapshot{Stage: stage, Status: status, Message: msg, Data: &view}
}

// Run drives stages 4 through 8, emitting snapshots as fields fill in.
// Returned errors come only from the emitter; stage failures never abort.
func (r *Runner) Run(ctx context.Context, p *model.Profile, em Emitter) error {
	if err := em.Emit(snapshot(model.StageLocation, model.StatusProcessing, msgLocation, p)); err != nil {
		return err
	}
	r.isolate(ctx, p, "location", r.stageLocation, func(p *model.Profile) {
		if !p.Region.IsSet() {
			p.Region = model.NoData(model.PlaceholderMissing)
		}
	})
	r.isolate(ctx, p, "industry", r.stageIndustry, func(p *model.Profile) {
		if !p.Industry.IsSet() {
			p.Industry = model.NoData(model.PlaceholderMissing)
		}
	})

	if err := em.Emit(snapshot(model.StageEcosystem, model.StatusProcessing, msgEcosystem, p)); err != nil {
		return err
	}
	r.isolate(ctx, p, "ecosystem", r.stageEcosystem, func(p *model.Profile) {
		if !p.IndustryBrain.IsSet() {
			p.IndustryBrain = model.NoData(p.Region.Or("") + "暂无相应产业大脑")
		}
		if !p.ChainStatus.IsSet() {
			p.ChainStatus = model.NoData(model.ChainUnassigned)
		}
	})
	if err := em.Emit(snapshot(model.StageEcosystem, model.StatusSuccess, msgEcosystemDone, p)); err != nil {
		return err
	}

	if err := em.Emit(snapshot(model.StageFinancial, model.StatusProcessing, msgFinancial, p)); err != nil {
		return err
	}
	// Revenue, ranking, and news are independent lookups over disjoint
	// profile fields, so they fan out concurrently and join into one
	// snapshot.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.isolate(gctx, p, "revenue", r.stageRevenue, func(p *model.Profile) {
			p.Revenue = model.NoData(model.NoRevenueData)
		})
		return nil
	})
	g.Go(func() error {
		r.isolate(gctx, p, "ranking", r.stageRanking, func(p *model.Profile) {
			p.Ranking = model.NoData(model.NoRankingData)
		})
		return nil
	})
	g.Go(func() error {
		r.isolate(gctx, p, "news", r.stageNews, func(p *model.Profile) {
			p.News = model.NewsDigest{Summary: model.NoData(model.NoNewsData)}
		})
		return nil
	})
	_ = g.Wait()
	if err := em.Emit(snapshot(model.StageFinancial, model.StatusSuccess, msgFinancialDone, p)); err != nil {
		return err
	}

	if err := em.Emit(snapshot(model.StageSynthesis, model.StatusProcessing, msgSynthesis, p)); err != nil {
		return err
	}
	r.isolate(ctx, p, "synthesis", r.stageSynthesis, func(p *model.Profile) {
		p.Summary = model.Set(fallbackSynthesis(p))
	})

	return em.Emit(snapshot(model.StageComplete, model.StatusSuccess, msgComplete, p))
}

// isolate runs one stage, logging failures and applying the stage fallback.
func (r *Runner) isolate(ctx context.Context, p *model.Profile, name string, run func(context.Context, *model.Profile) error, fallback func(*model.Profile)) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("pipeline: stage panicked",
				zap.String("stage", name),
				zap.Any("panic", rec),
			)
			fallback(p)
		}
	}()

	if err := run(ctx, p); err != nil {
		zap.L().Warn("pipeline: stage failed, continuing with placeholder",
			zap.String("stage", name),
			zap.String("company", p.Name),
			zap.Error(err),
		)
		fallback(p)
	}
}

// stageLocation fills in a missing region, re-deriving it when a
// secondary-origin record carries the known-bad district. Only a non-sentinel
// city may overwrite the sentinel.
func (r *Runner) stageLocation(ctx context.Context, p *model.Profile) error {
	badRegion := p.Entity.Origin == model.OriginSecondary && p.Region.Or("") == model.BadRegionSentinel
	if p.Region.IsSet() && !badRegion {
		return nil
	}

	city := ""
	if p.Address.IsSet() {
		city = extract.CityFromAddress(p.Address.Value)
	}

	if city == "" {
		for _, query := range extract.AddressQueries(p.Name) {
			hits, err := r.searcher.Search(ctx, query)
			if err != nil {
				return err
			}
			addr := extract.AddressFromContent(hitsAsText(hits), p.Name)
			if addr == "" {
				continue
			}
			if !p.Address.IsSet() {
				p.Address = model.Set(addr)
				p.DataSource = webDataSource
				r.writeBackAddress(ctx, p, addr)
			}
			if city = extract.CityFromAddress(addr); city != "" {
				break
			}
		}
	}

	if city == "" || city == model.BadRegionSentinel {
		return nil
	}
	if badRegion {
		zap.L().Info("pipeline: corrected bad district",
			zap.String("company", p.Name),
			zap.String("old", model.BadRegionSentinel),
			zap.String("new", city),
		)
	}
	p.Region = model.Set(city)
	return nil
}

// stageIndustry fills in a missing industry from the name or a web search.
func (r *Runner) stageIndustry(ctx context.Context, p *model.Profile) error {
	if p.Industry.IsSet() {
		return nil
	}

	industry := extract.IndustryFromName(p.Name)
	if industry == "" {
		hits, err := r.searcher.Search(ctx, extract.IndustryQuery(p.Name))
		if err != nil {
			return err
		}
		industry = extract.IndustryFromSearchResults(hits)
	}
	if industry == "" {
		return nil
	}

	p.Industry = model.Set(industry)
	if p.Entity.Origin == model.OriginPrimary {
		industryID, err := r.brains.IndustryIDByName(ctx, industry)
		if err != nil {
			zap.L().Warn("pipeline: industry id lookup failed", zap.Error(err))
			return nil
		}
		if industryID > 0 {
			if err := r.customers.UpdateIndustry(ctx, p.Entity.ID, industryID); err != nil {
				zap.L().Warn("pipeline: industry write-back failed",
					zap.String("company", p.Name),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// stageEcosystem resolves the industry-brain platform and the chain role.
func (r *Runner) stageEcosystem(ctx context.Context, p *model.Profile) error {
	region := p.Region.Or("")
	industry := p.Industry.Or("")

	var industryID int64
	if industry != "" {
		var err error
		industryID, err = r.brains.IndustryIDByName(ctx, industry)
		if err != nil {
			return err
		}
	}

	if err := r.matchBrain(ctx, p, region, industryID); err != nil {
		return err
	}
	return r.matchChainRole(ctx, p, industry, industryID)
}

func (r *Runner) matchBrain(ctx context.Context, p *model.Profile, region string, industryID int64) error {
	if industryID > 0 {
		brains, err := r.brains.BrainsForIndustry(ctx, industryID)
		if err != nil {
			return err
		}
		if len(brains) > 0 {
			chosen := brains[0]
			if region != "" {
				for _, b := range brains {
					if b.District == region {
						chosen = b
						break
					}
				}
			}
			p.IndustryBrain = model.Set(chosen.Name)
			if p.Entity.Origin == model.OriginPrimary {
				if err := r.customers.UpdateBrain(ctx, p.Entity.ID, chosen.ID); err != nil {
					zap.L().Warn("pipeline: brain write-back failed",
						zap.String("company", p.Name),
						zap.Error(err),
					)
				}
			}
			return nil
		}
	}
	p.IndustryBrain = model.NoData(region + "暂无相应产业大脑")
	return nil
}

func (r *Runner) matchChainRole(ctx context.Context, p *model.Profile, industry string, industryID int64) error {
	leader, err := r.chains.FindByExactName(ctx, p.Name)
	if err != nil {
		return err
	}
	if leader == nil {
		baseName, _ := r.names.StripSuffix(p.Name)
		leader, err = r.chains.FindByFuzzyName(ctx, p.Name, baseName)
		if err != nil {
			return err
		}
	}

	switch {
	case leader != nil:
		chainIndustry := leader.Industry
		if chainIndustry == "" {
			chainIndustry = industry
		}
		p.ChainStatus = model.Set(chainIndustry + "，" + LeaderMarker)
	case industryID > 0:
		hasLeaders, err := r.brains.HasChainLeaders(ctx, industryID)
		if err != nil {
			return err
		}
		if hasLeaders {
			p.ChainStatus = model.Set(industry + "，成员企业")
		} else {
			p.ChainStatus = model.NoData(model.ChainUnassigned)
		}
	default:
		p.ChainStatus = model.NoData(model.ChainUnassigned)
	}

	if strings.Contains(p.ChainStatus.String(), LeaderMarker) {
		// A chain leader is its own chain-leader reference.
		p.Entity.ChainLeaderName = p.Name
		if leader != nil {
			p.Entity.ChainLeaderID = leader.ID
		}
		if p.Entity.Origin == model.OriginPrimary && leader != nil {
			if err := r.customers.UpdateChainLeader(ctx, p.Entity.ID, leader.ID); err != nil {
				zap.L().Warn("pipeline: chain leader write-back failed",
					zap.String("company", p.Name),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// stageRevenue searches for revenue figures and normalizes them into the
// fixed three-year sentence format.
func (r *Runner) stageRevenue(ctx context.Context, p *model.Profile) error {
	hits, err := r.searcher.Search(ctx, p.Name+" 营收")
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		p.Revenue = model.NoData(model.NoRevenueData)
		return nil
	}

	analysis, err := r.llm.Generate(ctx, "revenue", revenuePrompt(p.Name, hitsAsText(hits)))
	if err != nil {
		return err
	}
	if analysis == "" {
		p.Revenue = model.NoData(model.NoRevenueData)
		return nil
	}
	p.Revenue = model.Set(analysis)
	return nil
}

var china500Keywords = []string{"中国500强", "中国五百强", "财富中国500强", "财富500强"}

var industryRankKeywords = []string{
	"前五", "前5", "第一", "第二", "第三", "第四", "第五",
	"龙头", "领军", "领先", "排名第", "位列第",
}

// stageRanking checks national top-500 membership first, then industry
// top-five standing.
func (r *Runner) stageRanking(ctx context.Context, p *model.Profile) error {
	status, err := r.checkChina500(ctx, p.Name)
	if err != nil {
		return err
	}
	if status == "" && p.Industry.IsSet() {
		status, err = r.checkIndustryRanking(ctx, p.Name, p.Industry.Value)
		if err != nil {
			return err
		}
	}
	if status == "" {
		p.Ranking = model.NoData(model.NoRankingData)
		return nil
	}
	p.Ranking = model.Set(status)
	return nil
}

func (r *Runner) checkChina500(ctx context.Context, name string) (string, error) {
	queries := []string{
		name + " 中国五百强",
		name + " 中国500强企业",
		name + " 财富中国500强",
	}
	for _, query := range queries {
		hits, err := r.searcher.Search(ctx, query)
		if err != nil {
			return "", err
		}
		for _, hit := range top(hits, 5) {
			content := hit.Title + " " + hit.Snippet
			if !strings.Contains(content, name) {
				continue
			}
			for _, keyword := range china500Keywords {
				if !strings.Contains(content, keyword) {
					continue
				}
				detail, err := r.llm.Generate(ctx, "ranking", china500Prompt(content, name))
				if err != nil {
					return "", err
				}
				if containsAny(detail, "第", "排名", "位") {
					return "中国五百强 - " + detail, nil
				}
				return "中国五百强企业", nil
			}
		}
	}
	return "", nil
}

func (r *Runner) checkIndustryRanking(ctx context.Context, name, industry string) (string, error) {
	queries := []string{
		name + " " + industry + " 行业排名",
		name + " " + industry + " 龙头企业",
		industry + " 行业前五 " + name,
		industry + " 领军企业 " + name,
	}
	for _, query := range queries {
		hits, err := r.searcher.Search(ctx, query)
		if err != nil {
			return "", err
		}
		for _, hit := range top(hits, 5) {
			content := hit.Title + " " + hit.Snippet
			if !strings.Contains(content, name) || !containsAny(content, industryRankKeywords...) {
				continue
			}
			detail, err := r.llm.Generate(ctx, "ranking", industryRankingPrompt(content, name, industry))
			if err != nil {
				return "", err
			}
			if containsAny(detail, "行业前", "行业第", "龙头", "领军", "领先") {
				return detail, nil
			}
		}
	}
	return "", nil
}

// stageNews searches recent business news and produces a cited three-item
// digest with its sources.
func (r *Runner) stageNews(ctx context.Context, p *model.Profile) error {
	hits, err := r.searcher.Search(ctx, p.Name+" 新闻 订单 产品 合作 投资 业务 最新")
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		p.News = model.NewsDigest{Summary: model.NoData(model.NoNewsData)}
		return nil
	}

	digest, err := r.llm.Generate(ctx, "news", newsPrompt(p.Name, hitsAsContext(hits)))
	if err != nil {
		return err
	}
	if digest == "" {
		p.News = model.NewsDigest{Summary: model.NoData(model.NoNewsData)}
		return nil
	}

	p.News = model.NewsDigest{
		Summary:    model.Set(digest),
		References: newsReferences(hits),
	}
	return nil
}

// newsReferences keeps at most five sources with snippets capped at 100 runes.
func newsReferences(hits []extract.SearchHit) []model.Reference {
	refs := make([]model.Reference, 0, 5)
	for i, hit := range top(hits, 5) {
		snippet := hit.Snippet
		if runes := []rune(snippet); len(runes) > 100 {
			snippet = string(runes[:100]) + "..."
		}
		refs = append(refs, model.Reference{
			ID:      i + 1,
			Title:   hit.Title,
			URL:     hit.URL,
			Snippet: snippet,
		})
	}
	return refs
}

// stageSynthesis generates the final narrative assessment.
func (r *Runner) stageSynthesis(ctx context.Context, p *model.Profile) error {
	out, err := r.llm.Generate(ctx, "synthesis", synthesisPrompt(p))
	if err != nil {
		return err
	}
	if out == "" {
		p.Summary = model.Set(fallbackSynthesis(p))
		return nil
	}
	p.Summary = model.Set(out)
	return nil
}

func (r *Runner) writeBackAddress(ctx context.Context, p *model.Profile, addr string) {
	if p.Entity.Origin != model.OriginPrimary {
		return
	}
	if err := r.customers.UpdateAddress(ctx, p.Entity.ID, addr, webDataSource); err != nil {
		zap.L().Warn("pipeline: address write-back failed",
			zap.String("company", p.Name),
			zap.Error(err),
		)
	}
}

func top(hits []extract.SearchHit, n int) []extract.SearchHit {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
