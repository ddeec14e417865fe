package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/model"
)

// EntityResolver matches an extracted name to a canonical record.
type EntityResolver interface {
	Resolve(ctx context.Context, name string) (*model.Entity, error)
}

// ResultCache stores finished enrichment views by normalized name.
type ResultCache interface {
	Get(ctx context.Context, key string) (*model.View, bool, error)
	Put(ctx context.Context, key string, view model.View) error
}

// Pipeline orchestrates one enrichment request: extract a name, resolve it,
// serve from cache when possible, otherwise run the stages and cache the
// result.
type Pipeline struct {
	names    *extract.NameExtractor
	resolver EntityResolver
	cache    ResultCache
	runner   *Runner
}

// New creates a pipeline with injected collaborators.
func New(names *extract.NameExtractor, resolver EntityResolver, cache ResultCache, runner *Runner) *Pipeline {
	return &Pipeline{names: names, resolver: resolver, cache: cache, runner: runner}
}

const (
	msgExtract    = "正在提取企业名称..."
	errExtractMsg = "无法提取企业名称"
	msgResolve    = "正在查询本地数据库..."
	errResolveMsg = "未找到企业信息"
	msgBaseInfo   = "基础信息加载完成"
)

// nameVariants are appended to a missed name before giving up on resolution.
var nameVariants = []string{"股份有限公司", "有限公司", "集团", "公司"}

// Run processes one free-text query, streaming snapshots to em. A nil return
// means the stream ended with a terminal snapshot; pipeline-level failures
// emit the single stage -1 system-error snapshot before returning the error.
func (pl *Pipeline) Run(ctx context.Context, inputText string, em Emitter) error {
	if err := pl.run(ctx, inputText, em); err != nil {
		zap.L().Error("pipeline: run aborted",
			zap.String("input", inputText),
			zap.Error(err),
		)
		view := (&model.Profile{}).View()
		sysErr := model.Snapshot{
			Stage:   model.SystemErrorStage,
			Status:  model.StatusError,
			Message: "处理过程中出现错误: " + err.Error(),
			Data:    &view,
		}
		if emitErr := em.Emit(sysErr); emitErr != nil {
			zap.L().Warn("pipeline: failed to emit system error snapshot", zap.Error(emitErr))
		}
		return err
	}
	return nil
}

func (pl *Pipeline) run(ctx context.Context, inputText string, em Emitter) error {
	empty := model.Profile{}
	if err := em.Emit(snapshot(model.StageExtract, model.StatusProcessing, msgExtract, &empty)); err != nil {
		return err
	}

	extracted, ok := pl.names.Extract(inputText)
	if !ok {
		// Local patterns found nothing; infer from search results over
		// the raw input.
		extracted, ok = pl.inferFromSearch(ctx, inputText)
	}
	if !ok {
		zap.L().Info("pipeline: name extraction failed", zap.String("input", inputText))
		return em.Emit(snapshot(model.StageExtract, model.StatusError, errExtractMsg, &empty))
	}
	name := extracted.Name
	zap.L().Info("pipeline: extracted name",
		zap.String("name", name),
		zap.Bool("complete", extracted.IsComplete),
		zap.String("confidence", string(extracted.Confidence)),
	)

	// Cache check runs before any collaborator call so a hit costs nothing.
	key := extract.Normalize(name)
	if cached, hit, err := pl.cache.Get(ctx, key); err != nil {
		zap.L().Warn("pipeline: cache read failed, treating as miss", zap.Error(err))
	} else if hit {
		zap.L().Info("pipeline: cache hit", zap.String("key", key))
		return em.Emit(model.Snapshot{
			Stage:   model.StageComplete,
			Status:  model.StatusSuccess,
			Message: msgComplete,
			Data:    cached,
		})
	}

	// An incomplete name gets one search-inference upgrade before resolution.
	if !extracted.IsComplete {
		if upgraded, upOK := pl.inferFromSearch(ctx, name); upOK && upgraded.IsComplete {
			name = upgraded.Name
			zap.L().Info("pipeline: upgraded incomplete name",
				zap.String("name", name),
			)
		}
	}

	named := model.Profile{Name: name}
	if err := em.Emit(snapshot(model.StageResolve, model.StatusProcessing, msgResolve, &named)); err != nil {
		return err
	}

	entity, err := pl.resolveWithVariants(ctx, name)
	if err != nil {
		return eris.Wrap(err, "pipeline: resolve")
	}
	if entity == nil {
		zap.L().Info("pipeline: no record matched", zap.String("name", name))
		return em.Emit(snapshot(model.StageResolve, model.StatusError, errResolveMsg, &named))
	}

	profile := model.NewProfile(*entity)
	if err := em.Emit(snapshot(model.StageBaseInfo, model.StatusSuccess, msgBaseInfo, &profile)); err != nil {
		return err
	}

	if err := pl.runner.Run(ctx, &profile, em); err != nil {
		return err
	}

	if err := pl.cache.Put(ctx, key, profile.View()); err != nil {
		zap.L().Warn("pipeline: cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// resolveWithVariants tries the name as-is, then with common corporate
// suffixes appended.
func (pl *Pipeline) resolveWithVariants(ctx context.Context, name string) (*model.Entity, error) {
	entity, err := pl.resolver.Resolve(ctx, name)
	if err != nil || entity != nil {
		return entity, err
	}
	for _, suffix := range nameVariants {
		entity, err = pl.resolver.Resolve(ctx, name+suffix)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			zap.L().Info("pipeline: matched name variant",
				zap.String("name", name),
				zap.String("variant", name+suffix),
			)
			return entity, nil
		}
	}
	return nil, nil
}

func (pl *Pipeline) inferFromSearch(ctx context.Context, query string) (model.ExtractedName, bool) {
	hits, err := pl.runner.searcher.Search(ctx, query)
	if err != nil {
		zap.L().Warn("pipeline: name inference search failed", zap.Error(err))
		return model.ExtractedName{}, false
	}
	return pl.names.FromSearchResults(hits)
}
