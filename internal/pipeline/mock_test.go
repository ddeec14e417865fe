package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/model"
	"github.com/timi233/enterprise-brain/internal/records"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// collectEmitter gathers snapshots in memory while enforcing the same stream
// contract the NDJSON emitter does, so an out-of-order emission fails the
// test that produced it.
type collectEmitter struct {
	seq   sequencer
	snaps []model.Snapshot
}

func (c *collectEmitter) Emit(snap model.Snapshot) error {
	if err := c.seq.check(snap); err != nil {
		return err
	}
	c.snaps = append(c.snaps, snap)
	return nil
}

func (c *collectEmitter) last() model.Snapshot {
	return c.snaps[len(c.snaps)-1]
}

// fakeSearcher serves canned hits by query. The financial stages search
// concurrently, so access is locked.
type fakeSearcher struct {
	mu      sync.Mutex
	hits    map[string][]extract.SearchHit
	errs    map[string]error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]extract.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.hits[query], nil
}

func (f *fakeSearcher) searched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// fakeLLM serves canned generations by stage label.
type fakeLLM struct {
	mu      sync.Mutex
	out     map[string]string
	errs    map[string]error
	prompts map[string]string
}

func (f *fakeLLM) Generate(_ context.Context, stage, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prompts == nil {
		f.prompts = make(map[string]string)
	}
	f.prompts[stage] = prompt
	if err, ok := f.errs[stage]; ok {
		return "", err
	}
	return f.out[stage], nil
}

type fakeResolver struct {
	entities map[string]*model.Entity
	err      error
	names    []string
}

func (f *fakeResolver) Resolve(_ context.Context, name string) (*model.Entity, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return nil, f.err
	}
	return f.entities[name], nil
}

type fakeCache struct {
	views  map[string]model.View
	getErr error
	puts   []string
}

func (f *fakeCache) Get(_ context.Context, key string) (*model.View, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.views[key]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (f *fakeCache) Put(_ context.Context, key string, view model.View) error {
	if f.views == nil {
		f.views = make(map[string]model.View)
	}
	f.views[key] = view
	f.puts = append(f.puts, key)
	return nil
}

// writeBack records one customer-table update.
type writeBack struct {
	kind string
	id   int64
	ref  int64
	text string
}

type fakeCustomers struct {
	mu     sync.Mutex
	writes []writeBack
	err    error
}

func (f *fakeCustomers) record(w writeBack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	return f.err
}

func (f *fakeCustomers) UpdateAddress(_ context.Context, customerID int64, address, dataSource string) error {
	return f.record(writeBack{kind: "address", id: customerID, text: address + "|" + dataSource})
}

func (f *fakeCustomers) UpdateIndustry(_ context.Context, customerID, industryID int64) error {
	return f.record(writeBack{kind: "industry", id: customerID, ref: industryID})
}

func (f *fakeCustomers) UpdateBrain(_ context.Context, customerID, brainID int64) error {
	return f.record(writeBack{kind: "brain", id: customerID, ref: brainID})
}

func (f *fakeCustomers) UpdateChainLeader(_ context.Context, customerID, chainLeaderID int64) error {
	return f.record(writeBack{kind: "chain_leader", id: customerID, ref: chainLeaderID})
}

func (f *fakeCustomers) byKind(kind string) []writeBack {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []writeBack
	for _, w := range f.writes {
		if w.kind == kind {
			out = append(out, w)
		}
	}
	return out
}

type fakeChains struct {
	exact map[string]*model.Entity
	fuzzy map[string]*model.Entity // keyed by base name
}

func (f *fakeChains) FindByExactName(_ context.Context, name string) (*model.Entity, error) {
	return f.exact[name], nil
}

func (f *fakeChains) FindByFuzzyName(_ context.Context, _, baseName string) (*model.Entity, error) {
	return f.fuzzy[baseName], nil
}

type fakeBrains struct {
	industryIDs map[string]int64
	brains      map[int64][]records.Brain
	leaders     map[int64]bool
}

func (f *fakeBrains) IndustryIDByName(_ context.Context, name string) (int64, error) {
	return f.industryIDs[name], nil
}

func (f *fakeBrains) BrainsForIndustry(_ context.Context, industryID int64) ([]records.Brain, error) {
	return f.brains[industryID], nil
}

func (f *fakeBrains) HasChainLeaders(_ context.Context, industryID int64) (bool, error) {
	return f.leaders[industryID], nil
}

// fixture wires a pipeline over fakes. Every lookup misses until a test
// fills the relevant map in.
type fixture struct {
	searcher  *fakeSearcher
	llm       *fakeLLM
	resolver  *fakeResolver
	cache     *fakeCache
	customers *fakeCustomers
	chains    *fakeChains
	brains    *fakeBrains
	runner    *Runner
	pipeline  *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	names, err := extract.NewNameExtractor()
	require.NoError(t, err)

	fx := &fixture{
		searcher:  &fakeSearcher{hits: make(map[string][]extract.SearchHit), errs: make(map[string]error)},
		llm:       &fakeLLM{out: make(map[string]string), errs: make(map[string]error)},
		resolver:  &fakeResolver{entities: make(map[string]*model.Entity)},
		cache:     &fakeCache{},
		customers: &fakeCustomers{},
		chains:    &fakeChains{exact: make(map[string]*model.Entity), fuzzy: make(map[string]*model.Entity)},
		brains:    &fakeBrains{industryIDs: make(map[string]int64), brains: make(map[int64][]records.Brain), leaders: make(map[int64]bool)},
	}
	fx.runner = NewRunner(names, fx.searcher, fx.llm, fx.customers, fx.chains, fx.brains)
	fx.pipeline = New(names, fx.resolver, fx.cache, fx.runner)
	return fx
}

// qingdaoBeer is the primary-origin entity most tests resolve to.
func qingdaoBeer() *model.Entity {
	return &model.Entity{
		ID:          1,
		DisplayName: "青岛啤酒股份有限公司",
		Region:      "市南区",
		Address:     "青岛市市南区登州路56号",
		Industry:    "食品饮料制造业",
		DataSource:  "录入",
		Origin:      model.OriginPrimary,
	}
}
