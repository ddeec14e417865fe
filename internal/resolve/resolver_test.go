package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// spyReader records the lookups made against one record set.
type spyReader struct {
	exactCalls []string
	fuzzyCalls [][2]string // {name, baseName}

	exactResult *model.Entity
	fuzzyResult *model.Entity
	exactErr    error
	fuzzyErr    error
}

func (s *spyReader) FindByExactName(_ context.Context, name string) (*model.Entity, error) {
	s.exactCalls = append(s.exactCalls, name)
	return s.exactResult, s.exactErr
}

func (s *spyReader) FindByFuzzyName(_ context.Context, name, baseName string) (*model.Entity, error) {
	s.fuzzyCalls = append(s.fuzzyCalls, [2]string{name, baseName})
	return s.fuzzyResult, s.fuzzyErr
}

func newTestResolver(t *testing.T, primary, secondary *spyReader) *Resolver {
	t.Helper()
	names, err := extract.NewNameExtractor()
	require.NoError(t, err)
	return NewResolver(primary, secondary, names)
}

func TestResolveExactPrimaryWins(t *testing.T) {
	primary := &spyReader{exactResult: &model.Entity{ID: 1, DisplayName: "青岛啤酒股份有限公司", Origin: model.OriginPrimary}}
	secondary := &spyReader{}
	r := newTestResolver(t, primary, secondary)

	entity, err := r.Resolve(context.Background(), "青岛啤酒股份有限公司")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, int64(1), entity.ID)

	// No further passes after the first hit.
	assert.Equal(t, []string{"青岛啤酒股份有限公司"}, primary.exactCalls)
	assert.Empty(t, secondary.exactCalls)
	assert.Empty(t, primary.fuzzyCalls)
	assert.Empty(t, secondary.fuzzyCalls)
}

func TestResolveExactSecondaryBeforeFuzzy(t *testing.T) {
	primary := &spyReader{}
	secondary := &spyReader{exactResult: &model.Entity{ID: 9, DisplayName: "海尔集团", Origin: model.OriginSecondary}}
	r := newTestResolver(t, primary, secondary)

	entity, err := r.Resolve(context.Background(), "海尔集团")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, model.OriginSecondary, entity.Origin)

	// Both exact passes ran; fuzzy never did.
	assert.Len(t, primary.exactCalls, 1)
	assert.Len(t, secondary.exactCalls, 1)
	assert.Empty(t, primary.fuzzyCalls)
	assert.Empty(t, secondary.fuzzyCalls)
}

func TestResolveFuzzyUsesStrippedBase(t *testing.T) {
	primary := &spyReader{fuzzyResult: &model.Entity{ID: 3, DisplayName: "青岛啤酒股份有限公司"}}
	secondary := &spyReader{}
	r := newTestResolver(t, primary, secondary)

	entity, err := r.Resolve(context.Background(), "青岛啤酒有限公司")
	require.NoError(t, err)
	require.NotNil(t, entity)

	require.Len(t, primary.fuzzyCalls, 1)
	assert.Equal(t, "青岛啤酒有限公司", primary.fuzzyCalls[0][0])
	assert.Equal(t, "青岛啤酒", primary.fuzzyCalls[0][1])
	assert.Empty(t, secondary.fuzzyCalls)
}

func TestResolveStripsLongestSuffixOnce(t *testing.T) {
	primary := &spyReader{}
	secondary := &spyReader{}
	r := newTestResolver(t, primary, secondary)

	entity, err := r.Resolve(context.Background(), "海尔集团股份有限公司")
	require.NoError(t, err)
	assert.Nil(t, entity)

	// 集团股份有限公司 strips in one pass; the remaining 海尔 is the base.
	require.Len(t, primary.fuzzyCalls, 1)
	assert.Equal(t, "海尔", primary.fuzzyCalls[0][1])
	require.Len(t, secondary.fuzzyCalls, 1)
	assert.Equal(t, "海尔", secondary.fuzzyCalls[0][1])
}

func TestResolveNoMatchAnywhere(t *testing.T) {
	primary := &spyReader{}
	secondary := &spyReader{}
	r := newTestResolver(t, primary, secondary)

	entity, err := r.Resolve(context.Background(), "不存在的公司")
	require.NoError(t, err)
	assert.Nil(t, entity)

	// All four passes ran in order.
	assert.Len(t, primary.exactCalls, 1)
	assert.Len(t, secondary.exactCalls, 1)
	assert.Len(t, primary.fuzzyCalls, 1)
	assert.Len(t, secondary.fuzzyCalls, 1)
}

func TestResolvePropagatesStoreError(t *testing.T) {
	primary := &spyReader{exactErr: fmt.Errorf("connection reset")}
	secondary := &spyReader{}
	r := newTestResolver(t, primary, secondary)

	_, err := r.Resolve(context.Background(), "青岛啤酒")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exact primary pass")
	assert.Empty(t, secondary.exactCalls)
}
