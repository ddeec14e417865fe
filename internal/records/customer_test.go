package records

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func ptr[T any](v T) *T { return &v }

var customerCols = []string{
	"customer_id", "customer_name", "data_source", "address",
	"industry_id", "brain_id", "chain_leader_id",
	"industry_name", "brain_name", "chain_leader_name", "district_name",
}

func TestCustomerFindByExactName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM qd_customer c").
		WithArgs("青岛啤酒股份有限公司").
		WillReturnRows(pgxmock.NewRows(customerCols).AddRow(
			int64(1), "青岛啤酒股份有限公司", "local", "青岛市市北区登州路56号",
			ptr(int64(3)), ptr(int64(2)), ptr(int64(5)),
			"啤酒制造业", "食品饮料产业大脑", "青岛啤酒股份有限公司", "市北区",
		))

	store := NewCustomerStore(mock)
	entity, err := store.FindByExactName(context.Background(), "青岛啤酒股份有限公司")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, int64(1), entity.ID)
	assert.Equal(t, model.OriginPrimary, entity.Origin)
	assert.Equal(t, "青岛市市北区登州路56号", entity.Address)
	assert.Equal(t, "啤酒制造业", entity.Industry)
	assert.Equal(t, int64(3), entity.IndustryID)
	assert.Equal(t, int64(5), entity.ChainLeaderID)
	assert.Equal(t, "市北区", entity.Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerFindByExactNameMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM qd_customer c").
		WithArgs("不存在的企业").
		WillReturnRows(pgxmock.NewRows(customerCols))

	store := NewCustomerStore(mock)
	entity, err := store.FindByExactName(context.Background(), "不存在的企业")
	require.NoError(t, err)
	assert.Nil(t, entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerFindByFuzzyNamePatterns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// The substring pattern uses the stripped base, the exact tie-break
	// uses the full query name, the prefix tie-break uses the base.
	mock.ExpectQuery("FROM qd_customer c").
		WithArgs("%青岛啤酒%", "青岛啤酒有限公司", "青岛啤酒%").
		WillReturnRows(pgxmock.NewRows(customerCols).AddRow(
			int64(1), "青岛啤酒股份有限公司", "local", "",
			nil, nil, nil,
			"", "", "", "",
		))

	store := NewCustomerStore(mock)
	entity, err := store.FindByFuzzyName(context.Background(), "青岛啤酒有限公司", "青岛啤酒")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "青岛啤酒股份有限公司", entity.DisplayName)
	assert.Zero(t, entity.IndustryID)
	assert.Zero(t, entity.BrainID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerFindTieBreakOrdering(t *testing.T) {
	// The fuzzy query must rank exact name first, then base-prefix,
	// then any substring match.
	assert.Contains(t, customerSelect, "LEFT JOIN qd_industry i")

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`ORDER BY`).
		WithArgs("%海尔%", "海尔", "海尔%").
		WillReturnRows(pgxmock.NewRows(customerCols))

	store := NewCustomerStore(mock)
	entity, err := store.FindByFuzzyName(context.Background(), "海尔", "海尔")
	require.NoError(t, err)
	assert.Nil(t, entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpdateAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE qd_customer SET address").
		WithArgs(int64(7), "青岛市崂山区科苑纬一路1号", "web_search").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewCustomerStore(mock)
	err = store.UpdateAddress(context.Background(), 7, "青岛市崂山区科苑纬一路1号", "web_search")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpdateIndustryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE qd_customer SET industry_id").
		WithArgs(int64(7), int64(3)).
		WillReturnError(fmt.Errorf("connection refused"))

	store := NewCustomerStore(mock)
	err = store.UpdateIndustry(context.Background(), 7, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update industry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerUpdateBrainAndChainLeader(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE qd_customer SET brain_id").
		WithArgs(int64(7), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE qd_customer SET chain_leader_id").
		WithArgs(int64(7), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewCustomerStore(mock)
	require.NoError(t, store.UpdateBrain(context.Background(), 7, 2))
	require.NoError(t, store.UpdateChainLeader(context.Background(), 7, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
