package records

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timi233/enterprise-brain/internal/model"
)

var chainLeaderCols = []string{
	"enterprise_id", "enterprise_name", "industry_id", "industry_name", "district_name",
}

func TestChainLeaderFindByExactName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM qd_enterprise_chain_leader e").
		WithArgs("海尔集团").
		WillReturnRows(pgxmock.NewRows(chainLeaderCols).AddRow(
			int64(9), "海尔集团", ptr(int64(4)), "智能家电制造业", "莱西市",
		))

	store := NewChainLeaderStore(mock)
	entity, err := store.FindByExactName(context.Background(), "海尔集团")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, model.OriginSecondary, entity.Origin)
	// A chain-leader row is its own chain leader and carries no address.
	assert.Equal(t, int64(9), entity.ChainLeaderID)
	assert.Equal(t, "海尔集团", entity.ChainLeaderName)
	assert.Empty(t, entity.Address)
	assert.Equal(t, "莱西市", entity.Region)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainLeaderFindByFuzzyName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM qd_enterprise_chain_leader e").
		WithArgs("%海尔%", "海尔智家", "海尔%").
		WillReturnRows(pgxmock.NewRows(chainLeaderCols).AddRow(
			int64(9), "海尔集团", nil, "", "",
		))

	store := NewChainLeaderStore(mock)
	entity, err := store.FindByFuzzyName(context.Background(), "海尔智家", "海尔")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "海尔集团", entity.DisplayName)
	assert.Zero(t, entity.IndustryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChainLeaderFindMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM qd_enterprise_chain_leader e").
		WithArgs("无名公司").
		WillReturnRows(pgxmock.NewRows(chainLeaderCols))

	store := NewChainLeaderStore(mock)
	entity, err := store.FindByExactName(context.Background(), "无名公司")
	require.NoError(t, err)
	assert.Nil(t, entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}
