package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/timi233/enterprise-brain/internal/model"
)

// ChainLeaderStore reads the chain-leader enterprise table
// (qd_enterprise_chain_leader). Rows from this table carry no address and
// their district can be stale, so entities are marked secondary-origin.
type ChainLeaderStore struct {
	pool Pool
}

// NewChainLeaderStore creates a ChainLeaderStore.
func NewChainLeaderStore(pool Pool) *ChainLeaderStore {
	return &ChainLeaderStore{pool: pool}
}

const chainLeaderSelect = `
	SELECT e.enterprise_id, e.enterprise_name,
	       e.industry_id,
	       COALESCE(i.industry_name, ''), COALESCE(a.district_name, '')
	FROM qd_enterprise_chain_leader e
	LEFT JOIN qd_industry i ON e.industry_id = i.industry_id
	LEFT JOIN qd_area a ON e.area_id = a.area_id`

// FindByExactName returns the chain-leader enterprise whose name matches
// exactly, or nil.
func (s *ChainLeaderStore) FindByExactName(ctx context.Context, name string) (*model.Entity, error) {
	row := s.pool.QueryRow(ctx, chainLeaderSelect+`
	WHERE e.enterprise_name = $1
	LIMIT 1`, name)

	entity, err := scanChainLeader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "records: chain leader exact lookup")
	}
	return entity, nil
}

// FindByFuzzyName returns the best substring match on the suffix-stripped
// base name, with the same tie-break ordering as the customer store.
func (s *ChainLeaderStore) FindByFuzzyName(ctx context.Context, name, baseName string) (*model.Entity, error) {
	row := s.pool.QueryRow(ctx, chainLeaderSelect+`
	WHERE e.enterprise_name LIKE $1
	ORDER BY
	    CASE
	        WHEN e.enterprise_name = $2 THEN 1
	        WHEN e.enterprise_name LIKE $3 THEN 2
	        ELSE 3
	    END
	LIMIT 1`, "%"+baseName+"%", name, baseName+"%")

	entity, err := scanChainLeader(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "records: chain leader fuzzy lookup")
	}
	return entity, nil
}

func scanChainLeader(row pgx.Row) (*model.Entity, error) {
	var (
		e          model.Entity
		industryID *int64
	)
	err := row.Scan(&e.ID, &e.DisplayName, &industryID, &e.Industry, &e.Region)
	if err != nil {
		return nil, err
	}

	e.Origin = model.OriginSecondary
	// A chain-leader enterprise is its own chain leader.
	e.ChainLeaderID = e.ID
	e.ChainLeaderName = e.DisplayName
	if industryID != nil {
		e.IndustryID = *industryID
	}
	return &e, nil
}
