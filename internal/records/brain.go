package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Brain is one industry-brain platform row with its home district.
type Brain struct {
	ID       int64
	Name     string
	District string
}

// BrainStore reads the industry and industry-brain reference tables used to
// classify a company into a brain platform and a chain role.
type BrainStore struct {
	pool Pool
}

// NewBrainStore creates a BrainStore.
func NewBrainStore(pool Pool) *BrainStore {
	return &BrainStore{pool: pool}
}

// IndustryIDByName returns the industry ID for an exact name match, or 0.
func (s *BrainStore) IndustryIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
	SELECT industry_id FROM qd_industry
	WHERE industry_name = $1
	LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, eris.Wrap(err, "records: industry id lookup")
	}
	return id, nil
}

// BrainsForIndustry lists the brain platforms linked to an industry, each
// with its home district so callers can prefer a same-region brain.
func (s *BrainStore) BrainsForIndustry(ctx context.Context, industryID int64) ([]Brain, error) {
	rows, err := s.pool.Query(ctx, `
	SELECT ib.brain_id, ib.brain_name, COALESCE(a.district_name, '')
	FROM qd_industry_brain ib
	JOIN qd_brain_industry_rel bir ON ib.brain_id = bir.brain_id
	LEFT JOIN qd_area a ON ib.area_id = a.area_id
	WHERE bir.industry_id = $1`, industryID)
	if err != nil {
		return nil, eris.Wrap(err, "records: brains for industry")
	}
	defer rows.Close()

	var brains []Brain
	for rows.Next() {
		var b Brain
		if err := rows.Scan(&b.ID, &b.Name, &b.District); err != nil {
			return nil, eris.Wrap(err, "records: scan brain row")
		}
		brains = append(brains, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "records: iterate brain rows")
	}
	return brains, nil
}

// HasChainLeaders reports whether any chain-leader enterprise is registered
// for the industry.
func (s *BrainStore) HasChainLeaders(ctx context.Context, industryID int64) (bool, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
	SELECT COUNT(*) FROM qd_enterprise_chain_leader
	WHERE industry_id = $1`, industryID).Scan(&count)
	if err != nil {
		return false, eris.Wrap(err, "records: count chain leaders")
	}
	return count > 0, nil
}
