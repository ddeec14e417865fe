package records

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/timi233/enterprise-brain/internal/model"
)

// CustomerStore reads and updates the customer table (qd_customer) together
// with its industry, brain, and chain-leader joins.
type CustomerStore struct {
	pool Pool
}

// NewCustomerStore creates a CustomerStore.
func NewCustomerStore(pool Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

const customerSelect = `
	SELECT c.customer_id, c.customer_name,
	       COALESCE(c.data_source, ''), COALESCE(c.address, ''),
	       c.industry_id, c.brain_id, c.chain_leader_id,
	       COALESCE(i.industry_name, ''), COALESCE(b.brain_name, ''),
	       COALESCE(e.enterprise_name, ''), COALESCE(a.district_name, '')
	FROM qd_customer c
	LEFT JOIN qd_industry i ON c.industry_id = i.industry_id
	LEFT JOIN qd_industry_brain b ON c.brain_id = b.brain_id
	LEFT JOIN qd_enterprise_chain_leader e ON c.chain_leader_id = e.enterprise_id
	LEFT JOIN qd_area a ON b.area_id = a.area_id`

// FindByExactName returns the customer whose name matches exactly, or nil.
func (s *CustomerStore) FindByExactName(ctx context.Context, name string) (*model.Entity, error) {
	row := s.pool.QueryRow(ctx, customerSelect+`
	WHERE c.customer_name = $1
	LIMIT 1`, name)

	entity, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "records: customer exact lookup")
	}
	return entity, nil
}

// FindByFuzzyName returns the best substring match on the suffix-stripped
// base name. Exact matches on the full name order first, then prefix matches
// on the base, then any substring hit.
func (s *CustomerStore) FindByFuzzyName(ctx context.Context, name, baseName string) (*model.Entity, error) {
	row := s.pool.QueryRow(ctx, customerSelect+`
	WHERE c.customer_name LIKE $1
	ORDER BY
	    CASE
	        WHEN c.customer_name = $2 THEN 1
	        WHEN c.customer_name LIKE $3 THEN 2
	        ELSE 3
	    END
	LIMIT 1`, "%"+baseName+"%", name, baseName+"%")

	entity, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "records: customer fuzzy lookup")
	}
	return entity, nil
}

// UpdateAddress writes a corrected address and its provenance back to the
// customer row.
func (s *CustomerStore) UpdateAddress(ctx context.Context, customerID int64, address, dataSource string) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE qd_customer SET address = $2, data_source = $3
	WHERE customer_id = $1`, customerID, address, dataSource)
	if err != nil {
		return eris.Wrapf(err, "records: update address for customer %d", customerID)
	}
	return nil
}

// UpdateIndustry links the customer to a resolved industry.
func (s *CustomerStore) UpdateIndustry(ctx context.Context, customerID, industryID int64) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE qd_customer SET industry_id = $2
	WHERE customer_id = $1`, customerID, industryID)
	if err != nil {
		return eris.Wrapf(err, "records: update industry for customer %d", customerID)
	}
	return nil
}

// UpdateBrain links the customer to a matched industry brain.
func (s *CustomerStore) UpdateBrain(ctx context.Context, customerID, brainID int64) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE qd_customer SET brain_id = $2
	WHERE customer_id = $1`, customerID, brainID)
	if err != nil {
		return eris.Wrapf(err, "records: update brain for customer %d", customerID)
	}
	return nil
}

// UpdateChainLeader links the customer to its chain-leader enterprise.
func (s *CustomerStore) UpdateChainLeader(ctx context.Context, customerID, chainLeaderID int64) error {
	_, err := s.pool.Exec(ctx, `
	UPDATE qd_customer SET chain_leader_id = $2
	WHERE customer_id = $1`, customerID, chainLeaderID)
	if err != nil {
		return eris.Wrapf(err, "records: update chain leader for customer %d", customerID)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*model.Entity, error) {
	var (
		e             model.Entity
		industryID    *int64
		brainID       *int64
		chainLeaderID *int64
	)
	err := row.Scan(
		&e.ID, &e.DisplayName,
		&e.DataSource, &e.Address,
		&industryID, &brainID, &chainLeaderID,
		&e.Industry, &e.BrainName,
		&e.ChainLeaderName, &e.Region,
	)
	if err != nil {
		return nil, err
	}

	e.Origin = model.OriginPrimary
	if industryID != nil {
		e.IndustryID = *industryID
	}
	if brainID != nil {
		e.BrainID = *brainID
	}
	if chainLeaderID != nil {
		e.ChainLeaderID = *chainLeaderID
	}
	return &e, nil
}
