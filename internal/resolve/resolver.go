// Package resolve matches an extracted company name to a canonical record.
package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/model"
)

// Reader looks up entities in one record set by exact or fuzzy name.
type Reader interface {
	FindByExactName(ctx context.Context, name string) (*model.Entity, error)
	FindByFuzzyName(ctx context.Context, name, baseName string) (*model.Entity, error)
}

// SuffixStripper removes one trailing corporate suffix from a name, reporting
// whether anything was removed.
type SuffixStripper interface {
	StripSuffix(name string) (string, bool)
}

// Resolver resolves a name against the customer table first and the
// chain-leader enterprise table second.
type Resolver struct {
	primary   Reader
	secondary Reader
	stripper  SuffixStripper
}

// NewResolver creates a resolver over the two record sets.
func NewResolver(primary, secondary Reader, stripper SuffixStripper) *Resolver {
	return &Resolver{primary: primary, secondary: secondary, stripper: stripper}
}

// Resolve runs a four-pass cascade:
//  1. Exact name match in the customer table
//  2. Exact name match in the chain-leader table
//  3. Fuzzy match in the customer table on the suffix-stripped base
//  4. Fuzzy match in the chain-leader table on the same base
//
// Returns nil when no pass matches. Exact passes always run before fuzzy
// passes so a registered name can never lose to a substring hit.
func (r *Resolver) Resolve(ctx context.Context, name string) (*model.Entity, error) {
	entity, err := r.primary.FindByExactName(ctx, name)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: exact primary pass")
	}
	if entity != nil {
		zap.L().Debug("resolve: exact match in customer records",
			zap.String("name", name),
			zap.Int64("entity_id", entity.ID),
		)
		return entity, nil
	}

	entity, err = r.secondary.FindByExactName(ctx, name)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: exact secondary pass")
	}
	if entity != nil {
		zap.L().Debug("resolve: exact match in chain-leader records",
			zap.String("name", name),
			zap.Int64("entity_id", entity.ID),
		)
		return entity, nil
	}

	baseName, stripped := r.stripper.StripSuffix(name)
	if stripped {
		zap.L().Debug("resolve: falling back to fuzzy match",
			zap.String("name", name),
			zap.String("base_name", baseName),
		)
	}

	entity, err = r.primary.FindByFuzzyName(ctx, name, baseName)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: fuzzy primary pass")
	}
	if entity != nil {
		zap.L().Debug("resolve: fuzzy match in customer records",
			zap.String("name", name),
			zap.String("matched", entity.DisplayName),
		)
		return entity, nil
	}

	entity, err = r.secondary.FindByFuzzyName(ctx, name, baseName)
	if err != nil {
		return nil, eris.Wrap(err, "resolve: fuzzy secondary pass")
	}
	if entity != nil {
		zap.L().Debug("resolve: fuzzy match in chain-leader records",
			zap.String("name", name),
			zap.String("matched", entity.DisplayName),
		)
		return entity, nil
	}

	zap.L().Info("resolve: no match found", zap.String("name", name))
	return nil, nil
}
