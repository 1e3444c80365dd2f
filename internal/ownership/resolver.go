// Package ownership centralizes the ownership-chain checks every operation
// must pass. Field-scoped operations resolve Field -> Farm -> owner once,
// here, instead of re-fetching the parent in each handler.
package ownership

import (
	"context"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// Resolver answers "may this caller act on this farm/field".
type Resolver struct {
	store store.Store
}

// NewResolver wraps a store.
func NewResolver(s store.Store) *Resolver { return &Resolver{store: s} }

// Begin opens a request-scoped check scope for one caller identity. A scope
// memoizes lookups because a single request may re-check the same field
// repeatedly; scopes must never outlive the request or be shared across
// identities.
func (r *Resolver) Begin(callerID string) *Scope {
	return &Scope{
		r:        r,
		callerID: callerID,
		farms:    make(map[string]farmCheck),
		fields:   make(map[string]fieldCheck),
	}
}

type farmCheck struct {
	allowed bool
	farm    *model.Farm
}

type fieldCheck struct {
	allowed bool
	field   *model.Field
	farm    *model.Farm
}

// Scope resolves ownership for a single caller within a single request.
type Scope struct {
	r        *Resolver
	callerID string
	farms    map[string]farmCheck
	fields   map[string]fieldCheck
}

// CallerID returns the identity this scope checks against; empty means
// unauthenticated.
func (s *Scope) CallerID() string { return s.callerID }

// Farm looks up the farm and reports whether the caller owns it. A missing
// farm yields model.ErrNotFound.
func (s *Scope) Farm(ctx context.Context, farmID string) (bool, *model.Farm, error) {
	if c, ok := s.farms[farmID]; ok {
		return c.allowed, c.farm, nil
	}
	farm, err := s.r.store.Farms().GetByID(ctx, farmID)
	if err != nil {
		return false, nil, err
	}
	allowed := s.callerID != "" && farm.OwnerID == s.callerID
	s.farms[farmID] = farmCheck{allowed: allowed, farm: farm}
	return allowed, farm, nil
}

// Field resolves the field and its parent farm and reports whether the
// caller owns the chain. A missing field or farm yields model.ErrNotFound.
func (s *Scope) Field(ctx context.Context, fieldID string) (bool, *model.Field, *model.Farm, error) {
	if c, ok := s.fields[fieldID]; ok {
		return c.allowed, c.field, c.farm, nil
	}
	field, err := s.r.store.Fields().GetByID(ctx, fieldID)
	if err != nil {
		return false, nil, nil, err
	}
	allowed, farm, err := s.Farm(ctx, field.FarmID)
	if err != nil {
		return false, nil, nil, err
	}
	s.fields[fieldID] = fieldCheck{allowed: allowed, field: field, farm: farm}
	return allowed, field, farm, nil
}
