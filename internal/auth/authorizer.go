// Package auth resolves bearer API keys to actors. It is the core's only
// view of "who is calling": handlers resolve an Actor here and pass its id
// explicitly into every service operation.
package auth

import (
	"context"
	"errors"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// ErrInvalidKey is returned when an API key does not resolve to any actor.
var ErrInvalidKey = errors.New("invalid API key")

// Actor is a resolved caller identity.
type Actor struct {
	ActorID string     `json:"actorId"`
	Role    model.Role `json:"role"`
	// System marks the privileged write path used by automated analysis
	// jobs (alert and spectral ingestion). System actors have no user id.
	System bool `json:"system"`
}

// Authorizer validates an API key and resolves the actor behind it.
type Authorizer interface {
	Authorize(ctx context.Context, apiKey string) (*Actor, error)
}

// StoreAuthorizer resolves keys against the users table, plus one configured
// system key for the privileged path.
type StoreAuthorizer struct {
	store     store.Store
	systemKey string
}

// NewStoreAuthorizer creates an authorizer backed by the given store. An
// empty systemKey disables the system path.
func NewStoreAuthorizer(s store.Store, systemKey string) *StoreAuthorizer {
	return &StoreAuthorizer{store: s, systemKey: systemKey}
}

func (a *StoreAuthorizer) Authorize(ctx context.Context, apiKey string) (*Actor, error) {
	if apiKey == "" {
		return nil, ErrInvalidKey
	}
	if a.systemKey != "" && apiKey == a.systemKey {
		return &Actor{Role: model.RoleAdmin, System: true}, nil
	}
	u, err := a.store.Users().GetByAPIKey(ctx, apiKey)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}
	return &Actor{ActorID: u.UserID, Role: u.Role}, nil
}
