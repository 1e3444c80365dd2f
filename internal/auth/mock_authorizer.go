package auth

import (
	"context"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

const (
	// LocalDevAPIKey is the hardcoded API key for local development only
	LocalDevAPIKey = "sk_local_agrisense_dev_key"
	// LocalDevSystemKey is the hardcoded system key for local development only
	LocalDevSystemKey = "sk_local_agrisense_system_key"
	// LocalDevUserID is the actor every dev key resolves to
	LocalDevUserID = "agrisense-dev"
)

// MockAuthorizer provides a simple authorizer for local development.
// It only recognizes the two hardcoded dev keys.
type MockAuthorizer struct{}

// NewMockAuthorizer creates a new MockAuthorizer for local development
func NewMockAuthorizer() *MockAuthorizer { return &MockAuthorizer{} }

func (m *MockAuthorizer) Authorize(ctx context.Context, apiKey string) (*Actor, error) {
	switch apiKey {
	case LocalDevAPIKey:
		return &Actor{ActorID: LocalDevUserID, Role: model.RoleAdmin}, nil
	case LocalDevSystemKey:
		return &Actor{Role: model.RoleAdmin, System: true}, nil
	}
	return nil, ErrInvalidKey
}

// SeedLocalDevUser ensures the user row the dev key resolves to exists.
// The farms table references users, so dev-key writes need the row in
// place. Safe to call repeatedly.
func SeedLocalDevUser(ctx context.Context, s store.Store) error {
	_, err := s.Users().Get(ctx, LocalDevUserID)
	if err == nil {
		return nil
	}
	if !model.IsNotFound(err) {
		return err
	}
	_, err = s.Users().Create(ctx, &model.User{
		UserID: LocalDevUserID,
		Email:  "dev@agrisense.local",
		Role:   model.RoleAdmin,
		APIKey: LocalDevAPIKey,
	})
	return err
}
