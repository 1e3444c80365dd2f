package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// UserService handles account provisioning.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

// CreateUser provisions an account and mints its API key. The key is returned
// once, on this call only; it is never serialized afterwards.
func (s *UserService) CreateUser(ctx context.Context, u *model.User) (*model.User, string, error) {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return nil, "", fmt.Errorf("%w: a valid email is required", model.ErrValidation)
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.APIKey = "sk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	created, err := s.store.Users().Create(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return created, u.APIKey, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}
