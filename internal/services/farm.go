// Package services implements the core use cases over the store. Mutations
// fail loudly with the model error taxonomy; queries degrade to empty results
// on any authorization failure so that entity existence never leaks across
// tenants.
package services

import (
	"context"
	"fmt"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// FarmService orchestrates farm-related use cases.
type FarmService struct {
	store store.Store
	owner *ownership.Resolver
}

func NewFarmService(s store.Store, owner *ownership.Resolver) *FarmService {
	return &FarmService{store: s, owner: owner}
}

// CreateFarm registers a new farm owned by the caller.
func (s *FarmService) CreateFarm(ctx context.Context, callerID string, f *model.Farm) (*model.Farm, error) {
	if callerID == "" {
		return nil, model.ErrUnauthenticated
	}
	if err := validateFarm(f); err != nil {
		return nil, err
	}
	f.OwnerID = callerID
	return s.store.Farms().Create(ctx, f)
}

// UpdateFarm patches a farm's mutable attributes. Only the owner may update.
func (s *FarmService) UpdateFarm(ctx context.Context, callerID, farmID string, upd model.FarmUpdate) (*model.Farm, error) {
	if callerID == "" {
		return nil, model.ErrUnauthenticated
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", model.ErrValidation)
	}
	allowed, _, err := s.owner.Begin(callerID).Farm(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, model.ErrAccessDenied
	}
	return s.store.Farms().Update(ctx, farmID, upd)
}

// GetUserFarms lists the caller's farms; no identity means no farms.
func (s *FarmService) GetUserFarms(ctx context.Context, callerID string) ([]*model.Farm, error) {
	if callerID == "" {
		return nil, nil
	}
	return s.store.Farms().ListByOwner(ctx, callerID)
}

// GetFarmByID returns the farm if the caller owns it, nil otherwise. Absent
// and non-owned farms are indistinguishable to the caller.
func (s *FarmService) GetFarmByID(ctx context.Context, callerID, farmID string) (*model.Farm, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, farm, err := s.owner.Begin(callerID).Farm(ctx, farmID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	return farm, nil
}

func validateFarm(f *model.Farm) error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if f.CropType == "" {
		return fmt.Errorf("%w: cropType is required", model.ErrValidation)
	}
	if f.Area <= 0 {
		return fmt.Errorf("%w: area must be positive", model.ErrValidation)
	}
	return nil
}
