package services

import (
	"context"
	"fmt"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// FieldService orchestrates field-related use cases.
type FieldService struct {
	store store.Store
	owner *ownership.Resolver
}

func NewFieldService(s store.Store, owner *ownership.Resolver) *FieldService {
	return &FieldService{store: s, owner: owner}
}

// CreateField adds a field under a farm the caller owns.
func (s *FieldService) CreateField(ctx context.Context, callerID string, f *model.Field) (*model.Field, error) {
	if callerID == "" {
		return nil, model.ErrUnauthenticated
	}
	if err := validateField(f); err != nil {
		return nil, err
	}
	allowed, _, err := s.owner.Begin(callerID).Farm(ctx, f.FarmID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, model.ErrAccessDenied
	}
	return s.store.Fields().Create(ctx, f)
}

// GetFieldsByFarm lists the farm's fields; degrades to empty when the caller
// does not own the farm or the farm is absent.
func (s *FieldService) GetFieldsByFarm(ctx context.Context, callerID, farmID string) ([]*model.Field, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, _, err := s.owner.Begin(callerID).Farm(ctx, farmID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	return s.store.Fields().ListByFarm(ctx, farmID)
}

// GetFieldByID returns the field if the caller owns its chain, nil otherwise.
func (s *FieldService) GetFieldByID(ctx context.Context, callerID, fieldID string) (*model.Field, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, field, _, err := s.owner.Begin(callerID).Field(ctx, fieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	return field, nil
}

func validateField(f *model.Field) error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if len(f.Geometry) < 1 {
		return fmt.Errorf("%w: geometry requires at least one point", model.ErrValidation)
	}
	if f.CropType == "" {
		return fmt.Errorf("%w: cropType is required", model.ErrValidation)
	}
	if f.Area <= 0 {
		return fmt.Errorf("%w: area must be positive", model.ErrValidation)
	}
	if f.PlantingDate != nil && f.ExpectedHarvest != nil && *f.ExpectedHarvest < *f.PlantingDate {
		return fmt.Errorf("%w: expectedHarvest precedes plantingDate", model.ErrValidation)
	}
	return nil
}
