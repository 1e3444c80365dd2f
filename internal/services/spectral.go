package services

import (
	"context"
	"fmt"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// SpectralService bridges the imagery pipeline and the map collaborator.
// Ingest and status updates come from the pipeline side; reads are
// owner-scoped and degrade to empty.
type SpectralService struct {
	store store.Store
	owner *ownership.Resolver
}

func NewSpectralService(s store.Store, owner *ownership.Resolver) *SpectralService {
	return &SpectralService{store: s, owner: owner}
}

// CreateSpectralData ingests a processed capture. Pipeline-side: no
// ownership check, same trust model as alert creation.
func (s *SpectralService) CreateSpectralData(ctx context.Context, sd *model.SpectralData) (*model.SpectralData, error) {
	if sd.FieldID == "" {
		return nil, fmt.Errorf("%w: fieldId is required", model.ErrValidation)
	}
	if sd.ImageURL == "" {
		return nil, fmt.Errorf("%w: imageUrl is required", model.ErrValidation)
	}
	if sd.CaptureDate == 0 {
		return nil, fmt.Errorf("%w: captureDate is required", model.ErrValidation)
	}
	if sd.ProcessingStatus == "" {
		sd.ProcessingStatus = model.ProcessingPending
	}
	if !sd.ProcessingStatus.IsValid() {
		return nil, fmt.Errorf("%w: unknown processingStatus %q", model.ErrValidation, sd.ProcessingStatus)
	}
	return s.store.Spectral().Create(ctx, sd)
}

// UpdateProcessingStatus advances a capture through the pipeline states.
func (s *SpectralService) UpdateProcessingStatus(ctx context.Context, spectralID string, status model.ProcessingStatus) (*model.SpectralData, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown processingStatus %q", model.ErrValidation, status)
	}
	return s.store.Spectral().UpdateStatus(ctx, spectralID, status)
}

// ListSpectralData returns the field's captures, newest capture first.
// Degrades to empty when the caller cannot see the field.
func (s *SpectralService) ListSpectralData(ctx context.Context, callerID, fieldID string) ([]*model.SpectralData, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, fieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	return s.store.Spectral().ListByField(ctx, fieldID)
}

// GetFieldMapDetails bundles the farm bounding box, field geometry, and the
// latest spectral capture for map rendering. Returns nil when the caller
// cannot see the field.
func (s *SpectralService) GetFieldMapDetails(ctx context.Context, callerID, fieldID string) (*model.FieldMapDetails, error) {
	if callerID == "" {
		return nil, nil
	}
	allowed, field, farm, err := s.owner.Begin(callerID).Field(ctx, fieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	latest, err := s.store.Spectral().LatestByField(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	return &model.FieldMapDetails{
		FarmBoundingBox: farm.BoundingBox,
		FieldGeometry:   field.Geometry,
		CropType:        field.CropType,
		Area:            field.Area,
		LatestSpectral:  latest,
	}, nil
}
