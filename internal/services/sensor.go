package services

import (
	"context"
	"fmt"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/query"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// SensorService is the time-series facade: append-only inserts plus the two
// indexed read shapes.
type SensorService struct {
	store store.Store
	owner *ownership.Resolver
}

func NewSensorService(s store.Store, owner *ownership.Resolver) *SensorService {
	return &SensorService{store: s, owner: owner}
}

// AddReading appends a measurement for a field the caller owns. A zero
// timestamp defaults to now. Readings are immutable once written; duplicate
// (field, type, timestamp) rows are legal.
func (s *SensorService) AddReading(ctx context.Context, callerID string, r *model.SensorReading) (*model.SensorReading, error) {
	if callerID == "" {
		return nil, model.ErrUnauthenticated
	}
	if !r.SensorType.IsValid() {
		return nil, fmt.Errorf("%w: unknown sensorType %q", model.ErrValidation, r.SensorType)
	}
	if r.Unit == "" {
		return nil, fmt.Errorf("%w: unit is required", model.ErrValidation)
	}
	allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, r.FieldID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, model.ErrAccessDenied
	}
	return s.store.Readings().Insert(ctx, r)
}

// QueryReadings returns the field's readings, most recent first, optionally
// filtered by category and/or time window. The access path follows the filter
// shape (see internal/query). Degrades to empty on any authorization failure.
func (s *SensorService) QueryReadings(ctx context.Context, callerID string, q model.ReadingQuery) ([]*model.SensorReading, error) {
	if callerID == "" {
		return nil, nil
	}
	if q.SensorType != nil && !q.SensorType.IsValid() {
		return nil, nil
	}
	allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, q.FieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !allowed {
		return nil, nil
	}
	return s.store.Readings().Query(ctx, query.Choose(q), q)
}

// LatestPerCategory returns at most one reading per sensor category, the
// most recent of each, in the fixed category enumeration order. Categories
// with no readings are omitted.
func (s *SensorService) LatestPerCategory(ctx context.Context, callerID, fieldID string) ([]*model.SensorReading, error) {
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
	var out []*model.SensorReading
	for _, t := range model.SensorTypes() {
		r, err := s.store.Readings().LatestByType(ctx, fieldID, t)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
