package services

import (
	"context"
	"fmt"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// AlertService manages the alert lifecycle. Creation is a pipeline-side
// operation and performs no ownership check; the user-facing transitions do.
type AlertService struct {
	store store.Store
	owner *ownership.Resolver
}

func NewAlertService(s store.Store, owner *ownership.Resolver) *AlertService {
	return &AlertService{store: s, owner: owner}
}

// CreateAlert records a new alert in the Active state. Callers are trusted
// pipeline components; the target field is not required to exist.
func (s *AlertService) CreateAlert(ctx context.Context, a *model.Alert) (*model.Alert, error) {
	if a.FieldID == "" {
		return nil, fmt.Errorf("%w: fieldId is required", model.ErrValidation)
	}
	if !a.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown alert type %q", model.ErrValidation, a.Type)
	}
	if !a.Severity.IsValid() {
		return nil, fmt.Errorf("%w: unknown severity %q", model.ErrValidation, a.Severity)
	}
	if a.Title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if a.Description == "" {
		return nil, fmt.Errorf("%w: description is required", model.ErrValidation)
	}
	return s.store.Alerts().Create(ctx, a)
}

// ListAlerts returns the field's alerts, newest first. Resolved alerts are
// excluded unless includeResolved is set. Degrades to empty when the caller
// cannot see the field.
func (s *AlertService) ListAlerts(ctx context.Context, callerID, fieldID string, includeResolved bool) ([]*model.Alert, error) {
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
	return s.store.Alerts().ListByField(ctx, fieldID, includeResolved)
}

// AcknowledgeAlert marks an alert as seen by the caller. Acknowledging an
// already-acknowledged or resolved alert re-stamps the acknowledgement.
func (s *AlertService) AcknowledgeAlert(ctx context.Context, callerID, alertID string) (*model.Alert, error) {
	if err := s.authorizeTransition(ctx, callerID, alertID); err != nil {
		return nil, err
	}
	return s.store.Alerts().Acknowledge(ctx, alertID, callerID, model.NowMillis())
}

// ResolveAlert closes out an alert. Resolution does not require a prior
// acknowledgement and is idempotent apart from the timestamp.
func (s *AlertService) ResolveAlert(ctx context.Context, callerID, alertID string) (*model.Alert, error) {
	if err := s.authorizeTransition(ctx, callerID, alertID); err != nil {
		return nil, err
	}
	return s.store.Alerts().Resolve(ctx, alertID, model.NowMillis())
}

// authorizeTransition walks alert -> field -> farm -> owner and fails loudly.
func (s *AlertService) authorizeTransition(ctx context.Context, callerID, alertID string) error {
	if callerID == "" {
		return model.ErrUnauthenticated
	}
	a, err := s.store.Alerts().GetByID(ctx, alertID)
	if err != nil {
		return err
	}
	allowed, _, _, err := s.owner.Begin(callerID).Field(ctx, a.FieldID)
	if err != nil {
		if model.IsNotFound(err) {
			return model.ErrAccessDenied
		}
		return err
	}
	if !allowed {
		return model.ErrAccessDenied
	}
	return nil
}
