package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
)

func newAlertFixture() (*memStore, *AlertService) {
	st := newMemStore()
	return st, NewAlertService(st, ownership.NewResolver(st))
}

func seedAlert(t *testing.T, svc *AlertService, fieldID string) *model.Alert {
	t.Helper()
	a, err := svc.CreateAlert(context.Background(), &model.Alert{
		FieldID:     fieldID,
		Type:        model.AlertIrrigationNeeded,
		Severity:    model.SeverityMedium,
		Title:       "Low moisture",
		Description: "Soil moisture below threshold in the northeast corner",
	})
	require.NoError(t, err)
	return a
}

func TestCreateAlert(t *testing.T) {
	st, svc := newAlertFixture()
	fieldID := st.seedField(st.seedFarm("u1"))

	a := seedAlert(t, svc, fieldID)
	assert.NotEmpty(t, a.AlertID)
	assert.False(t, a.Resolved)
	assert.Nil(t, a.AcknowledgedBy)

	// The pipeline may raise alerts for fields it has not verified.
	_, err := svc.CreateAlert(context.Background(), &model.Alert{
		FieldID: "not-yet-created", Type: model.AlertPestRisk,
		Severity: model.SeverityLow, Title: "t", Description: "d",
	})
	assert.NoError(t, err)
}

func TestCreateAlertValidation(t *testing.T) {
	_, svc := newAlertFixture()
	ctx := context.Background()

	cases := map[string]*model.Alert{
		"missing field":    {Type: model.AlertPestRisk, Severity: model.SeverityLow, Title: "t", Description: "d"},
		"unknown type":     {FieldID: "f", Type: "frost_risk", Severity: model.SeverityLow, Title: "t", Description: "d"},
		"unknown severity": {FieldID: "f", Type: model.AlertPestRisk, Severity: "urgent", Title: "t", Description: "d"},
		"missing title":    {FieldID: "f", Type: model.AlertPestRisk, Severity: model.SeverityLow, Description: "d"},
	}
	for name, a := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateAlert(ctx, a)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestAlertLifecycle(t *testing.T) {
	st, svc := newAlertFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))
	a := seedAlert(t, svc, fieldID)

	active, err := svc.ListAlerts(ctx, "u1", fieldID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.False(t, active[0].Resolved)

	acked, err := svc.AcknowledgeAlert(ctx, "u1", a.AlertID)
	require.NoError(t, err)
	require.NotNil(t, acked.AcknowledgedBy)
	assert.Equal(t, "u1", *acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	resolved, err := svc.ResolveAlert(ctx, "u1", a.AlertID)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	require.NotNil(t, resolved.ResolvedAt)

	// Resolved alerts drop out of the default listing but stay reachable.
	active, err = svc.ListAlerts(ctx, "u1", fieldID, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListAlerts(ctx, "u1", fieldID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Resolved)
}

func TestAlertDirectResolveAndIdempotence(t *testing.T) {
	st, svc := newAlertFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))
	a := seedAlert(t, svc, fieldID)

	// Resolving without a prior acknowledgement is legal.
	r1, err := svc.ResolveAlert(ctx, "u1", a.AlertID)
	require.NoError(t, err)
	assert.True(t, r1.Resolved)
	assert.Nil(t, r1.AcknowledgedBy)

	// Repeated transitions re-stamp rather than fail; resolved never reverts.
	r2, err := svc.ResolveAlert(ctx, "u1", a.AlertID)
	require.NoError(t, err)
	assert.True(t, r2.Resolved)

	acked, err := svc.AcknowledgeAlert(ctx, "u1", a.AlertID)
	require.NoError(t, err)
	assert.True(t, acked.Resolved, "acknowledging a resolved alert does not unresolve it")
	require.NotNil(t, acked.AcknowledgedBy)
}

func TestAlertTenantIsolation(t *testing.T) {
	st, svc := newAlertFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))
	a := seedAlert(t, svc, fieldID)

	// Queries by a non-owner degrade to empty.
	out, err := svc.ListAlerts(ctx, "u2", fieldID, true)
	require.NoError(t, err)
	assert.Empty(t, out)

	// Transitions by a non-owner fail loudly.
	_, err = svc.AcknowledgeAlert(ctx, "u2", a.AlertID)
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = svc.ResolveAlert(ctx, "u2", a.AlertID)
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = svc.AcknowledgeAlert(ctx, "", a.AlertID)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = svc.AcknowledgeAlert(ctx, "u1", "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListAlertsOrdering(t *testing.T) {
	st, svc := newAlertFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))

	// Severity does not reorder: listing is strictly newest-first.
	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityLow, model.SeverityHigh} {
		_, err := svc.CreateAlert(ctx, &model.Alert{
			FieldID: fieldID, Type: model.AlertDiseaseRisk, Severity: sev,
			Title: "t", Description: "d",
		})
		require.NoError(t, err)
	}
	out, err := svc.ListAlerts(ctx, "u1", fieldID, false)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].CreationTime, out[i].CreationTime)
	}
	assert.Equal(t, model.SeverityHigh, out[0].Severity, "last created listed first regardless of severity")
}
