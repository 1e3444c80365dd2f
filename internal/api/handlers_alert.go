package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/services"
)

// AlertHandler is a thin HTTP transport over AlertService.
type AlertHandler struct {
	svc        *services.AlertService
	authorizer auth.Authorizer
}

func NewAlertHandler(svc *services.AlertService, authorizer auth.Authorizer) *AlertHandler {
	return &AlertHandler{svc: svc, authorizer: authorizer}
}

// CreateAlert POST /v0/alerts
// System-key only: alerts are raised by the analysis pipeline.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	if !systemCaller(w, r, h.authorizer) {
		return
	}
	var req struct {
		FieldID     string          `json:"fieldId"`
		Type        model.AlertType `json:"type"`
		Severity    model.Severity  `json:"severity"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Location    *model.LatLng   `json:"location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	a := &model.Alert{
		FieldID:     req.FieldID,
		Type:        req.Type,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}
	out, err := h.svc.CreateAlert(r.Context(), a)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListAlerts GET /v0/fields/{fieldId}/alerts?includeResolved=
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	includeResolved := r.URL.Query().Get("includeResolved") == "true"
	alerts, err := h.svc.ListAlerts(r.Context(), callerID, mux.Vars(r)["fieldId"], includeResolved)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if alerts == nil {
		alerts = []*model.Alert{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// AcknowledgeAlert POST /v0/alerts/{alertId}/acknowledge
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	out, err := h.svc.AcknowledgeAlert(r.Context(), callerID, mux.Vars(r)["alertId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ResolveAlert POST /v0/alerts/{alertId}/resolve
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	out, err := h.svc.ResolveAlert(r.Context(), callerID, mux.Vars(r)["alertId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
