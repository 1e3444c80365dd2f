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

// SpectralHandler is a thin HTTP transport over SpectralService.
type SpectralHandler struct {
	svc        *services.SpectralService
	authorizer auth.Authorizer
}

func NewSpectralHandler(svc *services.SpectralService, authorizer auth.Authorizer) *SpectralHandler {
	return &SpectralHandler{svc: svc, authorizer: authorizer}
}

// CreateSpectralData POST /v0/fields/{fieldId}/spectral
// System-key only: spectral records come from the imagery pipeline.
func (h *SpectralHandler) CreateSpectralData(w http.ResponseWriter, r *http.Request) {
	if !systemCaller(w, r, h.authorizer) {
		return
	}
	var req struct {
		ImageURL         string                  `json:"imageUrl"`
		CaptureDate      int64                   `json:"captureDate"`
		Indices          model.SpectralIndices   `json:"indices"`
		ProcessingStatus model.ProcessingStatus  `json:"processingStatus,omitempty"`
		Metadata         *model.SpectralMetadata `json:"metadata,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	sd := &model.SpectralData{
		FieldID:          mux.Vars(r)["fieldId"],
		ImageURL:         req.ImageURL,
		CaptureDate:      req.CaptureDate,
		Indices:          req.Indices,
		ProcessingStatus: req.ProcessingStatus,
		Metadata:         req.Metadata,
	}
	out, err := h.svc.CreateSpectralData(r.Context(), sd)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateProcessingStatus PATCH /v0/spectral/{spectralId}/status
func (h *SpectralHandler) UpdateProcessingStatus(w http.ResponseWriter, r *http.Request) {
	if !systemCaller(w, r, h.authorizer) {
		return
	}
	var req struct {
		Status model.ProcessingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateProcessingStatus(r.Context(), mux.Vars(r)["spectralId"], req.Status)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListSpectralData GET /v0/fields/{fieldId}/spectral
func (h *SpectralHandler) ListSpectralData(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	records, err := h.svc.ListSpectralData(r.Context(), callerID, mux.Vars(r)["fieldId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if records == nil {
		records = []*model.SpectralData{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"spectral": records, "count": len(records)})
}

// GetFieldMap GET /v0/fields/{fieldId}/map
func (h *SpectralHandler) GetFieldMap(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	details, err := h.svc.GetFieldMapDetails(r.Context(), callerID, mux.Vars(r)["fieldId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if details == nil {
		respond.WriteNotFound(w, "not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, details)
}
