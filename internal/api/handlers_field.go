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

// FieldHandler is a thin HTTP transport over FieldService.
type FieldHandler struct {
	svc        *services.FieldService
	authorizer auth.Authorizer
}

func NewFieldHandler(svc *services.FieldService, authorizer auth.Authorizer) *FieldHandler {
	return &FieldHandler{svc: svc, authorizer: authorizer}
}

// CreateField POST /v0/farms/{farmId}/fields
func (h *FieldHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	var req struct {
		Name            string         `json:"name"`
		Geometry        []model.LatLng `json:"geometry"`
		CropType        string         `json:"cropType"`
		PlantingDate    *int64         `json:"plantingDate,omitempty"`
		ExpectedHarvest *int64         `json:"expectedHarvest,omitempty"`
		Area            float64        `json:"area"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	f := &model.Field{
		FarmID:          mux.Vars(r)["farmId"],
		Name:            req.Name,
		Geometry:        req.Geometry,
		CropType:        req.CropType,
		PlantingDate:    req.PlantingDate,
		ExpectedHarvest: req.ExpectedHarvest,
		Area:            req.Area,
	}
	out, err := h.svc.CreateField(r.Context(), callerID, f)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListFields GET /v0/farms/{farmId}/fields
func (h *FieldHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	fields, err := h.svc.GetFieldsByFarm(r.Context(), callerID, mux.Vars(r)["farmId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if fields == nil {
		fields = []*model.Field{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"fields": fields, "count": len(fields)})
}

// GetField GET /v0/fields/{fieldId}
func (h *FieldHandler) GetField(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	f, err := h.svc.GetFieldByID(r.Context(), callerID, mux.Vars(r)["fieldId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if f == nil {
		respond.WriteNotFound(w, "not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, f)
}
