package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
	"github.com/kiritosahai/agrisense-insights/internal/api/validate"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/services"
)

// FarmHandler is a thin HTTP transport over FarmService.
type FarmHandler struct {
	svc        *services.FarmService
	authorizer auth.Authorizer
}

func NewFarmHandler(svc *services.FarmService, authorizer auth.Authorizer) *FarmHandler {
	return &FarmHandler{svc: svc, authorizer: authorizer}
}

// CreateFarm POST /v0/farms
func (h *FarmHandler) CreateFarm(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	var req struct {
		Name        string            `json:"name"`
		Location    model.LatLng      `json:"location"`
		BoundingBox model.BoundingBox `json:"boundingBox"`
		CropType    string            `json:"cropType"`
		Area        float64           `json:"area"`
		Description *string           `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateFarm(req.Name, req.CropType, req.Area); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	f := &model.Farm{
		Name:        req.Name,
		Location:    req.Location,
		BoundingBox: req.BoundingBox,
		CropType:    req.CropType,
		Area:        req.Area,
		Description: req.Description,
	}
	out, err := h.svc.CreateFarm(r.Context(), callerID, f)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateFarm PATCH /v0/farms/{farmId}
func (h *FarmHandler) UpdateFarm(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	var upd model.FarmUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateFarm(r.Context(), callerID, mux.Vars(r)["farmId"], upd)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListFarms GET /v0/farms
func (h *FarmHandler) ListFarms(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	farms, err := h.svc.GetUserFarms(r.Context(), callerID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if farms == nil {
		farms = []*model.Farm{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"farms": farms, "count": len(farms)})
}

// GetFarm GET /v0/farms/{farmId}
func (h *FarmHandler) GetFarm(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	f, err := h.svc.GetFarmByID(r.Context(), callerID, mux.Vars(r)["farmId"])
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
