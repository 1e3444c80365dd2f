package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/services"
)

// SensorHandler is a thin HTTP transport over SensorService.
type SensorHandler struct {
	svc        *services.SensorService
	authorizer auth.Authorizer
}

func NewSensorHandler(svc *services.SensorService, authorizer auth.Authorizer) *SensorHandler {
	return &SensorHandler{svc: svc, authorizer: authorizer}
}

// AddReading POST /v0/fields/{fieldId}/readings
func (h *SensorHandler) AddReading(w http.ResponseWriter, r *http.Request) {
	callerID, ok := mutationCaller(w, r, h.authorizer)
	if !ok {
		return
	}
	var req struct {
		SensorType model.SensorType `json:"sensorType"`
		Value      float64          `json:"value"`
		Unit       string           `json:"unit"`
		Timestamp  int64            `json:"timestamp,omitempty"`
		Location   *model.LatLng    `json:"location,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	reading := &model.SensorReading{
		FieldID:    mux.Vars(r)["fieldId"],
		SensorType: req.SensorType,
		Value:      req.Value,
		Unit:       req.Unit,
		Timestamp:  req.Timestamp,
		Location:   req.Location,
	}
	out, err := h.svc.AddReading(r.Context(), callerID, reading)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// QueryReadings GET /v0/fields/{fieldId}/readings?sensorType=&startTime=&endTime=
func (h *SensorHandler) QueryReadings(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	q := model.ReadingQuery{FieldID: mux.Vars(r)["fieldId"]}
	params := r.URL.Query()
	if v := params.Get("sensorType"); v != "" {
		t := model.SensorType(v)
		q.SensorType = &t
	}
	if v := params.Get("startTime"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.WriteBadRequest(w, "startTime must be epoch milliseconds")
			return
		}
		q.StartTime = &ts
	}
	if v := params.Get("endTime"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respond.WriteBadRequest(w, "endTime must be epoch milliseconds")
			return
		}
		q.EndTime = &ts
	}

	readings, err := h.svc.QueryReadings(r.Context(), callerID, q)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if readings == nil {
		readings = []*model.SensorReading{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"readings": readings, "count": len(readings)})
}

// LatestReadings GET /v0/fields/{fieldId}/readings/latest
func (h *SensorHandler) LatestReadings(w http.ResponseWriter, r *http.Request) {
	callerID := queryCaller(r, h.authorizer)
	readings, err := h.svc.LatestPerCategory(r.Context(), callerID, mux.Vars(r)["fieldId"])
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if readings == nil {
		readings = []*model.SensorReading{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"readings": readings, "count": len(readings)})
}
