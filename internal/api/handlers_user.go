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

// UserHandler exposes the provisioning endpoints. Both are behind the
// system key; accounts are created by operators, not self-service.
type UserHandler struct {
	svc        *services.UserService
	authorizer auth.Authorizer
}

func NewUserHandler(svc *services.UserService, authorizer auth.Authorizer) *UserHandler {
	return &UserHandler{svc: svc, authorizer: authorizer}
}

// CreateUser POST /v0/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !systemCaller(w, r, h.authorizer) {
		return
	}
	var req struct {
		Email       string  `json:"email"`
		DisplayName *string `json:"displayName,omitempty"`
		Role        string  `json:"role,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateUser(req.Email, req.DisplayName); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u := &model.User{Email: req.Email, DisplayName: req.DisplayName, Role: model.Role(req.Role)}
	created, apiKey, err := h.svc.CreateUser(r.Context(), u)
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   created,
		"apiKey": apiKey,
	})
}

// GetUser GET /v0/users/{userId}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !systemCaller(w, r, h.authorizer) {
		return
	}
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteModelError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
