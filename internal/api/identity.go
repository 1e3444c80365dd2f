package api

import (
	"net/http"

	"github.com/kiritosahai/agrisense-insights/internal/api/respond"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
)

// queryCaller resolves the caller id for read endpoints. Missing or invalid
// credentials yield the empty identity, which every query degrades to an
// empty result for; the response shape never reveals whether the key was bad.
func queryCaller(r *http.Request, authorizer auth.Authorizer) string {
	key, err := auth.ExtractAPIKey(r)
	if err != nil {
		return ""
	}
	actor, err := authorizer.Authorize(r.Context(), key)
	if err != nil || actor.System {
		return ""
	}
	return actor.ActorID
}

// mutationCaller resolves the caller for write endpoints, writing a 401 and
// returning false when credentials are missing or invalid.
func mutationCaller(w http.ResponseWriter, r *http.Request, authorizer auth.Authorizer) (string, bool) {
	key, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return "", false
	}
	actor, err := authorizer.Authorize(r.Context(), key)
	if err != nil {
		respond.WriteUnauthorized(w, "invalid API key")
		return "", false
	}
	if actor.System {
		respond.WriteForbidden(w, "system keys cannot perform user operations")
		return "", false
	}
	return actor.ActorID, true
}

// systemCaller gates the privileged ingest endpoints on a system actor.
func systemCaller(w http.ResponseWriter, r *http.Request, authorizer auth.Authorizer) bool {
	key, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return false
	}
	actor, err := authorizer.Authorize(r.Context(), key)
	if err != nil {
		respond.WriteUnauthorized(w, "invalid API key")
		return false
	}
	if !actor.System {
		respond.WriteForbidden(w, "system key required")
		return false
	}
	return true
}
