package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/config"
	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/services"
	"github.com/kiritosahai/agrisense-insights/internal/store"
	"github.com/kiritosahai/agrisense-insights/internal/store/sqlite"
)

// newTestStore opens a throwaway sqlite store with the dev actor seeded,
// mirroring what dev-mode startup does.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	cfg := config.NewForTesting(filepath.Join(t.TempDir(), "api-test.db"))
	db, err := sqlite.Open(cfg.SQLitePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := sqlite.New(db)
	require.NoError(t, auth.SeedLocalDevUser(context.Background(), st))
	return st
}

// newTestRouter wires the farm and alert routes against a throwaway sqlite
// store and the dev mock authorizer.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	st := newTestStore(t)
	owner := ownership.NewResolver(st)
	authorizer := auth.NewMockAuthorizer()

	root := mux.NewRouter()
	farm := NewFarmHandler(services.NewFarmService(st, owner), authorizer)
	root.HandleFunc("/v0/farms", farm.CreateFarm).Methods("POST")
	root.HandleFunc("/v0/farms", farm.ListFarms).Methods("GET")
	root.HandleFunc("/v0/farms/{farmId}", farm.GetFarm).Methods("GET")

	alert := NewAlertHandler(services.NewAlertService(st, owner), authorizer)
	root.HandleFunc("/v0/alerts", alert.CreateAlert).Methods("POST")

	health := NewHealthHandler()
	root.HandleFunc("/v0/health", health.CheckHealth).Methods("GET")
	return root
}

func doJSON(t *testing.T, router *mux.Router, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSeedLocalDevUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// The fixture already seeded once; repeating is a no-op.
	require.NoError(t, auth.SeedLocalDevUser(ctx, st))

	u, err := st.Users().Get(ctx, auth.LocalDevUserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)

	// farms.owner_id references users, so a dev-owned insert proves the
	// row is in place.
	_, err = st.Farms().Create(ctx, &model.Farm{
		OwnerID:  auth.LocalDevUserID,
		Name:     "seed check",
		CropType: "corn",
		Area:     5,
	})
	require.NoError(t, err)
}

func TestCreateFarmRequiresKey(t *testing.T) {
	router := newTestRouter(t)
	payload := map[string]interface{}{"name": "n", "cropType": "corn", "area": 5}

	rr := doJSON(t, router, "POST", "/v0/farms", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, "POST", "/v0/farms", "sk_bogus", payload)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, "POST", "/v0/farms", auth.LocalDevAPIKey, payload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created model.Farm
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, auth.LocalDevUserID, created.OwnerID)

	// Queries with a bad key degrade to empty rather than 401.
	rr = doJSON(t, router, "GET", "/v0/farms", "sk_bogus", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listing struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))
	assert.Zero(t, listing.Count)

	// Unknown and unauthorized farms share the same 404 shape.
	rr = doJSON(t, router, "GET", "/v0/farms/"+created.FarmID, "sk_bogus", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doJSON(t, router, "GET", "/v0/farms/does-not-exist", auth.LocalDevAPIKey, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateFarmValidationError(t *testing.T) {
	router := newTestRouter(t)
	rr := doJSON(t, router, "POST", "/v0/farms", auth.LocalDevAPIKey,
		map[string]interface{}{"name": "", "cropType": "corn", "area": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAlertSystemKeyOnly(t *testing.T) {
	router := newTestRouter(t)
	payload := map[string]interface{}{
		"fieldId": "f1", "type": "pest_risk", "severity": "high",
		"title": "aphids", "description": "colony spotted",
	}

	// User keys cannot reach the pipeline endpoint.
	rr := doJSON(t, router, "POST", "/v0/alerts", auth.LocalDevAPIKey, payload)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, router, "POST", "/v0/alerts", auth.LocalDevSystemKey, payload)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	BindServiceHealth(func() bool { return true })
	t.Cleanup(func() { BindServiceHealth(func() bool { return false }) })

	rr := doJSON(t, router, "GET", "/v0/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "healthy")
}
