// Package agriservice wires configuration, storage, auth, and HTTP transport
// into the runnable data service.
package agriservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kiritosahai/agrisense-insights/internal/api"
	"github.com/kiritosahai/agrisense-insights/internal/api/recovery"
	"github.com/kiritosahai/agrisense-insights/internal/auth"
	"github.com/kiritosahai/agrisense-insights/internal/blob"
	"github.com/kiritosahai/agrisense-insights/internal/config"
	"github.com/kiritosahai/agrisense-insights/internal/health"
	"github.com/kiritosahai/agrisense-insights/internal/logger"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
	"github.com/kiritosahai/agrisense-insights/internal/services"
	"github.com/kiritosahai/agrisense-insights/internal/store"
	"github.com/kiritosahai/agrisense-insights/internal/store/postgres"
	"github.com/kiritosahai/agrisense-insights/internal/store/sqlite"
)

// Run starts the agrisense data service HTTP server and blocks until
// shutdown or error.
func Run() error {
	log := logger.New("agrisense-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Str("blob_driver", cfg.BlobDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("dev_mode", cfg.DevMode).
		Msg("Agrisense service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Blob store unavailable")
		return err
	}
	authorizer, err := newAuthorizer(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	router := buildRouter(st, blobs, authorizer)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Bootstrap(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error().Err(err).Msg("Postgres unavailable")
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Error().Err(err).Msg("SQLite unavailable")
			return nil, err
		}
		return sqlite.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
}

func newBlobStore(cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobDriver {
	case "memory":
		return blob.NewMemoryStore(), nil
	default:
		return blob.NewFSStore(cfg.BlobRoot)
	}
}

func newAuthorizer(ctx context.Context, cfg *config.Config, st store.Store, log zerolog.Logger) (auth.Authorizer, error) {
	if cfg.DevMode {
		log.Warn().Msg("DEV_MODE enabled: using mock authorizer with hardcoded keys")
		if err := auth.SeedLocalDevUser(ctx, st); err != nil {
			log.Error().Err(err).Msg("Failed to seed local dev user")
			return nil, err
		}
		return auth.NewMockAuthorizer(), nil
	}
	return auth.NewStoreAuthorizer(st, cfg.SystemAPIKey), nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, blobs blob.Store, authorizer auth.Authorizer) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	owner := ownership.NewResolver(st)

	// Users (system-key provisioning)
	userSvc := services.NewUserService(st)
	user := api.NewUserHandler(userSvc, authorizer)
	root.HandleFunc("/v0/users", user.CreateUser).Methods("POST")
	root.HandleFunc("/v0/users/{userId}", user.GetUser).Methods("GET")

	// Farms
	farmSvc := services.NewFarmService(st, owner)
	farm := api.NewFarmHandler(farmSvc, authorizer)
	root.HandleFunc("/v0/farms", farm.CreateFarm).Methods("POST")
	root.HandleFunc("/v0/farms", farm.ListFarms).Methods("GET")
	root.HandleFunc("/v0/farms/{farmId}", farm.GetFarm).Methods("GET")
	root.HandleFunc("/v0/farms/{farmId}", farm.UpdateFarm).Methods("PATCH")

	// Fields
	fieldSvc := services.NewFieldService(st, owner)
	field := api.NewFieldHandler(fieldSvc, authorizer)
	root.HandleFunc("/v0/farms/{farmId}/fields", field.CreateField).Methods("POST")
	root.HandleFunc("/v0/farms/{farmId}/fields", field.ListFields).Methods("GET")
	root.HandleFunc("/v0/fields/{fieldId}", field.GetField).Methods("GET")

	// Sensor readings
	sensorSvc := services.NewSensorService(st, owner)
	sensor := api.NewSensorHandler(sensorSvc, authorizer)
	root.HandleFunc("/v0/fields/{fieldId}/readings", sensor.AddReading).Methods("POST")
	root.HandleFunc("/v0/fields/{fieldId}/readings", sensor.QueryReadings).Methods("GET")
	root.HandleFunc("/v0/fields/{fieldId}/readings/latest", sensor.LatestReadings).Methods("GET")

	// Alerts
	alertSvc := services.NewAlertService(st, owner)
	alert := api.NewAlertHandler(alertSvc, authorizer)
	root.HandleFunc("/v0/alerts", alert.CreateAlert).Methods("POST")
	root.HandleFunc("/v0/alerts/{alertId}/acknowledge", alert.AcknowledgeAlert).Methods("POST")
	root.HandleFunc("/v0/alerts/{alertId}/resolve", alert.ResolveAlert).Methods("POST")
	root.HandleFunc("/v0/fields/{fieldId}/alerts", alert.ListAlerts).Methods("GET")

	// Spectral data and map details
	spectralSvc := services.NewSpectralService(st, owner)
	spectral := api.NewSpectralHandler(spectralSvc, authorizer)
	root.HandleFunc("/v0/fields/{fieldId}/spectral", spectral.CreateSpectralData).Methods("POST")
	root.HandleFunc("/v0/fields/{fieldId}/spectral", spectral.ListSpectralData).Methods("GET")
	root.HandleFunc("/v0/spectral/{spectralId}/status", spectral.UpdateProcessingStatus).Methods("PATCH")
	root.HandleFunc("/v0/fields/{fieldId}/map", spectral.GetFieldMap).Methods("GET")

	// Plant images
	imageSvc := services.NewImageService(st, blobs, owner)
	image := api.NewImageHandler(imageSvc, authorizer)
	root.HandleFunc("/v0/images", image.UploadImage).Methods("POST")
	root.HandleFunc("/v0/fields/{fieldId}/images", image.ListFieldImages).Methods("GET")
	root.HandleFunc("/v0/images/blob/{key:.*}", image.ServeBlob).Methods("GET")

	// Health
	healthHandler := api.NewHealthHandler()
	root.HandleFunc("/v0/health", healthHandler.CheckHealth).Methods("GET")

	return root
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns interval*2 with a 60 second floor.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a context cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
