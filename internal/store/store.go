package store

import (
	"context"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/query"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
// Facets are keyed by entity ids only; ownership enforcement happens above,
// in internal/ownership and internal/services.
type Store interface {
	Users() Users
	Farms() Farms
	Fields() Fields
	Readings() Readings
	Alerts() Alerts
	Spectral() Spectral
	PlantImages() PlantImages
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

type Farms interface {
	Create(ctx context.Context, f *model.Farm) (*model.Farm, error)
	GetByID(ctx context.Context, farmID string) (*model.Farm, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Farm, error)
	Update(ctx context.Context, farmID string, upd model.FarmUpdate) (*model.Farm, error)
}

type Fields interface {
	Create(ctx context.Context, f *model.Field) (*model.Field, error)
	GetByID(ctx context.Context, fieldID string) (*model.Field, error)
	ListByFarm(ctx context.Context, farmID string) ([]*model.Field, error)
}

// Readings is append-only: no update or delete.
type Readings interface {
	Insert(ctx context.Context, r *model.SensorReading) (*model.SensorReading, error)
	// Query executes the given plan; results are in descending timestamp
	// order. The plan's time window (if any) is applied after the index scan.
	Query(ctx context.Context, plan query.Plan, q model.ReadingQuery) ([]*model.SensorReading, error)
	// LatestByType returns the most recent reading of one category for a
	// field, or nil when the category has no readings.
	LatestByType(ctx context.Context, fieldID string, t model.SensorType) (*model.SensorReading, error)
}

type Alerts interface {
	Create(ctx context.Context, a *model.Alert) (*model.Alert, error)
	GetByID(ctx context.Context, alertID string) (*model.Alert, error)
	// ListByField returns alerts in descending creation order; resolved
	// alerts are filtered out unless includeResolved is set.
	ListByField(ctx context.Context, fieldID string, includeResolved bool) ([]*model.Alert, error)
	// Acknowledge overwrites the acknowledger and timestamp unconditionally;
	// state guards live in the alert service contract, not here.
	Acknowledge(ctx context.Context, alertID, userID string, at int64) (*model.Alert, error)
	// Resolve sets resolved and its timestamp. Nothing ever clears resolved.
	Resolve(ctx context.Context, alertID string, at int64) (*model.Alert, error)
}

type Spectral interface {
	Create(ctx context.Context, sd *model.SpectralData) (*model.SpectralData, error)
	ListByField(ctx context.Context, fieldID string) ([]*model.SpectralData, error)
	// LatestByField returns the most recent capture by capture date, or nil.
	LatestByField(ctx context.Context, fieldID string) (*model.SpectralData, error)
	UpdateStatus(ctx context.Context, spectralID string, status model.ProcessingStatus) (*model.SpectralData, error)
}

type PlantImages interface {
	Create(ctx context.Context, img *model.PlantImage) (*model.PlantImage, error)
	ListByField(ctx context.Context, fieldID string) ([]*model.PlantImage, error)
}
