// Package storetest holds a compliance suite every store.Store backend must
// pass. Backend test files call Run with a constructor for a clean store.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/query"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store per call.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Users
	userID := "u-" + uuid.New().String()
	apiKey := "sk_" + uuid.New().String()
	u, err := s.Users().Create(ctx, &model.User{UserID: userID, Email: userID + "@example.test", Role: model.RoleUser, APIKey: apiKey})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if got, err := s.Users().Get(ctx, u.UserID); err != nil || got.Email != u.Email {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByAPIKey(ctx, apiKey); err != nil || got.UserID != u.UserID {
		t.Fatalf("GetByAPIKey: got=%v err=%v", got, err)
	}
	if _, err := s.Users().GetByAPIKey(ctx, "sk_nope"); !model.IsNotFound(err) {
		t.Fatalf("GetByAPIKey miss: err=%v", err)
	}

	// Farms
	farm, err := s.Farms().Create(ctx, &model.Farm{
		OwnerID:     u.UserID,
		Name:        "suite farm",
		Location:    model.LatLng{Lat: 48.1, Lng: 11.5},
		BoundingBox: model.BoundingBox{North: 48.2, South: 48.0, East: 11.6, West: 11.4},
		CropType:    "wheat",
		Area:        20,
	})
	if err != nil {
		t.Fatalf("CreateFarm: %v", err)
	}
	if farm.FarmID == "" || farm.CreationTime == 0 {
		t.Fatalf("CreateFarm: incomplete %+v", farm)
	}
	if got, err := s.Farms().GetByID(ctx, farm.FarmID); err != nil || got.BoundingBox != farm.BoundingBox {
		t.Fatalf("GetFarm: got=%v err=%v", got, err)
	}
	if _, err := s.Farms().GetByID(ctx, "missing"); !model.IsNotFound(err) {
		t.Fatalf("GetFarm miss: err=%v", err)
	}
	if lst, err := s.Farms().ListByOwner(ctx, u.UserID); err != nil || len(lst) != 1 {
		t.Fatalf("ListByOwner: n=%d err=%v", len(lst), err)
	}
	newName := "renamed"
	if got, err := s.Farms().Update(ctx, farm.FarmID, model.FarmUpdate{Name: &newName}); err != nil || got.Name != "renamed" {
		t.Fatalf("UpdateFarm: got=%v err=%v", got, err)
	}
	if got, err := s.Farms().Update(ctx, farm.FarmID, model.FarmUpdate{}); err != nil || got.Name != "renamed" {
		t.Fatalf("UpdateFarm empty patch must keep fields: got=%v err=%v", got, err)
	}

	// Fields
	field, err := s.Fields().Create(ctx, &model.Field{
		FarmID:   farm.FarmID,
		Name:     "plot A",
		Geometry: []model.LatLng{{Lat: 48.1, Lng: 11.5}, {Lat: 48.1, Lng: 11.6}, {Lat: 48.2, Lng: 11.6}},
		CropType: "wheat",
		Area:     4,
	})
	if err != nil {
		t.Fatalf("CreateField: %v", err)
	}
	got, err := s.Fields().GetByID(ctx, field.FieldID)
	if err != nil || len(got.Geometry) != 3 {
		t.Fatalf("GetField: got=%v err=%v", got, err)
	}
	if lst, err := s.Fields().ListByFarm(ctx, farm.FarmID); err != nil || len(lst) != 1 {
		t.Fatalf("ListByFarm: n=%d err=%v", len(lst), err)
	}

	runReadings(t, ctx, s, field.FieldID)
	runAlerts(t, ctx, s, field.FieldID, u.UserID)
	runSpectral(t, ctx, s, field.FieldID)
	runPlantImages(t, ctx, s, field.FieldID, u.UserID)
}

func runReadings(t *testing.T, ctx context.Context, s store.Store, fieldID string) {
	t.Helper()

	insert := func(typ model.SensorType, value float64, ts int64) {
		if _, err := s.Readings().Insert(ctx, &model.SensorReading{
			FieldID: fieldID, SensorType: typ, Value: value, Unit: "u", Timestamp: ts,
		}); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}
	insert(model.SensorTemperature, 20, 1000)
	insert(model.SensorTemperature, 21, 3000)
	insert(model.SensorHumidity, 50, 2000)

	// Unfiltered: timestamp-path, descending.
	q := model.ReadingQuery{FieldID: fieldID}
	all, err := s.Readings().Query(ctx, query.Choose(q), q)
	if err != nil || len(all) != 3 {
		t.Fatalf("Query all: n=%d err=%v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Timestamp < all[i].Timestamp {
			t.Fatalf("Query not descending: %d before %d", all[i-1].Timestamp, all[i].Timestamp)
		}
	}

	// Type-path with window post-filter.
	temp := model.SensorTemperature
	start, end := int64(0), int64(2000)
	q = model.ReadingQuery{FieldID: fieldID, SensorType: &temp, StartTime: &start, EndTime: &end}
	windowed, err := s.Readings().Query(ctx, query.Choose(q), q)
	if err != nil || len(windowed) != 1 || windowed[0].Value != 20 {
		t.Fatalf("Query windowed: got=%v err=%v", windowed, err)
	}

	// Latest by type; nil for an empty category.
	latest, err := s.Readings().LatestByType(ctx, fieldID, model.SensorTemperature)
	if err != nil || latest == nil || latest.Value != 21 {
		t.Fatalf("LatestByType: got=%v err=%v", latest, err)
	}
	if r, err := s.Readings().LatestByType(ctx, fieldID, model.SensorPH); err != nil || r != nil {
		t.Fatalf("LatestByType empty category: got=%v err=%v", r, err)
	}

	// Duplicate (field, type, timestamp) rows are legal.
	insert(model.SensorTemperature, 21.5, 3000)
	q = model.ReadingQuery{FieldID: fieldID, SensorType: &temp}
	dup, err := s.Readings().Query(ctx, query.Choose(q), q)
	if err != nil || len(dup) != 3 {
		t.Fatalf("Query after duplicate ts: n=%d err=%v", len(dup), err)
	}
}

func runAlerts(t *testing.T, ctx context.Context, s store.Store, fieldID, userID string) {
	t.Helper()

	a, err := s.Alerts().Create(ctx, &model.Alert{
		FieldID: fieldID, Type: model.AlertDroughtStress, Severity: model.SeverityHigh,
		Title: "dry", Description: "suite",
	})
	if err != nil || a.AlertID == "" || a.Resolved {
		t.Fatalf("CreateAlert: got=%+v err=%v", a, err)
	}

	// Create never carries caller-set lifecycle state.
	ackBy := "sneak"
	pre, err := s.Alerts().Create(ctx, &model.Alert{
		FieldID: fieldID, Type: model.AlertPestRisk, Severity: model.SeverityLow,
		Title: "t", Description: "d", AcknowledgedBy: &ackBy, Resolved: true,
	})
	if err != nil || pre.Resolved || pre.AcknowledgedBy != nil {
		t.Fatalf("CreateAlert must reset lifecycle: got=%+v err=%v", pre, err)
	}

	acked, err := s.Alerts().Acknowledge(ctx, a.AlertID, userID, 12345)
	if err != nil || acked.AcknowledgedBy == nil || *acked.AcknowledgedBy != userID || *acked.AcknowledgedAt != 12345 {
		t.Fatalf("Acknowledge: got=%+v err=%v", acked, err)
	}
	resolved, err := s.Alerts().Resolve(ctx, a.AlertID, 23456)
	if err != nil || !resolved.Resolved || *resolved.ResolvedAt != 23456 {
		t.Fatalf("Resolve: got=%+v err=%v", resolved, err)
	}
	if _, err := s.Alerts().Acknowledge(ctx, "missing", userID, 1); !model.IsNotFound(err) {
		t.Fatalf("Acknowledge missing: err=%v", err)
	}
	if _, err := s.Alerts().Resolve(ctx, "missing", 1); !model.IsNotFound(err) {
		t.Fatalf("Resolve missing: err=%v", err)
	}

	active, err := s.Alerts().ListByField(ctx, fieldID, false)
	if err != nil || len(active) != 1 {
		t.Fatalf("ListByField active: n=%d err=%v", len(active), err)
	}
	all, err := s.Alerts().ListByField(ctx, fieldID, true)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByField all: n=%d err=%v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreationTime < all[i].CreationTime {
			t.Fatal("ListByField not descending by creation time")
		}
	}
}

func runSpectral(t *testing.T, ctx context.Context, s store.Store, fieldID string) {
	t.Helper()

	mk := func(captureDate int64) *model.SpectralData {
		sd, err := s.Spectral().Create(ctx, &model.SpectralData{
			FieldID:          fieldID,
			ImageURL:         "https://img.example/x.tif",
			CaptureDate:      captureDate,
			Indices:          model.SpectralIndices{NDVI: 0.8},
			ProcessingStatus: model.ProcessingPending,
			Metadata:         &model.SpectralMetadata{Resolution: 10, Bands: []string{"red", "nir"}, CloudCover: 0.1},
		})
		if err != nil {
			t.Fatalf("CreateSpectral: %v", err)
		}
		return sd
	}
	mk(1000)
	newest := mk(2000)

	lst, err := s.Spectral().ListByField(ctx, fieldID)
	if err != nil || len(lst) != 2 || lst[0].CaptureDate != 2000 {
		t.Fatalf("ListByField spectral: got=%v err=%v", lst, err)
	}
	if lst[0].Metadata == nil || len(lst[0].Metadata.Bands) != 2 {
		t.Fatalf("spectral metadata round trip: got=%+v", lst[0].Metadata)
	}
	latest, err := s.Spectral().LatestByField(ctx, fieldID)
	if err != nil || latest == nil || latest.SpectralID != newest.SpectralID {
		t.Fatalf("LatestByField: got=%v err=%v", latest, err)
	}
	if sd, err := s.Spectral().LatestByField(ctx, "empty-field"); err != nil || sd != nil {
		t.Fatalf("LatestByField empty: got=%v err=%v", sd, err)
	}
	upd, err := s.Spectral().UpdateStatus(ctx, newest.SpectralID, model.ProcessingCompleted)
	if err != nil || upd.ProcessingStatus != model.ProcessingCompleted {
		t.Fatalf("UpdateStatus: got=%v err=%v", upd, err)
	}
	if _, err := s.Spectral().UpdateStatus(ctx, "missing", model.ProcessingFailed); !model.IsNotFound(err) {
		t.Fatalf("UpdateStatus missing: err=%v", err)
	}
}

func runPlantImages(t *testing.T, ctx context.Context, s store.Store, fieldID, userID string) {
	t.Helper()

	title := "leaf spots"
	img, err := s.PlantImages().Create(ctx, &model.PlantImage{
		UserID: userID, StorageKey: "plant-images/" + userID + "/k1",
		FieldID: &fieldID, Title: &title, Status: "uploaded",
	})
	if err != nil || img.ImageID == "" {
		t.Fatalf("CreatePlantImage: got=%+v err=%v", img, err)
	}
	lst, err := s.PlantImages().ListByField(ctx, fieldID)
	if err != nil || len(lst) != 1 || lst[0].Title == nil || *lst[0].Title != title {
		t.Fatalf("ListByField images: got=%v err=%v", lst, err)
	}
}
