package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
)

func newSensorFixture() (*memStore, *SensorService) {
	st := newMemStore()
	return st, NewSensorService(st, ownership.NewResolver(st))
}

func addReading(t *testing.T, svc *SensorService, caller, fieldID string, st model.SensorType, value float64, ts int64) {
	t.Helper()
	_, err := svc.AddReading(context.Background(), caller, &model.SensorReading{
		FieldID: fieldID, SensorType: st, Value: value, Unit: "u", Timestamp: ts,
	})
	require.NoError(t, err)
}

func TestAddReading(t *testing.T) {
	st, svc := newSensorFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))

	out, err := svc.AddReading(ctx, "u1", &model.SensorReading{
		FieldID: fieldID, SensorType: model.SensorSoilMoisture, Value: 0.31, Unit: "m3/m3",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ReadingID)
	assert.NotZero(t, out.Timestamp, "zero timestamp defaults to now")

	_, err = svc.AddReading(ctx, "", &model.SensorReading{FieldID: fieldID, SensorType: model.SensorPH, Unit: "pH"})
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = svc.AddReading(ctx, "u2", &model.SensorReading{FieldID: fieldID, SensorType: model.SensorPH, Unit: "pH"})
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = svc.AddReading(ctx, "u1", &model.SensorReading{FieldID: fieldID, SensorType: "wind_speed", Unit: "m/s"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.AddReading(ctx, "u1", &model.SensorReading{FieldID: fieldID, SensorType: model.SensorPH})
	assert.ErrorIs(t, err, model.ErrValidation, "unit is required")
}

func TestQueryReadingsOrderingAndWindow(t *testing.T) {
	st, svc := newSensorFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))

	addReading(t, svc, "u1", fieldID, model.SensorTemperature, 20.0, 1000)
	addReading(t, svc, "u1", fieldID, model.SensorTemperature, 21.0, 3000)
	addReading(t, svc, "u1", fieldID, model.SensorHumidity, 55.0, 2000)

	all, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Timestamp, all[i].Timestamp, "descending timestamp order")
	}

	// Window bounds are inclusive and applied as a post-filter.
	start, end := int64(1000), int64(2000)
	windowed, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	require.Len(t, windowed, 2)
	assert.Equal(t, int64(2000), windowed[0].Timestamp)
	assert.Equal(t, int64(1000), windowed[1].Timestamp)

	// Type filter plus window uses the category path with the same post-filter.
	temp := model.SensorTemperature
	tw, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID, SensorType: &temp, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	require.Len(t, tw, 1)
	assert.Equal(t, 20.0, tw[0].Value)
}

func TestQueryReadingsIndexEquivalence(t *testing.T) {
	st, svc := newSensorFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))

	ts := int64(0)
	for _, typ := range model.SensorTypes() {
		ts += 10
		addReading(t, svc, "u1", fieldID, typ, float64(ts), ts)
	}
	addReading(t, svc, "u1", fieldID, model.SensorNitrogen, 99, 500)

	all, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID})
	require.NoError(t, err)

	union := map[string]bool{}
	for _, typ := range model.SensorTypes() {
		typ := typ
		byType, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID, SensorType: &typ})
		require.NoError(t, err)
		for _, r := range byType {
			union[r.ReadingID] = true
		}
	}
	assert.Len(t, union, len(all), "unfiltered result equals union over all categories")
	for _, r := range all {
		assert.True(t, union[r.ReadingID])
	}
}

func TestQueryReadingsDegradesToEmpty(t *testing.T) {
	st, svc := newSensorFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))
	addReading(t, svc, "u1", fieldID, model.SensorPH, 6.5, 100)

	for name, caller := range map[string]string{"no identity": "", "non-owner": "u2"} {
		t.Run(name, func(t *testing.T) {
			out, err := svc.QueryReadings(ctx, caller, model.ReadingQuery{FieldID: fieldID})
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}

	out, err := svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: "missing"})
	require.NoError(t, err)
	assert.Empty(t, out)

	// An unknown category filter can match nothing, by definition.
	bogus := model.SensorType("wind_speed")
	out, err = svc.QueryReadings(ctx, "u1", model.ReadingQuery{FieldID: fieldID, SensorType: &bogus})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLatestPerCategory(t *testing.T) {
	st, svc := newSensorFixture()
	ctx := context.Background()
	fieldID := st.seedField(st.seedFarm("u1"))

	addReading(t, svc, "u1", fieldID, model.SensorTemperature, 23.5, 1000)
	addReading(t, svc, "u1", fieldID, model.SensorTemperature, 24.1, 2000)
	addReading(t, svc, "u1", fieldID, model.SensorSoilMoisture, 0.27, 1500)

	latest, err := svc.LatestPerCategory(ctx, "u1", fieldID)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	// Output follows the fixed category enumeration order.
	assert.Equal(t, model.SensorSoilMoisture, latest[0].SensorType)
	assert.Equal(t, model.SensorTemperature, latest[1].SensorType)
	assert.Equal(t, 24.1, latest[1].Value, "most recent temperature wins")

	// At most one reading per category, never more than the 8 fixed ones.
	seen := map[model.SensorType]bool{}
	for _, r := range latest {
		assert.False(t, seen[r.SensorType])
		seen[r.SensorType] = true
	}

	// Degrades for non-owners.
	out, err := svc.LatestPerCategory(ctx, "u2", fieldID)
	require.NoError(t, err)
	assert.Empty(t, out)
}
