package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/ownership"
)

func newFarmFixture() (*memStore, *FarmService) {
	st := newMemStore()
	return st, NewFarmService(st, ownership.NewResolver(st))
}

func validFarm() *model.Farm {
	return &model.Farm{Name: "North Farm", CropType: "corn", Area: 42.0}
}

func TestCreateFarm(t *testing.T) {
	_, svc := newFarmFixture()
	ctx := context.Background()

	out, err := svc.CreateFarm(ctx, "u1", validFarm())
	require.NoError(t, err)
	assert.NotEmpty(t, out.FarmID)
	assert.Equal(t, "u1", out.OwnerID)
	assert.NotZero(t, out.CreationTime)
}

func TestCreateFarmUnauthenticated(t *testing.T) {
	_, svc := newFarmFixture()
	_, err := svc.CreateFarm(context.Background(), "", validFarm())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestCreateFarmValidation(t *testing.T) {
	_, svc := newFarmFixture()
	ctx := context.Background()

	for name, f := range map[string]*model.Farm{
		"missing name": {CropType: "corn", Area: 1},
		"missing crop": {Name: "n", Area: 1},
		"zero area":    {Name: "n", CropType: "corn"},
		"negative":     {Name: "n", CropType: "corn", Area: -3},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateFarm(ctx, "u1", f)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestUpdateFarmOwnerOnly(t *testing.T) {
	st, svc := newFarmFixture()
	ctx := context.Background()
	farmID := st.seedFarm("u1")

	name := "Renamed"
	out, err := svc.UpdateFarm(ctx, "u1", farmID, model.FarmUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Name)

	// Mutations by a non-owner fail loudly.
	_, err = svc.UpdateFarm(ctx, "u2", farmID, model.FarmUpdate{Name: &name})
	assert.ErrorIs(t, err, model.ErrAccessDenied)

	_, err = svc.UpdateFarm(ctx, "u1", "missing", model.FarmUpdate{Name: &name})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetUserFarmsScopedToCaller(t *testing.T) {
	st, svc := newFarmFixture()
	ctx := context.Background()
	st.seedFarm("u1")
	st.seedFarm("u1")
	st.seedFarm("u2")

	mine, err := svc.GetUserFarms(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// No identity degrades to empty, not an error.
	none, err := svc.GetUserFarms(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetFarmByIDDegrades(t *testing.T) {
	st, svc := newFarmFixture()
	ctx := context.Background()
	farmID := st.seedFarm("u1")

	f, err := svc.GetFarmByID(ctx, "u1", farmID)
	require.NoError(t, err)
	require.NotNil(t, f)

	// Non-owner and nonexistent farm are indistinguishable: both nil, no error.
	f, err = svc.GetFarmByID(ctx, "u2", farmID)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = svc.GetFarmByID(ctx, "u1", "missing")
	require.NoError(t, err)
	assert.Nil(t, f)
}
