package ownership

import (
	"context"
	"testing"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// --- Fakes ---

type fakeStore struct {
	farms       map[string]*model.Farm
	fields      map[string]*model.Field
	farmFetches int
}

func (f *fakeStore) Users() store.Users             { panic("unused") }
func (f *fakeStore) Farms() store.Farms             { return &fakeFarms{f} }
func (f *fakeStore) Fields() store.Fields           { return &fakeFields{f} }
func (f *fakeStore) Readings() store.Readings       { panic("unused") }
func (f *fakeStore) Alerts() store.Alerts           { panic("unused") }
func (f *fakeStore) Spectral() store.Spectral       { panic("unused") }
func (f *fakeStore) PlantImages() store.PlantImages { panic("unused") }

type fakeFarms struct{ p *fakeStore }

func (f *fakeFarms) Create(context.Context, *model.Farm) (*model.Farm, error) { panic("unused") }
func (f *fakeFarms) GetByID(_ context.Context, farmID string) (*model.Farm, error) {
	f.p.farmFetches++
	if farm, ok := f.p.farms[farmID]; ok {
		return farm, nil
	}
	return nil, model.ErrNotFound
}
func (f *fakeFarms) ListByOwner(context.Context, string) ([]*model.Farm, error) { panic("unused") }
func (f *fakeFarms) Update(context.Context, string, model.FarmUpdate) (*model.Farm, error) {
	panic("unused")
}

type fakeFields struct{ p *fakeStore }

func (f *fakeFields) Create(context.Context, *model.Field) (*model.Field, error) { panic("unused") }
func (f *fakeFields) GetByID(_ context.Context, fieldID string) (*model.Field, error) {
	if fld, ok := f.p.fields[fieldID]; ok {
		return fld, nil
	}
	return nil, model.ErrNotFound
}
func (f *fakeFields) ListByFarm(context.Context, string) ([]*model.Field, error) { panic("unused") }

func newFakeStore() *fakeStore {
	return &fakeStore{
		farms: map[string]*model.Farm{
			"farm1": {FarmID: "farm1", OwnerID: "u1"},
		},
		fields: map[string]*model.Field{
			"field1": {FieldID: "field1", FarmID: "farm1"},
			"orphan": {FieldID: "orphan", FarmID: "gone"},
		},
	}
}

// --- Tests ---

func TestScopeFarm(t *testing.T) {
	fs := newFakeStore()
	r := NewResolver(fs)
	ctx := context.Background()

	allowed, farm, err := r.Begin("u1").Farm(ctx, "farm1")
	if err != nil || !allowed || farm == nil {
		t.Fatalf("owner check: allowed=%v farm=%v err=%v", allowed, farm, err)
	}

	allowed, _, err = r.Begin("u2").Farm(ctx, "farm1")
	if err != nil || allowed {
		t.Fatalf("non-owner must be denied: allowed=%v err=%v", allowed, err)
	}

	// The empty identity never owns anything.
	allowed, _, err = r.Begin("").Farm(ctx, "farm1")
	if err != nil || allowed {
		t.Fatalf("empty identity must be denied: allowed=%v err=%v", allowed, err)
	}

	_, _, err = r.Begin("u1").Farm(ctx, "nope")
	if !model.IsNotFound(err) {
		t.Fatalf("missing farm: err=%v", err)
	}
}

func TestScopeFieldChain(t *testing.T) {
	fs := newFakeStore()
	r := NewResolver(fs)
	ctx := context.Background()

	allowed, field, farm, err := r.Begin("u1").Field(ctx, "field1")
	if err != nil || !allowed || field == nil || farm == nil {
		t.Fatalf("chain check: allowed=%v field=%v farm=%v err=%v", allowed, field, farm, err)
	}
	if farm.FarmID != "farm1" {
		t.Fatalf("resolved wrong parent farm: %s", farm.FarmID)
	}

	allowed, _, _, err = r.Begin("u2").Field(ctx, "field1")
	if err != nil || allowed {
		t.Fatalf("non-owner chain must be denied: allowed=%v err=%v", allowed, err)
	}

	// A field whose parent farm vanished surfaces NotFound, never access.
	_, _, _, err = r.Begin("u1").Field(ctx, "orphan")
	if !model.IsNotFound(err) {
		t.Fatalf("orphan field: err=%v", err)
	}
}

func TestScopeMemoizesWithinRequest(t *testing.T) {
	fs := newFakeStore()
	r := NewResolver(fs)
	ctx := context.Background()

	scope := r.Begin("u1")
	for i := 0; i < 5; i++ {
		if _, _, _, err := scope.Field(ctx, "field1"); err != nil {
			t.Fatalf("Field: %v", err)
		}
	}
	if fs.farmFetches != 1 {
		t.Fatalf("farm fetched %d times within one scope, want 1", fs.farmFetches)
	}

	// A new scope re-evaluates: checks are never cached across requests.
	if _, _, _, err := r.Begin("u1").Field(ctx, "field1"); err != nil {
		t.Fatalf("Field: %v", err)
	}
	if fs.farmFetches != 2 {
		t.Fatalf("farm fetched %d times across scopes, want 2", fs.farmFetches)
	}
}
