package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/query"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// memStore is an in-memory store.Store used by the service tests. It honors
// the same ordering contracts as the SQL backends: readings and alerts come
// back newest first, with insertion order breaking timestamp ties.
type memStore struct {
	mu       sync.Mutex
	seq      int64
	users    map[string]*model.User
	farms    map[string]*model.Farm
	fields   map[string]*model.Field
	readings []*model.SensorReading
	alerts   []*model.Alert
	spectral []*model.SpectralData
	images   []*model.PlantImage
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*model.User),
		farms:  make(map[string]*model.Farm),
		fields: make(map[string]*model.Field),
	}
}

func (m *memStore) Users() store.Users             { return (*memUsers)(m) }
func (m *memStore) Farms() store.Farms             { return (*memFarms)(m) }
func (m *memStore) Fields() store.Fields           { return (*memFields)(m) }
func (m *memStore) Readings() store.Readings       { return (*memReadings)(m) }
func (m *memStore) Alerts() store.Alerts           { return (*memAlerts)(m) }
func (m *memStore) Spectral() store.Spectral       { return (*memSpectral)(m) }
func (m *memStore) PlantImages() store.PlantImages { return (*memImages)(m) }

func (m *memStore) nextSeq() int64 {
	m.seq++
	return m.seq
}

// seedFarm inserts a farm owned by ownerID and returns its id.
func (m *memStore) seedFarm(ownerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.farms[id] = &model.Farm{
		FarmID:       id,
		OwnerID:      ownerID,
		Name:         "farm-" + id[:8],
		CropType:     "wheat",
		Area:         12.5,
		CreationTime: m.nextSeq(),
	}
	return id
}

// seedField inserts a field under farmID and returns its id.
func (m *memStore) seedField(farmID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.fields[id] = &model.Field{
		FieldID:      id,
		FarmID:       farmID,
		Name:         "field-" + id[:8],
		Geometry:     []model.LatLng{{Lat: 1, Lng: 2}, {Lat: 1, Lng: 3}, {Lat: 2, Lng: 3}},
		CropType:     "wheat",
		Area:         3.2,
		CreationTime: m.nextSeq(),
	}
	return id
}

type memUsers memStore

func (m *memUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if cp.UserID == "" {
		cp.UserID = uuid.NewString()
	}
	cp.CreationTime = (*memStore)(m).nextSeq()
	m.users[cp.UserID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) Get(_ context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByAPIKey(_ context.Context, apiKey string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.APIKey == apiKey {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

type memFarms memStore

func (m *memFarms) Create(_ context.Context, f *model.Farm) (*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	cp.FarmID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	m.farms[cp.FarmID] = &cp
	out := cp
	return &out, nil
}

func (m *memFarms) GetByID(_ context.Context, farmID string) (*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farms[farmID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFarms) ListByOwner(_ context.Context, ownerID string) ([]*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Farm
	for _, f := range m.farms {
		if f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime > out[j].CreationTime })
	return out, nil
}

func (m *memFarms) Update(_ context.Context, farmID string, upd model.FarmUpdate) (*model.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farms[farmID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if upd.Name != nil {
		f.Name = *upd.Name
	}
	if upd.CropType != nil {
		f.CropType = *upd.CropType
	}
	if upd.Description != nil {
		f.Description = upd.Description
	}
	cp := *f
	return &cp, nil
}

type memFields memStore

func (m *memFields) Create(_ context.Context, f *model.Field) (*model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	cp.FieldID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	m.fields[cp.FieldID] = &cp
	out := cp
	return &out, nil
}

func (m *memFields) GetByID(_ context.Context, fieldID string) (*model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fields[fieldID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFields) ListByFarm(_ context.Context, farmID string) ([]*model.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Field
	for _, f := range m.fields {
		if f.FarmID == farmID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime > out[j].CreationTime })
	return out, nil
}

type memReadings memStore

func (m *memReadings) Insert(_ context.Context, r *model.SensorReading) (*model.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.ReadingID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	if cp.Timestamp == 0 {
		cp.Timestamp = model.NowMillis()
	}
	m.readings = append(m.readings, &cp)
	out := cp
	return &out, nil
}

func (m *memReadings) Query(_ context.Context, plan query.Plan, q model.ReadingQuery) ([]*model.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SensorReading
	for _, r := range m.readings {
		if r.FieldID != q.FieldID {
			continue
		}
		if plan.Path == query.PathFieldType && r.SensorType != *q.SensorType {
			continue
		}
		if plan.PostFilterWindow && !query.InWindow(q, r.Timestamp) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].CreationTime > out[j].CreationTime
	})
	return out, nil
}

func (m *memReadings) LatestByType(_ context.Context, fieldID string, t model.SensorType) (*model.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *model.SensorReading
	for _, r := range m.readings {
		if r.FieldID != fieldID || r.SensorType != t {
			continue
		}
		if best == nil || r.Timestamp > best.Timestamp ||
			(r.Timestamp == best.Timestamp && r.CreationTime > best.CreationTime) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

type memAlerts memStore

func (m *memAlerts) Create(_ context.Context, a *model.Alert) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.AlertID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	cp.AcknowledgedBy = nil
	cp.AcknowledgedAt = nil
	cp.Resolved = false
	cp.ResolvedAt = nil
	m.alerts = append(m.alerts, &cp)
	out := cp
	return &out, nil
}

func (m *memAlerts) GetByID(_ context.Context, alertID string) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := (*memStore)(m).findAlert(alertID)
	if a == nil {
		return nil, model.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAlerts) ListByField(_ context.Context, fieldID string, includeResolved bool) ([]*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Alert
	for _, a := range m.alerts {
		if a.FieldID != fieldID {
			continue
		}
		if a.Resolved && !includeResolved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime > out[j].CreationTime })
	return out, nil
}

func (m *memAlerts) Acknowledge(_ context.Context, alertID, userID string, at int64) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := (*memStore)(m).findAlert(alertID)
	if a == nil {
		return nil, model.ErrNotFound
	}
	a.AcknowledgedBy = &userID
	a.AcknowledgedAt = &at
	cp := *a
	return &cp, nil
}

func (m *memAlerts) Resolve(_ context.Context, alertID string, at int64) (*model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := (*memStore)(m).findAlert(alertID)
	if a == nil {
		return nil, model.ErrNotFound
	}
	a.Resolved = true
	a.ResolvedAt = &at
	cp := *a
	return &cp, nil
}

func (m *memStore) findAlert(alertID string) *model.Alert {
	for _, a := range m.alerts {
		if a.AlertID == alertID {
			return a
		}
	}
	return nil
}

type memSpectral memStore

func (m *memSpectral) Create(_ context.Context, sd *model.SpectralData) (*model.SpectralData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sd
	cp.SpectralID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	m.spectral = append(m.spectral, &cp)
	out := cp
	return &out, nil
}

func (m *memSpectral) ListByField(_ context.Context, fieldID string) ([]*model.SpectralData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.SpectralData
	for _, sd := range m.spectral {
		if sd.FieldID == fieldID {
			cp := *sd
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaptureDate > out[j].CaptureDate })
	return out, nil
}

func (m *memSpectral) LatestByField(_ context.Context, fieldID string) (*model.SpectralData, error) {
	lst, _ := m.ListByField(context.Background(), fieldID)
	if len(lst) == 0 {
		return nil, nil
	}
	return lst[0], nil
}

func (m *memSpectral) UpdateStatus(_ context.Context, spectralID string, status model.ProcessingStatus) (*model.SpectralData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sd := range m.spectral {
		if sd.SpectralID == spectralID {
			sd.ProcessingStatus = status
			cp := *sd
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

type memImages memStore

func (m *memImages) Create(_ context.Context, img *model.PlantImage) (*model.PlantImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *img
	cp.ImageID = uuid.NewString()
	cp.CreationTime = (*memStore)(m).nextSeq()
	m.images = append(m.images, &cp)
	out := cp
	return &out, nil
}

func (m *memImages) ListByField(_ context.Context, fieldID string) ([]*model.PlantImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PlantImage
	for _, img := range m.images {
		if img.FieldID != nil && *img.FieldID == fieldID {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreationTime > out[j].CreationTime })
	return out, nil
}
