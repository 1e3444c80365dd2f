// Package sqlite implements store.Store on modernc.org/sqlite. It is the
// development and test backend; deployments with a Postgres DSN use
// internal/store/postgres instead.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/kiritosahai/agrisense-insights/internal/model"
	"github.com/kiritosahai/agrisense-insights/internal/query"
	"github.com/kiritosahai/agrisense-insights/internal/store"
)

// New constructs a sqlite-backed store over an opened database.
func New(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users             { return &users{db: s.db} }
func (s *liteStore) Farms() store.Farms             { return &farms{db: s.db} }
func (s *liteStore) Fields() store.Fields           { return &fields{db: s.db} }
func (s *liteStore) Readings() store.Readings       { return &readings{db: s.db} }
func (s *liteStore) Alerts() store.Alerts           { return &alerts{db: s.db} }
func (s *liteStore) Spectral() store.Spectral       { return &spectral{db: s.db} }
func (s *liteStore) PlantImages() store.PlantImages { return &plantImages{db: s.db} }

// Ping implements health probing for the sqlite-backed store.
func (s *liteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func notFoundErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	if out.UserID == "" {
		out.UserID = uuid.New().String()
	}
	if out.Role == "" {
		out.Role = model.RoleUser
	}
	out.CreationTime = model.NowMillis()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, role, api_key, creation_time)
        VALUES (?,?,?,?,?,?)
    `, out.UserID, out.Email, out.DisplayName, out.Role, out.APIKey, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, role, api_key, creation_time
        FROM users WHERE user_id=?
    `, userID)
	return scanUser(row)
}

func (u *users) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, role, api_key, creation_time
        FROM users WHERE api_key=?
    `, apiKey)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var out model.User
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.Role, &out.APIKey, &out.CreationTime); err != nil {
		return nil, notFoundErr(err)
	}
	return &out, nil
}

// --- Farms ---

type farms struct{ db *sql.DB }

func (f *farms) Create(ctx context.Context, m *model.Farm) (*model.Farm, error) {
	out := *m
	if out.FarmID == "" {
		out.FarmID = uuid.New().String()
	}
	out.CreationTime = model.NowMillis()
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO farms (farm_id, owner_id, name, lat, lng, bbox_north, bbox_south, bbox_east, bbox_west, crop_type, area, description, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    `, out.FarmID, out.OwnerID, out.Name, out.Location.Lat, out.Location.Lng,
		out.BoundingBox.North, out.BoundingBox.South, out.BoundingBox.East, out.BoundingBox.West,
		out.CropType, out.Area, out.Description, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *farms) GetByID(ctx context.Context, farmID string) (*model.Farm, error) {
	var out model.Farm
	row := f.db.QueryRowContext(ctx, `
        SELECT farm_id, owner_id, name, lat, lng, bbox_north, bbox_south, bbox_east, bbox_west, crop_type, area, description, creation_time
        FROM farms WHERE farm_id=?
    `, farmID)
	if err := scanFarm(row.Scan, &out); err != nil {
		return nil, notFoundErr(err)
	}
	return &out, nil
}

func (f *farms) ListByOwner(ctx context.Context, ownerID string) ([]*model.Farm, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT farm_id, owner_id, name, lat, lng, bbox_north, bbox_south, bbox_east, bbox_west, crop_type, area, description, creation_time
        FROM farms WHERE owner_id=? ORDER BY creation_time DESC, rowid DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Farm
	for rows.Next() {
		var m model.Farm
		if err := scanFarm(rows.Scan, &m); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (f *farms) Update(ctx context.Context, farmID string, upd model.FarmUpdate) (*model.Farm, error) {
	cur, err := f.GetByID(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		cur.Name = *upd.Name
	}
	if upd.CropType != nil {
		cur.CropType = *upd.CropType
	}
	if upd.Description != nil {
		cur.Description = upd.Description
	}
	_, err = f.db.ExecContext(ctx, `
        UPDATE farms SET name=?, crop_type=?, description=? WHERE farm_id=?
    `, cur.Name, cur.CropType, cur.Description, farmID)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func scanFarm(scan func(...any) error, m *model.Farm) error {
	return scan(&m.FarmID, &m.OwnerID, &m.Name, &m.Location.Lat, &m.Location.Lng,
		&m.BoundingBox.North, &m.BoundingBox.South, &m.BoundingBox.East, &m.BoundingBox.West,
		&m.CropType, &m.Area, &m.Description, &m.CreationTime)
}

// --- Fields ---

type fields struct{ db *sql.DB }

func (f *fields) Create(ctx context.Context, m *model.Field) (*model.Field, error) {
	out := *m
	if out.FieldID == "" {
		out.FieldID = uuid.New().String()
	}
	out.CreationTime = model.NowMillis()
	geo, err := json.Marshal(out.Geometry)
	if err != nil {
		return nil, err
	}
	_, err = f.db.ExecContext(ctx, `
        INSERT INTO fields (field_id, farm_id, name, geometry, crop_type, planting_date, expected_harvest, area, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, out.FieldID, out.FarmID, out.Name, string(geo), out.CropType, out.PlantingDate, out.ExpectedHarvest, out.Area, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *fields) GetByID(ctx context.Context, fieldID string) (*model.Field, error) {
	row := f.db.QueryRowContext(ctx, `
        SELECT field_id, farm_id, name, geometry, crop_type, planting_date, expected_harvest, area, creation_time
        FROM fields WHERE field_id=?
    `, fieldID)
	out, err := scanField(row.Scan)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return out, nil
}

func (f *fields) ListByFarm(ctx context.Context, farmID string) ([]*model.Field, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT field_id, farm_id, name, geometry, crop_type, planting_date, expected_harvest, area, creation_time
        FROM fields WHERE farm_id=? ORDER BY creation_time DESC, rowid DESC
    `, farmID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Field
	for rows.Next() {
		m, err := scanField(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func scanField(scan func(...any) error) (*model.Field, error) {
	var m model.Field
	var geo string
	if err := scan(&m.FieldID, &m.FarmID, &m.Name, &geo, &m.CropType, &m.PlantingDate, &m.ExpectedHarvest, &m.Area, &m.CreationTime); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(geo), &m.Geometry); err != nil {
		return nil, err
	}
	return &m, nil
}

// --- Readings ---

type readings struct{ db *sql.DB }

func (r *readings) Insert(ctx context.Context, m *model.SensorReading) (*model.SensorReading, error) {
	out := *m
	if out.ReadingID == "" {
		out.ReadingID = uuid.New().String()
	}
	out.CreationTime = model.NowMillis()
	if out.Timestamp == 0 {
		out.Timestamp = out.CreationTime
	}
	var lat, lng *float64
	if out.Location != nil {
		lat, lng = &out.Location.Lat, &out.Location.Lng
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO sensor_readings (reading_id, field_id, sensor_type, value, unit, timestamp, lat, lng, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, out.ReadingID, out.FieldID, out.SensorType, out.Value, out.Unit, out.Timestamp, lat, lng, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

const readingCols = `reading_id, field_id, sensor_type, value, unit, timestamp, lat, lng, creation_time`

func (r *readings) Query(ctx context.Context, plan query.Plan, q model.ReadingQuery) ([]*model.SensorReading, error) {
	var rows *sql.Rows
	var err error
	switch plan.Path {
	case query.PathFieldType:
		rows, err = r.db.QueryContext(ctx, `
            SELECT `+readingCols+` FROM sensor_readings
            WHERE field_id=? AND sensor_type=? ORDER BY timestamp DESC
        `, q.FieldID, *q.SensorType)
	default:
		rows, err = r.db.QueryContext(ctx, `
            SELECT `+readingCols+` FROM sensor_readings
            WHERE field_id=? ORDER BY timestamp DESC
        `, q.FieldID)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.SensorReading
	for rows.Next() {
		m, err := scanReading(rows.Scan)
		if err != nil {
			return nil, err
		}
		if plan.PostFilterWindow && !query.InWindow(q, m.Timestamp) {
			continue
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *readings) LatestByType(ctx context.Context, fieldID string, t model.SensorType) (*model.SensorReading, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+readingCols+` FROM sensor_readings
        WHERE field_id=? AND sensor_type=? ORDER BY timestamp DESC, rowid DESC LIMIT 1
    `, fieldID, t)
	m, err := scanReading(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scanReading(scan func(...any) error) (*model.SensorReading, error) {
	var m model.SensorReading
	var lat, lng *float64
	if err := scan(&m.ReadingID, &m.FieldID, &m.SensorType, &m.Value, &m.Unit, &m.Timestamp, &lat, &lng, &m.CreationTime); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		m.Location = &model.LatLng{Lat: *lat, Lng: *lng}
	}
	return &m, nil
}

// --- Alerts ---

type alerts struct{ db *sql.DB }

const alertCols = `alert_id, field_id, type, severity, title, description, lat, lng, acknowledged_by, acknowledged_at, resolved, resolved_at, creation_time`

func (a *alerts) Create(ctx context.Context, m *model.Alert) (*model.Alert, error) {
	out := *m
	if out.AlertID == "" {
		out.AlertID = uuid.New().String()
	}
	out.CreationTime = model.NowMillis()
	out.Resolved = false
	out.AcknowledgedBy = nil
	out.AcknowledgedAt = nil
	out.ResolvedAt = nil
	var lat, lng *float64
	if out.Location != nil {
		lat, lng = &out.Location.Lat, &out.Location.Lng
	}
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO alerts (alert_id, field_id, type, severity, title, description, lat, lng, resolved, creation_time)
        VALUES (?,?,?,?,?,?,?,?,0,?)
    `, out.AlertID, out.FieldID, out.Type, out.Severity, out.Title, out.Description, lat, lng, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *alerts) GetByID(ctx context.Context, alertID string) (*model.Alert, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+alertCols+` FROM alerts WHERE alert_id=?`, alertID)
	m, err := scanAlert(row.Scan)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return m, nil
}

func (a *alerts) ListByField(ctx context.Context, fieldID string, includeResolved bool) ([]*model.Alert, error) {
	q := `SELECT ` + alertCols + ` FROM alerts WHERE field_id=?`
	if !includeResolved {
		q += ` AND resolved=0`
	}
	q += ` ORDER BY creation_time DESC, rowid DESC`
	rows, err := a.db.QueryContext(ctx, q, fieldID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Alert
	for rows.Next() {
		m, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (a *alerts) Acknowledge(ctx context.Context, alertID, userID string, at int64) (*model.Alert, error) {
	res, err := a.db.ExecContext(ctx, `
        UPDATE alerts SET acknowledged_by=?, acknowledged_at=? WHERE alert_id=?
    `, userID, at, alertID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return a.GetByID(ctx, alertID)
}

func (a *alerts) Resolve(ctx context.Context, alertID string, at int64) (*model.Alert, error) {
	res, err := a.db.ExecContext(ctx, `
        UPDATE alerts SET resolved=1, resolved_at=? WHERE alert_id=?
    `, at, alertID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return a.GetByID(ctx, alertID)
}

func scanAlert(scan func(...any) error) (*model.Alert, error) {
	var m model.Alert
	var lat, lng *float64
	var resolved int
	if err := scan(&m.AlertID, &m.FieldID, &m.Type, &m.Severity, &m.Title, &m.Description,
		&lat, &lng, &m.AcknowledgedBy, &m.AcknowledgedAt, &resolved, &m.ResolvedAt, &m.CreationTime); err != nil {
		return nil, err
	}
	m.Resolved = resolved != 0
	if lat != nil && lng != nil {
		m.Location = &model.LatLng{Lat: *lat, Lng: *lng}
	}
	return &m, nil
}

// --- Spectral ---

type spectral struct{ db *sql.DB }

const spectralCols = `spectral_id, field_id, image_url, capture_date, ndvi, evi, savi, gndvi, processing_status, metadata, creation_time`

func (s *spectral) Create(ctx context.Context, m *model.SpectralData) (*model.SpectralData, error) {
	out := *m
	if out.SpectralID == "" {
		out.SpectralID = uuid.New().String()
	}
	out.CreationTime = model.NowMillis()
	var meta *string
	if out.Metadata != nil {
		b, err := json.Marshal(out.Metadata)
		if err != nil {
			return nil, err
		}
		str := string(b)
		meta = &str
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO spectral_data (spectral_id, field_id, image_url, capture_date, ndvi, evi, savi, gndvi, processing_status, metadata, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
    `, out.SpectralID, out.FieldID, out.ImageURL, out.CaptureDate,
		out.Indices.NDVI, out.Indices.EVI, out.Indices.SAVI, out.Indices.GNDVI,
		out.ProcessingStatus, meta, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *spectral) ListByField(ctx context.Context, fieldID string) ([]*model.SpectralData, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+spectralCols+` FROM spectral_data WHERE field_id=? ORDER BY capture_date DESC, rowid DESC
    `, fieldID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.SpectralData
	for rows.Next() {
		m, err := scanSpectral(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (s *spectral) LatestByField(ctx context.Context, fieldID string) (*model.SpectralData, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT `+spectralCols+` FROM spectral_data WHERE field_id=? ORDER BY capture_date DESC, rowid DESC LIMIT 1
    `, fieldID)
	m, err := scanSpectral(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *spectral) UpdateStatus(ctx context.Context, spectralID string, status model.ProcessingStatus) (*model.SpectralData, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE spectral_data SET processing_status=? WHERE spectral_id=?
    `, status, spectralID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+spectralCols+` FROM spectral_data WHERE spectral_id=?`, spectralID)
	m, err := scanSpectral(row.Scan)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return m, nil
}

func scanSpectral(scan func(...any) error) (*model.SpectralData, error) {
	var m model.SpectralData
	var meta sql.NullString
	if err := scan(&m.SpectralID, &m.FieldID, &m.ImageURL, &m.CaptureDate,
		&m.Indices.NDVI, &m.Indices.EVI, &m.Indices.SAVI, &m.Indices.GNDVI,
		&m.ProcessingStatus, &meta, &m.CreationTime); err != nil {
		return nil, err
	}
	if meta.Valid {
		_ = json.Unmarshal([]byte(meta.String), &m.Metadata)
	}
	return &m, nil
}

// --- PlantImages ---

type plantImages struct{ db *sql.DB }

func (p *plantImages) Create(ctx context.Context, m *model.PlantImage) (*model.PlantImage, error) {
	out := *m
	if out.ImageID == "" {
		out.ImageID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = "uploaded"
	}
	out.CreationTime = model.NowMillis()
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO plant_images (image_id, user_id, storage_key, field_id, title, notes, status, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, out.ImageID, out.UserID, out.StorageKey, out.FieldID, out.Title, out.Notes, out.Status, out.CreationTime)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *plantImages) ListByField(ctx context.Context, fieldID string) ([]*model.PlantImage, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT image_id, user_id, storage_key, field_id, title, notes, status, creation_time
        FROM plant_images WHERE field_id=? ORDER BY creation_time DESC, rowid DESC
    `, fieldID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.PlantImage
	for rows.Next() {
		var m model.PlantImage
		if err := rows.Scan(&m.ImageID, &m.UserID, &m.StorageKey, &m.FieldID, &m.Title, &m.Notes, &m.Status, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}
