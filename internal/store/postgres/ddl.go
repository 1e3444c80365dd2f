package postgres

// ddl mirrors the sqlite schema in Postgres dialect. Timestamps are epoch
// milliseconds (BIGINT).
const ddl = `
CREATE TABLE IF NOT EXISTS users (
    user_id       TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT,
    role          TEXT NOT NULL DEFAULT 'user',
    api_key       TEXT NOT NULL UNIQUE,
    creation_time BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS farms (
    farm_id       TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL REFERENCES users(user_id),
    name          TEXT NOT NULL,
    lat           DOUBLE PRECISION NOT NULL,
    lng           DOUBLE PRECISION NOT NULL,
    bbox_north    DOUBLE PRECISION NOT NULL,
    bbox_south    DOUBLE PRECISION NOT NULL,
    bbox_east     DOUBLE PRECISION NOT NULL,
    bbox_west     DOUBLE PRECISION NOT NULL,
    crop_type     TEXT NOT NULL,
    area          DOUBLE PRECISION NOT NULL,
    description   TEXT,
    creation_time BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS farms_by_owner ON farms(owner_id, creation_time);

CREATE TABLE IF NOT EXISTS fields (
    field_id         TEXT PRIMARY KEY,
    farm_id          TEXT NOT NULL REFERENCES farms(farm_id),
    name             TEXT NOT NULL,
    geometry         JSONB NOT NULL,
    crop_type        TEXT NOT NULL,
    planting_date    BIGINT,
    expected_harvest BIGINT,
    area             DOUBLE PRECISION NOT NULL,
    creation_time    BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS fields_by_farm ON fields(farm_id, creation_time);

CREATE TABLE IF NOT EXISTS sensor_readings (
    reading_id    TEXT PRIMARY KEY,
    field_id      TEXT NOT NULL,
    sensor_type   TEXT NOT NULL,
    value         DOUBLE PRECISION NOT NULL,
    unit          TEXT NOT NULL,
    timestamp     BIGINT NOT NULL,
    lat           DOUBLE PRECISION,
    lng           DOUBLE PRECISION,
    creation_time BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS readings_by_field_type ON sensor_readings(field_id, sensor_type, timestamp);
CREATE INDEX IF NOT EXISTS readings_by_field_time ON sensor_readings(field_id, timestamp);

CREATE TABLE IF NOT EXISTS alerts (
    alert_id        TEXT PRIMARY KEY,
    field_id        TEXT NOT NULL,
    type            TEXT NOT NULL,
    severity        TEXT NOT NULL,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL,
    lat             DOUBLE PRECISION,
    lng             DOUBLE PRECISION,
    acknowledged_by TEXT,
    acknowledged_at BIGINT,
    resolved        BOOLEAN NOT NULL DEFAULT FALSE,
    resolved_at     BIGINT,
    creation_time   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS alerts_by_field ON alerts(field_id, creation_time);

CREATE TABLE IF NOT EXISTS spectral_data (
    spectral_id       TEXT PRIMARY KEY,
    field_id          TEXT NOT NULL,
    image_url         TEXT NOT NULL,
    capture_date      BIGINT NOT NULL,
    ndvi              DOUBLE PRECISION NOT NULL,
    evi               DOUBLE PRECISION NOT NULL,
    savi              DOUBLE PRECISION NOT NULL,
    gndvi             DOUBLE PRECISION NOT NULL,
    processing_status TEXT NOT NULL,
    metadata          JSONB,
    creation_time     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS spectral_by_field_date ON spectral_data(field_id, capture_date);

CREATE TABLE IF NOT EXISTS plant_images (
    image_id      TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    storage_key   TEXT NOT NULL,
    field_id      TEXT,
    title         TEXT,
    notes         TEXT,
    status        TEXT NOT NULL,
    creation_time BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS plant_images_by_field ON plant_images(field_id, creation_time);
`
