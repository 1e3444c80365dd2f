package model

import "time"

// Role classifies an account. The core never mutates roles; they are set by
// whatever provisions users.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleMember Role = "member"
)

// User is an account able to own farms.
type User struct {
	UserID       string  `json:"userId"`
	Email        string  `json:"email"`
	DisplayName  *string `json:"displayName,omitempty"`
	Role         Role    `json:"role"`
	APIKey       string  `json:"-"`
	CreationTime int64   `json:"creationTime"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox delimits a farm on the map.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Farm is the tenant root: everything below a farm is owned by its owner.
type Farm struct {
	FarmID       string      `json:"farmId"`
	OwnerID      string      `json:"ownerId"`
	Name         string      `json:"name"`
	Location     LatLng      `json:"location"`
	BoundingBox  BoundingBox `json:"boundingBox"`
	CropType     string      `json:"cropType"`
	Area         float64     `json:"area"`
	Description  *string     `json:"description,omitempty"`
	CreationTime int64       `json:"creationTime"`
}

// FarmUpdate carries the mutable farm attributes. Nil fields are left as-is.
type FarmUpdate struct {
	Name        *string `json:"name,omitempty"`
	CropType    *string `json:"cropType,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Field is a plot under a farm. Geometry is an ordered vertex list; the core
// does not require the polygon to be closed.
type Field struct {
	FieldID         string   `json:"fieldId"`
	FarmID          string   `json:"farmId"`
	Name            string   `json:"name"`
	Geometry        []LatLng `json:"geometry"`
	CropType        string   `json:"cropType"`
	PlantingDate    *int64   `json:"plantingDate,omitempty"`
	ExpectedHarvest *int64   `json:"expectedHarvest,omitempty"`
	Area            float64  `json:"area"`
	CreationTime    int64    `json:"creationTime"`
}

// SensorType is one of the eight fixed measurement categories.
type SensorType string

const (
	SensorSoilMoisture SensorType = "soil_moisture"
	SensorTemperature  SensorType = "temperature"
	SensorHumidity     SensorType = "humidity"
	SensorLeafWetness  SensorType = "leaf_wetness"
	SensorPH           SensorType = "ph"
	SensorNitrogen     SensorType = "nitrogen"
	SensorPhosphorus   SensorType = "phosphorus"
	SensorPotassium    SensorType = "potassium"
)

// SensorTypes returns the fixed category enumeration in contract order.
// Latest-per-category output follows this order.
func SensorTypes() []SensorType {
	return []SensorType{
		SensorSoilMoisture, SensorTemperature, SensorHumidity, SensorLeafWetness,
		SensorPH, SensorNitrogen, SensorPhosphorus, SensorPotassium,
	}
}

// IsValid reports whether t is one of the fixed categories.
func (t SensorType) IsValid() bool {
	switch t {
	case SensorSoilMoisture, SensorTemperature, SensorHumidity, SensorLeafWetness,
		SensorPH, SensorNitrogen, SensorPhosphorus, SensorPotassium:
		return true
	}
	return false
}

// SensorReading is an immutable, append-only measurement fact.
type SensorReading struct {
	ReadingID    string     `json:"readingId"`
	FieldID      string     `json:"fieldId"`
	SensorType   SensorType `json:"sensorType"`
	Value        float64    `json:"value"`
	Unit         string     `json:"unit"`
	Timestamp    int64      `json:"timestamp"`
	Location     *LatLng    `json:"location,omitempty"`
	CreationTime int64      `json:"creationTime"`
}

// ReadingQuery captures the optional filters of a readings query. Which
// filters are set decides the access path (see internal/query).
type ReadingQuery struct {
	FieldID    string
	SensorType *SensorType
	StartTime  *int64
	EndTime    *int64
}

// AlertType classifies the condition an alert reports.
type AlertType string

const (
	AlertPestRisk           AlertType = "pest_risk"
	AlertDiseaseRisk        AlertType = "disease_risk"
	AlertDroughtStress      AlertType = "drought_stress"
	AlertNutrientDeficiency AlertType = "nutrient_deficiency"
	AlertIrrigationNeeded   AlertType = "irrigation_needed"
	AlertHarvestReady       AlertType = "harvest_ready"
)

// IsValid reports whether t is a known alert type.
func (t AlertType) IsValid() bool {
	switch t {
	case AlertPestRisk, AlertDiseaseRisk, AlertDroughtStress,
		AlertNutrientDeficiency, AlertIrrigationNeeded, AlertHarvestReady:
		return true
	}
	return false
}

// Severity orders alerts low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordinal of s, or -1 for an unknown severity.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// IsValid reports whether s is a known severity.
func (s Severity) IsValid() bool { return s.Rank() >= 0 }

// Alert is a risk/status notification raised against a field. Its lifecycle
// state is derived from (AcknowledgedBy, Resolved): active, acknowledged,
// resolved.
type Alert struct {
	AlertID        string    `json:"alertId"`
	FieldID        string    `json:"fieldId"`
	Type           AlertType `json:"type"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       *LatLng   `json:"location,omitempty"`
	AcknowledgedBy *string   `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *int64    `json:"acknowledgedAt,omitempty"`
	Resolved       bool      `json:"resolved"`
	ResolvedAt     *int64    `json:"resolvedAt,omitempty"`
	CreationTime   int64     `json:"creationTime"`
}

// ProcessingStatus tracks the spectral imagery pipeline state.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingRunning   ProcessingStatus = "processing"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// IsValid reports whether s is a known processing status.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case ProcessingPending, ProcessingRunning, ProcessingCompleted, ProcessingFailed:
		return true
	}
	return false
}

// SpectralIndices holds the derived vegetation indices for a capture.
type SpectralIndices struct {
	NDVI  float64 `json:"ndvi"`
	EVI   float64 `json:"evi"`
	SAVI  float64 `json:"savi"`
	GNDVI float64 `json:"gndvi"`
}

// SpectralMetadata is optional capture metadata the core stores but never
// interprets.
type SpectralMetadata struct {
	Resolution float64  `json:"resolution"`
	Bands      []string `json:"bands"`
	CloudCover float64  `json:"cloudCover"`
}

// SpectralData is an imagery-derived record consumed by the map collaborator.
type SpectralData struct {
	SpectralID       string            `json:"spectralId"`
	FieldID          string            `json:"fieldId"`
	ImageURL         string            `json:"imageUrl"`
	CaptureDate      int64             `json:"captureDate"`
	Indices          SpectralIndices   `json:"indices"`
	ProcessingStatus ProcessingStatus  `json:"processingStatus"`
	Metadata         *SpectralMetadata `json:"metadata,omitempty"`
	CreationTime     int64             `json:"creationTime"`
}

// FieldMapDetails bundles what the map collaborator needs to draw a field.
type FieldMapDetails struct {
	FarmBoundingBox BoundingBox   `json:"farmBoundingBox"`
	FieldGeometry   []LatLng      `json:"fieldGeometry"`
	CropType        string        `json:"cropType"`
	Area            float64       `json:"area"`
	LatestSpectral  *SpectralData `json:"latestSpectral"`
}

// PlantImage references an uploaded photo through an opaque blob key.
type PlantImage struct {
	ImageID      string  `json:"imageId"`
	UserID       string  `json:"userId"`
	StorageKey   string  `json:"storageKey"`
	FieldID      *string `json:"fieldId,omitempty"`
	Title        *string `json:"title,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Status       string  `json:"status"`
	FileURL      string  `json:"fileUrl,omitempty"`
	CreationTime int64   `json:"creationTime"`
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit used throughout the store.
func NowMillis() int64 { return time.Now().UnixMilli() }
