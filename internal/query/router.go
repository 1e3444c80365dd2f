// Package query selects the access path for a readings query from the shape
// of its filters. The choice is a pure function of which optional filters are
// present, never of data volume, so plans are reproducible regardless of
// stored data size.
package query

import "github.com/kiritosahai/agrisense-insights/internal/model"

// AccessPath identifies one of the two reading indexes.
type AccessPath int

const (
	// PathFieldType scans the (field, sensorType) index.
	PathFieldType AccessPath = iota
	// PathFieldTimestamp scans the (field, timestamp) index.
	PathFieldTimestamp
)

// String names the path for logs and tests.
func (p AccessPath) String() string {
	switch p {
	case PathFieldType:
		return "field_type"
	case PathFieldTimestamp:
		return "field_timestamp"
	}
	return "unknown"
}

// Plan is the chosen access path plus whether a time window must be applied
// as a post-filter after the index scan.
type Plan struct {
	Path             AccessPath
	PostFilterWindow bool
}

// Choose maps a query's filter shape to its plan: a category filter selects
// the (field, sensorType) index, otherwise the (field, timestamp) index is
// used. Any time window is applied after the scan in both cases.
func Choose(q model.ReadingQuery) Plan {
	p := Plan{PostFilterWindow: q.StartTime != nil || q.EndTime != nil}
	if q.SensorType != nil {
		p.Path = PathFieldType
	} else {
		p.Path = PathFieldTimestamp
	}
	return p
}

// InWindow reports whether ts passes the query's optional time window.
// Bounds are inclusive, matching the stored contract.
func InWindow(q model.ReadingQuery, ts int64) bool {
	if q.StartTime != nil && ts < *q.StartTime {
		return false
	}
	if q.EndTime != nil && ts > *q.EndTime {
		return false
	}
	return true
}
