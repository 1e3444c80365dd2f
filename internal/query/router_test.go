package query

import (
	"testing"

	"github.com/kiritosahai/agrisense-insights/internal/model"
)

func ptrT(t model.SensorType) *model.SensorType { return &t }
func ptrI(v int64) *int64                       { return &v }

func TestChoose(t *testing.T) {
	cases := []struct {
		name       string
		q          model.ReadingQuery
		wantPath   AccessPath
		wantWindow bool
	}{
		{
			name:     "no filters",
			q:        model.ReadingQuery{FieldID: "f1"},
			wantPath: PathFieldTimestamp,
		},
		{
			name:     "type only",
			q:        model.ReadingQuery{FieldID: "f1", SensorType: ptrT(model.SensorTemperature)},
			wantPath: PathFieldType,
		},
		{
			name:       "window only",
			q:          model.ReadingQuery{FieldID: "f1", StartTime: ptrI(100), EndTime: ptrI(200)},
			wantPath:   PathFieldTimestamp,
			wantWindow: true,
		},
		{
			name:       "type and window",
			q:          model.ReadingQuery{FieldID: "f1", SensorType: ptrT(model.SensorPH), StartTime: ptrI(100)},
			wantPath:   PathFieldType,
			wantWindow: true,
		},
		{
			name:       "end time alone forces window",
			q:          model.ReadingQuery{FieldID: "f1", EndTime: ptrI(500)},
			wantPath:   PathFieldTimestamp,
			wantWindow: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Choose(tc.q)
			if got.Path != tc.wantPath {
				t.Fatalf("path = %s, want %s", got.Path, tc.wantPath)
			}
			if got.PostFilterWindow != tc.wantWindow {
				t.Fatalf("postFilterWindow = %v, want %v", got.PostFilterWindow, tc.wantWindow)
			}
		})
	}
}

func TestChooseIgnoresDataShape(t *testing.T) {
	// Same filter shape must always yield the same plan.
	a := Choose(model.ReadingQuery{FieldID: "x", SensorType: ptrT(model.SensorNitrogen)})
	b := Choose(model.ReadingQuery{FieldID: "y", SensorType: ptrT(model.SensorHumidity)})
	if a != b {
		t.Fatalf("plans differ for identical filter shapes: %+v vs %+v", a, b)
	}
}

func TestInWindow(t *testing.T) {
	q := model.ReadingQuery{StartTime: ptrI(100), EndTime: ptrI(200)}
	for ts, want := range map[int64]bool{99: false, 100: true, 150: true, 200: true, 201: false} {
		if got := InWindow(q, ts); got != want {
			t.Fatalf("InWindow(%d) = %v, want %v", ts, got, want)
		}
	}
	open := model.ReadingQuery{}
	if !InWindow(open, -5) || !InWindow(open, 1<<60) {
		t.Fatal("open window must accept any timestamp")
	}
}
