// Package testutil provides shared test infrastructure for the rtsim engine.
// It holds the golden-trace dataset types and assertion helpers used by sim
// tests. It must not import sim: in-package sim tests depend on it.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldentraces.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one scheduling scenario and its expected schedule.
type GoldenTestCase struct {
	Name      string           `json:"name"`
	Policy    string           `json:"policy"`
	Horizon   int64            `json:"horizon"`
	Instances []GoldenInstance `json:"instances"`
	Expected  GoldenSchedule   `json:"expected"`
}

// GoldenInstance is one task instance in input order.
type GoldenInstance struct {
	ID            int    `json:"id"`
	InstanceIndex int    `json:"instance_index"`
	Label         string `json:"label"`
	Arrival       int64  `json:"arrival"`
	Deadline      int64  `json:"deadline"`
	RunTime       int64  `json:"run_time"`
	Period        int64  `json:"period"`
}

// GoldenSchedule is the expected outcome of a golden test case.
type GoldenSchedule struct {
	// Segments use the compact form "<label><index>[begin,end)", with a
	// trailing "*" on interrupted segments.
	Segments []string    `json:"segments"`
	Feasible bool        `json:"feasible"`
	EndTime  int64       `json:"end_time"`
	Miss     *GoldenMiss `json:"miss,omitempty"`

	// Utilization is busy ticks over EndTime; only checked for feasible runs.
	Utilization float64 `json:"utilization"`
}

// GoldenMiss identifies the expected missing instance.
type GoldenMiss struct {
	Label string `json:"label"`
	Clock int64  `json:"clock"`
}

// LoadGoldenDataset loads the golden traces from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldentraces.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
