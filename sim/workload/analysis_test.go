package workload

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_UtilizationAndBounds(t *testing.T) {
	// GIVEN A (C=1, T=4) and B (C=3, T=6): U = 0.25 + 0.5 = 0.75
	spec := &TaskSetSpec{Version: "1", Horizon: 11, Tasks: []TaskSpec{
		{ID: 1, Label: "A", Periodic: true, Period: 4, RunTime: 1},
		{ID: 2, Label: "B", Periodic: true, Period: 6, RunTime: 3},
	}}

	a := Analyze(spec)

	assert.Equal(t, 2, a.PeriodicTasks)
	assert.Equal(t, 5, a.Instances)
	assert.InDelta(t, 0.75, a.Utilization, 1e-9)
	assert.InDelta(t, 0.75, a.Density, 1e-9)
	assert.InDelta(t, 2*(math.Sqrt2-1), a.LiuLaylandBound, 1e-9)
	assert.True(t, a.RMSBoundHolds)
	assert.True(t, a.EDFDensityHolds)
	assert.Equal(t, int64(12), a.Hyperperiod)
}

func TestAnalyze_Overloaded(t *testing.T) {
	spec := &TaskSetSpec{Version: "1", Horizon: 10, Tasks: []TaskSpec{
		{ID: 1, Label: "A", Periodic: true, Period: 2, RunTime: 1},
		{ID: 2, Label: "B", Periodic: true, Period: 3, RunTime: 2},
	}}

	a := Analyze(spec)

	assert.Greater(t, a.Utilization, 1.0)
	assert.False(t, a.RMSBoundHolds)
	assert.False(t, a.EDFDensityHolds)
}

func TestAnalyze_ConstrainedDeadlineRaisesDensity(t *testing.T) {
	spec := &TaskSetSpec{Version: "1", Horizon: 10, Tasks: []TaskSpec{
		{ID: 1, Label: "A", Periodic: true, Period: 10, Deadline: 2, RunTime: 1},
	}}

	a := Analyze(spec)

	assert.InDelta(t, 0.1, a.Utilization, 1e-9)
	assert.InDelta(t, 0.5, a.Density, 1e-9)
}

func TestAnalyze_AperiodicOnly(t *testing.T) {
	spec := &TaskSetSpec{Version: "1", Horizon: 10, Tasks: []TaskSpec{
		{ID: 1, Label: "A", Arrival: 0, Deadline: 3, RunTime: 1},
	}}

	a := Analyze(spec)

	assert.Equal(t, 1, a.AperiodicTasks)
	assert.Equal(t, 1, a.Instances)
	assert.Equal(t, 0.0, a.LiuLaylandBound)
	assert.True(t, a.RMSBoundHolds)
	assert.Equal(t, int64(0), a.Hyperperiod)
}

func TestLcm_Overflow_ReturnsZero(t *testing.T) {
	assert.Equal(t, int64(12), lcm(4, 6))
	assert.Equal(t, int64(0), lcm(math.MaxInt64-1, math.MaxInt64-2))
}
