package workload

import (
	"math"
)

// Analysis holds utilization-based schedulability figures for a task set.
// The bound tests are sufficient, not necessary: failing one does not mean
// the simulation will miss a deadline.
type Analysis struct {
	PeriodicTasks  int
	AperiodicTasks int
	Instances      int

	Utilization     float64 // sum of run_time / period over periodic tasks
	Density         float64 // sum of run_time / min(deadline, period)
	LiuLaylandBound float64 // n(2^(1/n) - 1) for n periodic tasks
	RMSBoundHolds   bool    // Utilization <= LiuLaylandBound
	EDFDensityHolds bool    // Density <= 1
	Hyperperiod     int64   // lcm of periods; 0 if none or overflow
}

// Analyze computes utilization figures for a validated spec. Instances counts
// the releases Expand would produce.
func Analyze(spec *TaskSetSpec) Analysis {
	var a Analysis
	for i := range spec.Tasks {
		t := &spec.Tasks[i]
		if !t.Periodic {
			a.AperiodicTasks++
			if t.Arrival <= spec.Horizon {
				a.Instances++
			}
			continue
		}
		a.PeriodicTasks++
		if t.Arrival <= spec.Horizon {
			a.Instances += int((spec.Horizon-t.Arrival)/t.Period) + 1
		}
		a.Utilization += float64(t.RunTime) / float64(t.Period)
		a.Density += float64(t.RunTime) / float64(min(t.RelativeDeadline(), t.Period))
		if a.PeriodicTasks == 1 {
			a.Hyperperiod = t.Period
		} else if a.Hyperperiod > 0 {
			a.Hyperperiod = lcm(a.Hyperperiod, t.Period)
		}
	}
	if a.PeriodicTasks > 0 {
		n := float64(a.PeriodicTasks)
		a.LiuLaylandBound = n * (math.Pow(2, 1/n) - 1)
	}
	a.RMSBoundHolds = a.Utilization <= a.LiuLaylandBound || a.PeriodicTasks == 0
	a.EDFDensityHolds = a.Density <= 1
	return a
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// lcm returns the least common multiple of two positive values, or 0 on overflow.
func lcm(a, b int64) int64 {
	q := a / gcd(a, b)
	if q > math.MaxInt64/b {
		return 0
	}
	return q * b
}
