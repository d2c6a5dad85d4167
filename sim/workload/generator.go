package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rtsim/rtsim/sim"
)

// DefaultPeriods are the candidate periods used when GenerateConfig.Periods is empty.
var DefaultPeriods = []int64{4, 5, 8, 10, 16, 20}

// MaxDefaultHorizon caps the hyperperiod used as the horizon when
// GenerateConfig.Horizon is 0. Every release up to the horizon is expanded
// into an instance, so longer hyperperiods need an explicit horizon.
const MaxDefaultHorizon int64 = 1_000_000

// GenerateConfig parameterizes a random periodic task set.
type GenerateConfig struct {
	Tasks       int     // number of periodic tasks
	Utilization float64 // target total utilization, in (0, Tasks]
	Periods     []int64 // candidate periods; DefaultPeriods if empty
	MaxOffset   int64   // first releases are drawn from [0, MaxOffset]
	Horizon     int64   // 0 = hyperperiod of the drawn periods, at most MaxDefaultHorizon
}

// Validate checks the generator parameters.
func (c *GenerateConfig) Validate() error {
	if c.Tasks <= 0 {
		return fmt.Errorf("tasks must be positive, got %d", c.Tasks)
	}
	if math.IsNaN(c.Utilization) || c.Utilization <= 0 || c.Utilization > float64(c.Tasks) {
		return fmt.Errorf("utilization must be in (0, %d], got %f", c.Tasks, c.Utilization)
	}
	for _, p := range c.Periods {
		if p <= 0 {
			return fmt.Errorf("periods must be positive, got %d", p)
		}
	}
	if c.MaxOffset < 0 {
		return fmt.Errorf("max offset must be non-negative, got %d", c.MaxOffset)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %d", c.Horizon)
	}
	return nil
}

// Generate draws a periodic task set. Per-task utilizations come from
// UUniFast; run times are round(u * period) clamped to [1, period].
// Deterministic given the same config and SimulationKey. With no explicit
// horizon, fails if the hyperperiod overflows or exceeds MaxDefaultHorizon.
func Generate(cfg GenerateConfig, rng *sim.PartitionedRNG) (*TaskSetSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	periods := cfg.Periods
	if len(periods) == 0 {
		periods = DefaultPeriods
	}

	utils := uunifast(rng.ForSubsystem(sim.SubsystemUtilization), cfg.Tasks, cfg.Utilization)
	periodRNG := rng.ForSubsystem(sim.SubsystemPeriods)
	offsetRNG := rng.ForSubsystem(sim.SubsystemOffsets)

	spec := &TaskSetSpec{Version: currentVersion}
	hyper := int64(0)
	for i, u := range utils {
		period := periods[periodRNG.Intn(len(periods))]
		run := int64(math.Round(u * float64(period)))
		run = max(1, min(run, period))
		var offset int64
		if cfg.MaxOffset > 0 {
			offset = offsetRNG.Int63n(cfg.MaxOffset + 1)
		}
		spec.Tasks = append(spec.Tasks, TaskSpec{
			ID:       i + 1,
			Label:    labelFor(i),
			Periodic: true,
			Arrival:  offset,
			Period:   period,
			RunTime:  run,
		})
		if i == 0 {
			hyper = period
		} else if hyper > 0 {
			hyper = lcm(hyper, period)
		}
	}

	spec.Horizon = cfg.Horizon
	if spec.Horizon == 0 {
		if hyper == 0 {
			return nil, fmt.Errorf("hyperperiod of the drawn periods overflows int64; set an explicit horizon")
		}
		if hyper > MaxDefaultHorizon {
			return nil, fmt.Errorf("hyperperiod %d exceeds %d; set an explicit horizon", hyper, MaxDefaultHorizon)
		}
		spec.Horizon = hyper
	}
	return spec, nil
}

// uunifast splits total utilization into n shares whose distribution is
// uniform over the simplex.
func uunifast(rng *rand.Rand, n int, total float64) []float64 {
	utils := make([]float64, n)
	sum := total
	for i := 0; i < n-1; i++ {
		next := sum * math.Pow(rng.Float64(), 1/float64(n-i-1))
		utils[i] = sum - next
		sum = next
	}
	utils[n-1] = sum
	return utils
}
