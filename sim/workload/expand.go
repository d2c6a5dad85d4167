package workload

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rtsim/rtsim/sim"
)

// Expand turns a validated task set into concrete instances, in task order and
// then release order. A periodic task releases at Arrival + k*Period for every
// release not after the horizon, each with deadline release + RelativeDeadline().
// Aperiodic tasks arriving after the horizon are skipped.
func Expand(spec *TaskSetSpec) ([]sim.TaskInstance, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task set: %w", err)
	}
	var instances []sim.TaskInstance
	for i := range spec.Tasks {
		t := &spec.Tasks[i]
		if !t.Periodic {
			if t.Arrival > spec.Horizon {
				logrus.Warnf("task %s: arrival %d is beyond horizon %d; skipped", t.Label, t.Arrival, spec.Horizon)
				continue
			}
			inst, err := sim.NewTaskInstance(sim.TaskParams{
				ID:          t.ID,
				Label:       t.Label,
				ArrivalTime: t.Arrival,
				Deadline:    t.Deadline,
				RunTime:     t.RunTime,
			})
			if err != nil {
				return nil, err
			}
			instances = append(instances, inst)
			continue
		}

		rel := t.RelativeDeadline()
		for k, release := 0, t.Arrival; release <= spec.Horizon; k, release = k+1, release+t.Period {
			inst, err := sim.NewTaskInstance(sim.TaskParams{
				ID:            t.ID,
				InstanceIndex: k,
				Label:         t.Label,
				ArrivalTime:   release,
				Deadline:      release + rel,
				RunTime:       t.RunTime,
				Period:        t.Period,
			})
			if err != nil {
				return nil, err
			}
			instances = append(instances, inst)
		}
	}
	return instances, nil
}
