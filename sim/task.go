// Defines the TaskInstance struct that models one activation of a real-time task.
// Tracks the immutable timing contract (arrival, deadline, run time) and the
// progress fields the engine mutates while the instance is ready or running.

package sim

import (
	"fmt"
)

// TaskState represents the lifecycle state of a task instance.
type TaskState string

const (
	StatePending  TaskState = "pending"  // not yet arrived
	StateReady    TaskState = "ready"    // arrived, waiting in the ready set
	StateRunning  TaskState = "running"  // holds the processor
	StateFinished TaskState = "finished" // ExecutedTime == TotalRunTime
	StateMissed   TaskState = "missed"   // deadline passed before finishing
)

// TaskInstance is one concrete activation of a task. Periodic tasks are expanded
// into one instance per period before the run (see sim/workload).
//
// Instances are plain values: the engine copies them between the arrival queue,
// the ready set and the running slot, so an instance is never visible in two
// places at once and the caller's slice is never mutated.
type TaskInstance struct {
	ID            int    // Identifier of the originating task, shared by its periodic instances
	InstanceIndex int    // Sequence number among instances of the same task (0 for aperiodic)
	Label         string // Display name

	ArrivalTime  int64 // Tick at which the instance becomes ready
	Deadline     int64 // Absolute tick by which TotalRunTime slices must have executed
	TotalRunTime int64 // Execution demand in whole slices
	Period       int64 // Task period in ticks; 0 for aperiodic instances

	// StaticPriority is the RMS ranking code. Smaller values are more urgent.
	// Fixed when the instance is created and never recomputed.
	StaticPriority int64

	// Engine-owned progress fields.
	ExecutedTime  int64     // Slices executed so far, 0..TotalRunTime
	DynamicLaxity int64     // LLF laxity as of the last recompute
	Running       bool      // Set while the instance holds the running slot
	State         TaskState // pending, ready, running, finished, missed

	seq int // admission order, final tie-break
}

// TaskParams carries the caller-supplied fields of a new TaskInstance.
type TaskParams struct {
	ID            int
	InstanceIndex int
	Label         string
	ArrivalTime   int64
	Deadline      int64
	RunTime       int64
	Period        int64
}

// NewTaskInstance builds a validated TaskInstance from params.
// The RMS static priority is derived here, once: the period for periodic
// instances, the relative deadline for aperiodic ones.
func NewTaskInstance(p TaskParams) (TaskInstance, error) {
	t := TaskInstance{
		ID:            p.ID,
		InstanceIndex: p.InstanceIndex,
		Label:         p.Label,
		ArrivalTime:   p.ArrivalTime,
		Deadline:      p.Deadline,
		TotalRunTime:  p.RunTime,
		Period:        p.Period,
		State:         StatePending,
	}
	t.StaticPriority = t.derivedPriority()
	if err := t.Validate(); err != nil {
		return TaskInstance{}, err
	}
	return t, nil
}

func (t *TaskInstance) derivedPriority() int64 {
	if t.Period > 0 {
		return t.Period
	}
	return t.Deadline - t.ArrivalTime
}

// Validate reports malformed timing contracts. Such instances never enter the engine.
func (t *TaskInstance) Validate() error {
	if t.TotalRunTime <= 0 {
		return fmt.Errorf("task %s: run time must be positive, got %d", t.Name(), t.TotalRunTime)
	}
	if t.ArrivalTime < 0 {
		return fmt.Errorf("task %s: arrival time must be non-negative, got %d", t.Name(), t.ArrivalTime)
	}
	if t.Deadline <= t.ArrivalTime {
		return fmt.Errorf("task %s: deadline %d must be after arrival %d", t.Name(), t.Deadline, t.ArrivalTime)
	}
	if t.Period < 0 {
		return fmt.Errorf("task %s: period must be non-negative, got %d", t.Name(), t.Period)
	}
	if t.StaticPriority < 0 {
		return fmt.Errorf("task %s: static priority must be non-negative, got %d", t.Name(), t.StaticPriority)
	}
	if t.ExecutedTime < 0 || t.ExecutedTime > t.TotalRunTime {
		return fmt.Errorf("task %s: executed time %d outside [0, %d]", t.Name(), t.ExecutedTime, t.TotalRunTime)
	}
	return nil
}

// Name returns the label followed by the instance index, e.g. "A2".
func (t *TaskInstance) Name() string {
	return fmt.Sprintf("%s%d", t.Label, t.InstanceIndex)
}

// Remaining returns the slices still to execute.
func (t *TaskInstance) Remaining() int64 {
	return t.TotalRunTime - t.ExecutedTime
}

// Finished reports whether the instance has executed its full demand.
func (t *TaskInstance) Finished() bool {
	return t.ExecutedTime == t.TotalRunTime
}

// Laxity returns deadline - now - remaining: the slack left if the instance
// ran continuously from now.
func (t *TaskInstance) Laxity(now int64) int64 {
	return t.Deadline - now - t.Remaining()
}

// String returns a human-readable representation of a TaskInstance.
func (t TaskInstance) String() string {
	return fmt.Sprintf("Task: (%s, State: %s, Executed: %d/%d, Arrival: %d, Deadline: %d)",
		t.Name(), t.State, t.ExecutedTime, t.TotalRunTime, t.ArrivalTime, t.Deadline)
}
