package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ExecutionSegment is one contiguous interval during which an instance held
// the processor. The interval is half-open: slices BeginTime..EndTime-1 ran.
type ExecutionSegment struct {
	TaskID        int    `json:"task_id"`
	InstanceIndex int    `json:"instance_index"`
	Label         string `json:"label"`
	ArrivalTime   int64  `json:"arrival_time"`
	Deadline      int64  `json:"deadline"`
	BeginTime     int64  `json:"begin_time"`
	EndTime       int64  `json:"end_time"`
	Interrupted   bool   `json:"interrupted"`
}

// Length returns the number of slices executed in the segment.
func (s ExecutionSegment) Length() int64 {
	return s.EndTime - s.BeginTime
}

// Name returns the label followed by the instance index, e.g. "A2".
func (s ExecutionSegment) Name() string {
	return fmt.Sprintf("%s%d", s.Label, s.InstanceIndex)
}

// DeadlineMiss identifies the instance whose deadline ended the run.
type DeadlineMiss struct {
	TaskID        int    `json:"task_id"`
	InstanceIndex int    `json:"instance_index"`
	Label         string `json:"label"`
	Clock         int64  `json:"clock"`
	Deadline      int64  `json:"deadline"`
	Remaining     int64  `json:"remaining"`
	WasRunning    bool   `json:"was_running"`
}

// SimulationResult is the immutable outcome of one engine run.
type SimulationResult struct {
	Policy   string             `json:"policy"`
	Horizon  int64              `json:"horizon"`
	Segments []ExecutionSegment `json:"segments"`
	Feasible bool               `json:"feasible"`
	Miss     *DeadlineMiss      `json:"miss,omitempty"`
	EndTime  int64              `json:"end_time"` // tick at which the loop stopped
	Dropped  int                `json:"dropped"`  // arrivals beyond the horizon, never admitted

	// Instances holds the final state of every non-dropped input instance, in input order.
	Instances []TaskInstance `json:"-"`
}

// SegmentsFor returns the segments of one instance in recording order.
func (r *SimulationResult) SegmentsFor(taskID, instanceIndex int) []ExecutionSegment {
	var out []ExecutionSegment
	for _, s := range r.Segments {
		if s.TaskID == taskID && s.InstanceIndex == instanceIndex {
			out = append(out, s)
		}
	}
	return out
}

// WriteText renders one line per segment,
// "<label><instance_index> <arrival> <deadline> <begin> <end>",
// followed by a "success" or "failure" line.
func (r *SimulationResult) WriteText(w io.Writer) error {
	for _, s := range r.Segments {
		if _, err := fmt.Fprintf(w, "%s %d %d %d %d\n", s.Name(), s.ArrivalTime, s.Deadline, s.BeginTime, s.EndTime); err != nil {
			return err
		}
	}
	verdict := "success"
	if !r.Feasible {
		verdict = "failure"
	}
	_, err := fmt.Fprintln(w, verdict)
	return err
}

// SaveJSON writes the result to path as indented JSON.
func (r *SimulationResult) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
