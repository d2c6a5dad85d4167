// Tracks run-wide and per-task scheduling metrics such as response times,
// preemption counts and processor utilization.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// TaskMetrics aggregates the completed instances of one task label.
type TaskMetrics struct {
	Label          string  `json:"label"`
	Completed      int     `json:"completed"`
	Preemptions    int     `json:"preemptions"`
	MeanResponse   float64 `json:"mean_response"`
	StdDevResponse float64 `json:"stddev_response"`
	P95Response    float64 `json:"p95_response"`
	MaxResponse    int64   `json:"max_response"`
	MinSlack       int64   `json:"min_slack"` // deadline - completion, smallest over instances

	responses []float64
}

// Metrics aggregates statistics about one SimulationResult for final reporting.
type Metrics struct {
	Policy             string                  `json:"policy"`
	Feasible           bool                    `json:"feasible"`
	CompletedInstances int                     `json:"completed_instances"`
	Preemptions        int                     `json:"preemptions"`
	BusyTicks          int64                   `json:"busy_ticks"`
	Makespan           int64                   `json:"makespan"`
	Utilization        float64                 `json:"utilization"` // BusyTicks / Makespan
	Tasks              map[string]*TaskMetrics `json:"tasks"`
}

// ComputeMetrics derives Metrics from the segments of r.
// Response time of an instance is its completion tick minus its arrival.
func ComputeMetrics(r *SimulationResult) *Metrics {
	m := &Metrics{
		Policy:   r.Policy,
		Feasible: r.Feasible,
		Makespan: r.EndTime,
		Tasks:    make(map[string]*TaskMetrics),
	}
	for _, s := range r.Segments {
		tm, ok := m.Tasks[s.Label]
		if !ok {
			tm = &TaskMetrics{Label: s.Label}
			m.Tasks[s.Label] = tm
		}
		m.BusyTicks += s.Length()
		if s.Interrupted {
			m.Preemptions++
			tm.Preemptions++
			continue
		}
		response := s.EndTime - s.ArrivalTime
		slack := s.Deadline - s.EndTime
		if tm.Completed == 0 || slack < tm.MinSlack {
			tm.MinSlack = slack
		}
		tm.MaxResponse = max(tm.MaxResponse, response)
		tm.responses = append(tm.responses, float64(response))
		tm.Completed++
		m.CompletedInstances++
	}
	if m.Makespan > 0 {
		m.Utilization = float64(m.BusyTicks) / float64(m.Makespan)
	}
	for _, tm := range m.Tasks {
		tm.summarize()
	}
	return m
}

func (tm *TaskMetrics) summarize() {
	if len(tm.responses) == 0 {
		return
	}
	slices.Sort(tm.responses)
	tm.MeanResponse = stat.Mean(tm.responses, nil)
	if len(tm.responses) > 1 {
		tm.StdDevResponse = stat.StdDev(tm.responses, nil)
	}
	tm.P95Response = stat.Quantile(0.95, stat.Empirical, tm.responses, nil)
}

// Labels returns the task labels in sorted order.
func (m *Metrics) Labels() []string {
	labels := make([]string, 0, len(m.Tasks))
	for l := range m.Tasks {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Print displays aggregated metrics at the end of a run.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Scheduling Metrics ===")
	fmt.Fprintf(w, "Policy               : %s\n", m.Policy)
	fmt.Fprintf(w, "Feasible             : %v\n", m.Feasible)
	fmt.Fprintf(w, "Completed Instances  : %d\n", m.CompletedInstances)
	fmt.Fprintf(w, "Preemptions          : %d\n", m.Preemptions)
	fmt.Fprintf(w, "Busy Ticks           : %d / %d\n", m.BusyTicks, m.Makespan)
	fmt.Fprintf(w, "Utilization          : %.3f\n", m.Utilization)
	if len(m.Tasks) == 0 {
		return
	}

	rows := make([][]string, 0, len(m.Tasks))
	for _, l := range m.Labels() {
		tm := m.Tasks[l]
		rows = append(rows, []string{
			tm.Label,
			strconv.Itoa(tm.Completed),
			strconv.Itoa(tm.Preemptions),
			fmt.Sprintf("%.2f", tm.MeanResponse),
			fmt.Sprintf("%.2f", tm.StdDevResponse),
			fmt.Sprintf("%.2f", tm.P95Response),
			strconv.FormatInt(tm.MaxResponse, 10),
			strconv.FormatInt(tm.MinSlack, 10),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task", "Completed", "Preempted", "Mean", "SD", "P95", "Max", "Min Slack"})
	table.AppendBulk(rows)
	table.Render()
}

// SaveResults writes the metrics to path as indented JSON.
func (m *Metrics) SaveResults(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
