package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsim/rtsim/sim"
)

var (
	compareWorkloadPath string
	compareHorizon      int64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run a task set under every policy and tabulate the verdicts",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		spec, instances, err := loadInstances(compareWorkloadPath, compareHorizon, cmd.Flags().Changed("horizon"))
		if err != nil {
			logrus.Fatalf("Failed to load task set: %v", err)
		}
		rows, err := comparePolicies(instances, spec.Horizon)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		writeComparison(cmd.OutOrStdout(), rows)
	},
}

// comparisonRow is one policy's outcome on a shared task set.
type comparisonRow struct {
	Policy  sim.Policy
	Result  *sim.SimulationResult
	Metrics *sim.Metrics
}

// comparePolicies simulates instances under each policy in PolicyNames order.
func comparePolicies(instances []sim.TaskInstance, horizon int64) ([]comparisonRow, error) {
	var rows []comparisonRow
	for _, name := range sim.PolicyNames() {
		p := sim.NewPolicy(name)
		r, err := sim.Simulate(p, instances, horizon)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		rows = append(rows, comparisonRow{Policy: p, Result: r, Metrics: sim.ComputeMetrics(r)})
	}
	return rows, nil
}

func writeComparison(w io.Writer, rows []comparisonRow) {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		verdict, miss := "success", "-"
		if !row.Result.Feasible {
			verdict = "failure"
			m := row.Result.Miss
			miss = fmt.Sprintf("%s%d@%d", m.Label, m.InstanceIndex, m.Clock)
		}
		cells = append(cells, []string{
			row.Policy.String(),
			verdict,
			strconv.Itoa(len(row.Result.Segments)),
			strconv.Itoa(row.Metrics.Preemptions),
			strconv.Itoa(row.Metrics.CompletedInstances),
			strconv.FormatInt(row.Result.EndTime, 10),
			miss,
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Policy", "Verdict", "Segments", "Preemptions", "Completed", "End", "Miss"})
	table.AppendBulk(cells)
	table.Render()
}

func init() {
	compareCmd.Flags().StringVar(&compareWorkloadPath, "workload", "", "Path to the task-set file (.yaml, or legacy .txt)")
	compareCmd.Flags().Int64Var(&compareHorizon, "horizon", 0, "Override the task set's horizon (in ticks)")
	_ = compareCmd.MarkFlagRequired("workload")

	rootCmd.AddCommand(compareCmd)
}
