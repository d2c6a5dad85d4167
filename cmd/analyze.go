package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsim/rtsim/sim/workload"
)

var analyzeWorkloadPath string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print utilization-based schedulability bounds for a task set",
	Long:  "Print utilization, density, the Liu-Layland bound and the hyperperiod of a task set. The bound tests are sufficient, not necessary; use `run` or `compare` for an exact verdict.",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		spec, err := workload.LoadTaskSet(analyzeWorkloadPath)
		if err != nil {
			logrus.Fatalf("Failed to load task set: %v", err)
		}
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("Invalid task set: %v", err)
		}
		writeAnalysis(cmd.OutOrStdout(), workload.Analyze(spec))
	},
}

func writeAnalysis(w io.Writer, a workload.Analysis) {
	fmt.Fprintln(w, "=== Schedulability Analysis ===")
	fmt.Fprintf(w, "Periodic Tasks       : %d\n", a.PeriodicTasks)
	fmt.Fprintf(w, "Aperiodic Tasks      : %d\n", a.AperiodicTasks)
	fmt.Fprintf(w, "Instances            : %d\n", a.Instances)
	fmt.Fprintf(w, "Utilization          : %.4f\n", a.Utilization)
	fmt.Fprintf(w, "Density              : %.4f\n", a.Density)
	fmt.Fprintf(w, "Liu-Layland Bound    : %.4f\n", a.LiuLaylandBound)
	fmt.Fprintf(w, "RMS Bound Holds      : %v\n", a.RMSBoundHolds)
	fmt.Fprintf(w, "EDF Density Holds    : %v\n", a.EDFDensityHolds)
	if a.Hyperperiod > 0 {
		fmt.Fprintf(w, "Hyperperiod          : %d\n", a.Hyperperiod)
	} else {
		fmt.Fprintln(w, "Hyperperiod          : n/a")
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeWorkloadPath, "workload", "", "Path to the task-set file (.yaml, or legacy .txt)")
	_ = analyzeCmd.MarkFlagRequired("workload")

	rootCmd.AddCommand(analyzeCmd)
}
