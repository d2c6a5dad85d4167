package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rtsim/rtsim/sim"
	"github.com/rtsim/rtsim/sim/trace"
	"github.com/rtsim/rtsim/sim/workload"
)

var (
	// CLI flags shared by run, compare and analyze
	workloadPath      string // Task-set file (YAML, or legacy text when the extension is .txt)
	simulationHorizon int64  // Overrides the task set's horizon when set
	logLevel          string // Log verbosity level

	// CLI flags for run
	policyName  string // Scheduling policy name (edf, llf, rms)
	traceLevel  string // Decision trace level (none, decisions)
	showMetrics bool   // Print response-time metrics after the schedule
	resultsPath string // File to save the result JSON to
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rtsim",
	Short: "Discrete-time simulator for uniprocessor real-time scheduling",
}

// runCmd simulates one task set under one policy
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a task set under EDF, LLF or RMS",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if !sim.IsValidPolicy(policyName) {
			logrus.Fatalf("Unknown policy %q. Valid: %v", policyName, sim.PolicyNames())
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, decisions", traceLevel)
		}

		spec, instances, err := loadInstances(workloadPath, simulationHorizon, cmd.Flags().Changed("horizon"))
		if err != nil {
			logrus.Fatalf("Failed to load task set: %v", err)
		}
		logrus.Infof("Starting %s simulation of %d instances (%d tasks), horizon=%d",
			policyName, len(instances), len(spec.Tasks), spec.Horizon)

		policy := sim.NewPolicy(policyName)
		engine := sim.NewEngine(sim.EngineConfig{
			Policy: policy,
			Trace:  trace.TraceConfig{Level: trace.TraceLevel(traceLevel)},
		})
		q, err := sim.NewArrivalQueue(instances)
		if err != nil {
			logrus.Fatalf("Invalid instances: %v", err)
		}
		result := engine.Run(q, spec.Horizon)

		out := cmd.OutOrStdout()
		if err := result.WriteText(out); err != nil {
			logrus.Fatalf("Failed to write schedule: %v", err)
		}
		if showMetrics {
			sim.ComputeMetrics(result).Print(out)
		}
		if engine.Trace != nil {
			printTraceSummary(out, trace.Summarize(engine.Trace))
		}
		if resultsPath != "" {
			if err := result.SaveJSON(resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}

		logrus.Info("Simulation complete.")
	},
}

// setupLogging applies --log to the package-level logger.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadInstances loads and expands a task set. When overrideHorizon is set,
// horizon replaces the one in the file.
func loadInstances(path string, horizon int64, overrideHorizon bool) (*workload.TaskSetSpec, []sim.TaskInstance, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("--workload is required")
	}
	spec, err := workload.LoadTaskSet(path)
	if err != nil {
		return nil, nil, err
	}
	if overrideHorizon {
		spec.Horizon = horizon
	}
	instances, err := workload.Expand(spec)
	if err != nil {
		return nil, nil, err
	}
	return spec, instances, nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Decision Trace ===")
	fmt.Fprintf(w, "Dispatches           : %d\n", s.TotalDispatches)
	fmt.Fprintf(w, "Preemption Checks    : %d\n", s.PreemptionChecks)
	fmt.Fprintf(w, "Preemptions          : %d\n", s.PreemptionCount)
	fmt.Fprintf(w, "Completions          : %d\n", s.CompletedCount)
	if s.CompletedCount > 0 {
		fmt.Fprintf(w, "Max Response         : %d\n", s.MaxResponse)
		fmt.Fprintf(w, "Min Slack            : %d\n", s.MinSlack)
	}
	fmt.Fprintf(w, "Missed               : %v\n", s.Missed)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&workloadPath, "workload", "", "Path to the task-set file (.yaml, or legacy .txt)")
	runCmd.Flags().Int64Var(&simulationHorizon, "horizon", 0, "Override the task set's horizon (in ticks)")
	runCmd.Flags().StringVar(&policyName, "policy", "edf", "Scheduling policy (edf, llf, rms)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print response-time metrics")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to save the result JSON to")
	_ = runCmd.MarkFlagRequired("workload")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
