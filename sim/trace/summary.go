package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDispatches  int
	PreemptionChecks int
	PreemptionCount  int
	CompletedCount   int
	MaxResponse      int64
	MinSlack         int64
	Missed           bool
	PreemptedByLabel map[string]int // preempted instance name → times preempted
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PreemptedByLabel: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDispatches = len(st.Dispatches)
	summary.PreemptionChecks = len(st.Preemptions)
	for _, p := range st.Preemptions {
		if p.Preempted {
			summary.PreemptionCount++
			summary.PreemptedByLabel[p.Running]++
		}
	}

	summary.CompletedCount = len(st.Completions)
	for i, c := range st.Completions {
		if c.Response > summary.MaxResponse {
			summary.MaxResponse = c.Response
		}
		if i == 0 || c.Slack < summary.MinSlack {
			summary.MinSlack = c.Slack
		}
	}

	summary.Missed = st.Miss != nil
	return summary
}
