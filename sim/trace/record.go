// Package trace provides decision-trace recording for scheduling runs.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// DispatchRecord captures an idle processor picking the top ready instance.
type DispatchRecord struct {
	Clock    int64
	Instance string
	Key      int64 // policy ranking key of the dispatched instance
	Ready    int   // ready-set size after the dispatch
}

// PreemptionRecord captures a preemption check at an arrival tick.
// Every check is recorded, including those that kept the running instance.
type PreemptionRecord struct {
	Clock        int64
	Running      string
	Candidate    string
	RunningKey   int64
	CandidateKey int64
	Preempted    bool
	Reason       string
}

// CompletionRecord captures an instance finishing its demand.
type CompletionRecord struct {
	Clock    int64 // end of the final slice
	Instance string
	Response int64 // completion - arrival
	Slack    int64 // deadline - completion
}

// MissRecord captures the deadline miss that ended a run.
type MissRecord struct {
	Clock     int64
	Instance  string
	Deadline  int64
	Remaining int64
	WasReady  bool // missed while waiting rather than while running
}
