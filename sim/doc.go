// Package sim provides the discrete-time scheduling engine for rtsim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - task.go: TaskInstance timing contract and progress fields
//   - policy.go: the closed policy set (EDF, LLF, RMS), ranking keys and preemption decisions
//   - engine.go: the per-tick loop (admit, preempt, dispatch, miss check, execute)
//
// # Time Model
//
// Time is an integer tick counter owned by the Engine. Tick t is the slice
// [t, t+1). An instance is admitted on the tick equal to its ArrivalTime,
// executes at most one slice per tick, and misses its deadline when it is
// still unfinished at tick Deadline. Segments are half-open [BeginTime, EndTime).
//
// # Architecture
//
// The sim package holds the core; supporting packages live alongside it:
//   - sim/workload/: task-set loading (YAML, legacy text), periodic expansion,
//     schedulability analysis and seeded generation
//   - sim/trace/: decision trace recording
//
// A deadline miss is not an error: it ends the run with Feasible=false.
// Internal-consistency faults panic.
package sim
