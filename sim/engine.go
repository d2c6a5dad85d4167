package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/rtsim/rtsim/sim/trace"
)

// EngineState is the coarse lifecycle state of an Engine.
type EngineState string

const (
	EngineIdle     EngineState = "idle"     // nothing running, waiting for arrivals
	EngineRunning  EngineState = "running"  // an instance holds the processor
	EngineDraining EngineState = "draining" // arrival queue exhausted, work remains
	EngineFailed   EngineState = "failed"   // a deadline was missed; terminal
	EngineTerminal EngineState = "terminal" // everything completed
)

// EngineConfig selects the policy and trace level of a run.
type EngineConfig struct {
	Policy Policy
	Trace  trace.TraceConfig
}

// Engine is the discrete-time scheduling loop. One iteration is one time
// slice; tick t covers [t, t+1). Instances are admitted on the tick equal to
// their ArrivalTime.
//
// An Engine is single-threaded and owns all instance state during Run.
type Engine struct {
	Clock   int64
	Horizon int64
	Policy  Policy

	Arrivals *ArrivalQueue
	Ready    *ReadySet
	// Trace is nil unless EngineConfig.Trace enables decision tracing.
	Trace *trace.SimulationTrace

	traceConfig trace.TraceConfig
	running     *TaskInstance // engine-owned copy; nil when idle
	start       int64         // tick at which the running instance last took the processor
	state       EngineState
	finished    []TaskInstance
	result      *SimulationResult
}

// NewEngine creates an Engine for the configured policy.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		Policy:      cfg.Policy,
		traceConfig: cfg.Trace,
		state:       EngineIdle,
	}
}

// State returns the engine's lifecycle state.
func (e *Engine) State() EngineState {
	return e.state
}

// Running returns a copy of the running instance and whether one exists.
func (e *Engine) Running() (TaskInstance, bool) {
	if e.running == nil {
		return TaskInstance{}, false
	}
	return *e.running, true
}

// Simulate validates instances and runs them through a fresh engine.
func Simulate(policy Policy, instances []TaskInstance, horizon int64) (*SimulationResult, error) {
	if horizon < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", horizon)
	}
	q, err := NewArrivalQueue(instances)
	if err != nil {
		return nil, err
	}
	return NewEngine(EngineConfig{Policy: policy}).Run(q, horizon), nil
}

// Run simulates arrivals until every instance has completed or a deadline is
// missed. The queue is not consumed: running the same queue twice yields
// identical results. Arrivals after horizon are dropped.
// Panics on a negative horizon or an internal-consistency fault.
func (e *Engine) Run(arrivals *ArrivalQueue, horizon int64) *SimulationResult {
	if horizon < 0 {
		panic(fmt.Sprintf("Run: negative horizon %d", horizon))
	}
	e.reset(arrivals, horizon)

	limit := int64(0)
	for _, t := range e.Arrivals.Items() {
		limit = max(limit, t.Deadline)
	}

	for {
		if e.Arrivals.Len() == 0 && e.Ready.Len() == 0 && e.running == nil {
			e.state = EngineTerminal
			break
		}
		// Every unfinished instance is reported missed by the tick of its
		// deadline, so the loop cannot legitimately pass the latest one.
		if e.Clock > limit {
			panic(fmt.Sprintf("Run: clock %d passed latest deadline %d with work outstanding", e.Clock, limit))
		}
		e.step(e.Clock)
		if e.state == EngineFailed {
			break
		}
		e.Clock++
	}

	return e.finish()
}

func (e *Engine) reset(arrivals *ArrivalQueue, horizon int64) {
	e.Clock = 0
	e.Horizon = horizon
	e.Arrivals = arrivals.clone()
	e.Ready = NewReadySet(e.Policy)
	e.running = nil
	e.start = 0
	e.state = EngineIdle
	e.finished = make([]TaskInstance, 0, e.Arrivals.Len())
	e.Trace = nil
	if e.traceConfig.Enabled() {
		e.Trace = trace.NewSimulationTrace(e.traceConfig)
	}
	e.result = &SimulationResult{
		Policy:   e.Policy.String(),
		Horizon:  horizon,
		Segments: make([]ExecutionSegment, 0),
		Feasible: true,
	}

	kept := e.Arrivals.queue[:0]
	for _, t := range e.Arrivals.queue {
		if t.ArrivalTime > horizon {
			logrus.Warnf("dropping %s: arrival %d is beyond horizon %d", t.Name(), t.ArrivalTime, horizon)
			e.result.Dropped++
			continue
		}
		kept = append(kept, t)
	}
	e.Arrivals.queue = kept
}

// step executes tick now.
func (e *Engine) step(now int64) {
	if e.admit(now) {
		if e.Policy.UsesLaxity() {
			e.recomputeLaxity(now)
		}
		if e.running != nil {
			e.checkPreemption(now)
		}
	}

	if e.running == nil && e.Ready.Len() > 0 {
		e.dispatch(now)
	}

	if e.detectMiss(now) {
		return
	}

	if e.running != nil {
		e.execute(now)
	}

	e.checkInvariants()
	e.updateState()
}

// admit moves arrivals due at now into the ready set and reports whether any arrived.
func (e *Engine) admit(now int64) bool {
	due := e.Arrivals.PopDue(now)
	for _, t := range due {
		logrus.Debugf("[tick %05d] arrival %s (deadline %d, run %d)", now, t.Name(), t.Deadline, t.TotalRunTime)
		e.Ready.Add(t)
	}
	return len(due) > 0
}

// recomputeLaxity refreshes LLF laxity for every ready instance and the running one.
func (e *Engine) recomputeLaxity(now int64) {
	e.Ready.RecomputeLaxity(now)
	if e.running != nil {
		e.running.DynamicLaxity = e.running.Laxity(now)
	}
}

func (e *Engine) checkPreemption(now int64) {
	candidate := e.Ready.Peek()
	if candidate == nil {
		return
	}
	d := e.Policy.Decide(e.running, candidate)
	if e.Trace != nil {
		e.Trace.RecordPreemption(trace.PreemptionRecord{
			Clock:        now,
			Running:      e.running.Name(),
			Candidate:    candidate.Name(),
			RunningKey:   d.RunningKey,
			CandidateKey: d.CandidateKey,
			Preempted:    d.Preempt,
			Reason:       d.Reason,
		})
	}
	if !d.Preempt {
		return
	}
	if now == e.start {
		panic(fmt.Sprintf("checkPreemption: %s preempted at its own dispatch tick %d", e.running.Name(), now))
	}

	logrus.Debugf("[tick %05d] preempt %s by %s (%s)", now, e.running.Name(), candidate.Name(), d.Reason)
	e.record(e.running, now, true)

	next := e.Ready.PopTop()
	e.Ready.Add(*e.running)
	e.run(&next, now)
}

// dispatch hands the idle processor to the top of the ready set.
func (e *Engine) dispatch(now int64) {
	if e.Policy.UsesLaxity() {
		e.Ready.RecomputeLaxity(now)
	}
	next := e.Ready.PopTop()
	logrus.Debugf("[tick %05d] dispatch %s", now, next.Name())
	if e.Trace != nil {
		e.Trace.RecordDispatch(trace.DispatchRecord{
			Clock:    now,
			Instance: next.Name(),
			Key:      e.Policy.Key(&next),
			Ready:    e.Ready.Len(),
		})
	}
	e.run(&next, now)
}

func (e *Engine) run(t *TaskInstance, now int64) {
	t.State = StateRunning
	t.Running = true
	e.running = t
	e.start = now
}

// detectMiss fails the run if an unfinished instance can no longer execute
// before its deadline: slice now would end at now+1 > deadline.
func (e *Engine) detectMiss(now int64) bool {
	var missed *TaskInstance
	wasRunning := false
	if e.running != nil && now >= e.running.Deadline {
		missed = e.running
		wasRunning = true
	} else {
		items := e.Ready.Items()
		for i := range items {
			t := &items[i]
			if now < t.Deadline {
				continue
			}
			if missed == nil || t.Deadline < missed.Deadline || (t.Deadline == missed.Deadline && t.seq < missed.seq) {
				missed = t
			}
		}
	}
	if missed == nil {
		return false
	}

	missed.State = StateMissed
	e.result.Feasible = false
	e.result.Miss = &DeadlineMiss{
		TaskID:        missed.ID,
		InstanceIndex: missed.InstanceIndex,
		Label:         missed.Label,
		Clock:         now,
		Deadline:      missed.Deadline,
		Remaining:     missed.Remaining(),
		WasRunning:    wasRunning,
	}
	if e.Trace != nil {
		e.Trace.RecordMiss(trace.MissRecord{
			Clock:     now,
			Instance:  missed.Name(),
			Deadline:  missed.Deadline,
			Remaining: missed.Remaining(),
			WasReady:  !wasRunning,
		})
	}
	logrus.Infof("[tick %05d] deadline miss: %s (deadline %d, %d slices remaining)", now, missed.Name(), missed.Deadline, missed.Remaining())
	e.state = EngineFailed
	return true
}

// execute runs the current instance for slice now.
func (e *Engine) execute(now int64) {
	t := e.running
	t.ExecutedTime++
	if t.ExecutedTime > t.TotalRunTime {
		panic(fmt.Sprintf("execute: %s executed %d of %d slices", t.Name(), t.ExecutedTime, t.TotalRunTime))
	}
	if !t.Finished() {
		return
	}

	end := now + 1
	logrus.Debugf("[tick %05d] complete %s at %d", now, t.Name(), end)
	e.record(t, end, false)
	if e.Trace != nil {
		e.Trace.RecordCompletion(trace.CompletionRecord{
			Clock:    end,
			Instance: t.Name(),
			Response: end - t.ArrivalTime,
			Slack:    t.Deadline - end,
		})
	}
	t.State = StateFinished
	t.Running = false
	e.finished = append(e.finished, *t)
	e.running = nil
}

// record appends the segment [e.start, end) of t.
func (e *Engine) record(t *TaskInstance, end int64, interrupted bool) {
	e.result.Segments = append(e.result.Segments, ExecutionSegment{
		TaskID:        t.ID,
		InstanceIndex: t.InstanceIndex,
		Label:         t.Label,
		ArrivalTime:   t.ArrivalTime,
		Deadline:      t.Deadline,
		BeginTime:     e.start,
		EndTime:       end,
		Interrupted:   interrupted,
	})
}

// checkInvariants panics on states the loop must never reach.
func (e *Engine) checkInvariants() {
	if e.running == nil {
		return
	}
	if e.running.ExecutedTime < 0 {
		panic(fmt.Sprintf("invariant: %s has negative executed time %d", e.running.Name(), e.running.ExecutedTime))
	}
	if e.Ready.contains(e.running.seq) {
		panic(fmt.Sprintf("invariant: running instance %s is also in the ready set", e.running.Name()))
	}
}

func (e *Engine) updateState() {
	switch {
	case e.Arrivals.Len() == 0 && (e.running != nil || e.Ready.Len() > 0):
		e.state = EngineDraining
	case e.running != nil:
		e.state = EngineRunning
	default:
		e.state = EngineIdle
	}
}

// finish snapshots instance states into the result.
func (e *Engine) finish() *SimulationResult {
	r := e.result
	r.EndTime = e.Clock

	instances := append([]TaskInstance{}, e.finished...)
	if e.running != nil {
		instances = append(instances, *e.running)
	}
	instances = append(instances, e.Ready.Items()...)
	instances = append(instances, e.Arrivals.Items()...)
	slices.SortFunc(instances, func(a, b TaskInstance) int {
		return a.seq - b.seq
	})
	r.Instances = instances

	logrus.Infof("[tick %05d] %s run ended: feasible=%v, %d segments", e.Clock, e.Policy, r.Feasible, len(r.Segments))
	e.result = nil
	return r
}
