package sim

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Policy is the closed set of scheduling disciplines. All three share the
// engine loop and differ only in the ranking key and preemption predicate.
type Policy int

const (
	// EDF ranks by absolute deadline (earliest first).
	EDF Policy = iota
	// LLF ranks by laxity, recomputed whenever an instance arrives.
	LLF
	// RMS ranks by the static priority derived from the task period.
	RMS
)

// validPolicies maps accepted policy names. Shared by IsValidPolicy and ParsePolicy.
var validPolicies = map[string]Policy{
	"edf": EDF,
	"llf": LLF,
	"rms": RMS,
}

// PolicyNames returns the accepted policy names in declaration order.
func PolicyNames() []string {
	names := make([]string, 0, len(validPolicies))
	for name := range validPolicies {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(validPolicies[a]) - int(validPolicies[b])
	})
	return names
}

// IsValidPolicy returns true if name is a recognized policy (case-insensitive).
func IsValidPolicy(name string) bool {
	_, ok := validPolicies[strings.ToLower(name)]
	return ok
}

// ParsePolicy resolves a policy by name.
func ParsePolicy(name string) (Policy, error) {
	p, ok := validPolicies[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown policy %q; valid: %s", name, strings.Join(PolicyNames(), ", "))
	}
	return p, nil
}

// NewPolicy resolves a policy by name.
// Panics on unrecognized names; callers validate with IsValidPolicy first.
func NewPolicy(name string) Policy {
	p, err := ParsePolicy(name)
	if err != nil {
		panic(err.Error())
	}
	return p
}

func (p Policy) String() string {
	switch p {
	case EDF:
		return "edf"
	case LLF:
		return "llf"
	case RMS:
		return "rms"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// UsesLaxity reports whether the ranking key depends on elapsed time.
func (p Policy) UsesLaxity() bool {
	return p == LLF
}

// Key returns the primary ranking key of t; smaller is more urgent.
// For LLF this is the laxity stored at the last recompute.
func (p Policy) Key(t *TaskInstance) int64 {
	switch p {
	case EDF:
		return t.Deadline
	case LLF:
		return t.DynamicLaxity
	case RMS:
		return t.StaticPriority
	default:
		panic(fmt.Sprintf("unhandled policy %d", int(p)))
	}
}

// Less orders two instances: primary key ascending, then arrival time
// ascending, then admission order.
func (p Policy) Less(a, b *TaskInstance) bool {
	ka, kb := p.Key(a), p.Key(b)
	if ka != kb {
		return ka < kb
	}
	if a.ArrivalTime != b.ArrivalTime {
		return a.ArrivalTime < b.ArrivalTime
	}
	return a.seq < b.seq
}

// Decision is the outcome of comparing the running instance against the
// best ready candidate.
type Decision struct {
	Preempt      bool
	RunningKey   int64
	CandidateKey int64
	Reason       string
}

// Decide returns whether candidate should take the processor from running.
// Preemption requires a strictly smaller primary key; tie-breaks never preempt.
// A running instance that has already finished is never preempted.
func (p Policy) Decide(running, candidate *TaskInstance) Decision {
	d := Decision{
		RunningKey:   p.Key(running),
		CandidateKey: p.Key(candidate),
	}
	switch {
	case running.Finished():
		d.Reason = "running instance finished"
	case d.CandidateKey < d.RunningKey:
		d.Preempt = true
		d.Reason = fmt.Sprintf("%s key %d < %d", p, d.CandidateKey, d.RunningKey)
	default:
		d.Reason = fmt.Sprintf("%s key %d >= %d", p, d.CandidateKey, d.RunningKey)
	}
	return d
}
