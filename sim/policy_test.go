package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy_ValidNames(t *testing.T) {
	tests := []struct {
		name string
		want Policy
	}{
		{"edf", EDF},
		{"llf", LLF},
		{"rms", RMS},
		{"EDF", EDF},
		{"Rms", RMS},
	}
	for _, tc := range tests {
		got, err := ParsePolicy(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestParsePolicy_UnknownName_ReturnsError(t *testing.T) {
	_, err := ParsePolicy("fifo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edf, llf, rms")
}

func TestIsValidPolicy(t *testing.T) {
	assert.True(t, IsValidPolicy("llf"))
	assert.False(t, IsValidPolicy(""))
	assert.False(t, IsValidPolicy("round-robin"))
}

func TestNewPolicy_UnknownName_Panics(t *testing.T) {
	assert.Panics(t, func() { NewPolicy("sjf") })
	assert.Equal(t, LLF, NewPolicy("llf"))
}

func TestPolicy_String_RoundTrips(t *testing.T) {
	for _, name := range PolicyNames() {
		assert.Equal(t, name, NewPolicy(name).String())
	}
	assert.Equal(t, []string{"edf", "llf", "rms"}, PolicyNames())
}

func TestPolicy_Key_PerDiscipline(t *testing.T) {
	// GIVEN an instance whose three keys all differ
	inst := mustPeriodic(t, 1, 0, "A", 10, 3)
	inst.Deadline = 7
	inst.DynamicLaxity = 2

	assert.Equal(t, int64(7), EDF.Key(&inst))
	assert.Equal(t, int64(2), LLF.Key(&inst))
	assert.Equal(t, int64(10), RMS.Key(&inst))
}

func TestPolicy_Less_TieBreaksByArrivalThenSequence(t *testing.T) {
	a := mustInstance(t, 1, "A", 0, 5, 2)
	b := mustInstance(t, 2, "B", 1, 5, 1)
	c := mustInstance(t, 3, "C", 1, 5, 1)
	a.seq, b.seq, c.seq = 0, 1, 2

	// equal deadline: earlier arrival first
	assert.True(t, EDF.Less(&a, &b))
	assert.False(t, EDF.Less(&b, &a))
	// equal deadline and arrival: admission order
	assert.True(t, EDF.Less(&b, &c))
	assert.False(t, EDF.Less(&c, &b))
}

func TestPolicy_Less_RMSSmallerPeriodWins(t *testing.T) {
	fast := mustPeriodic(t, 1, 0, "F", 4, 1)
	slow := mustPeriodic(t, 2, 0, "S", 8, 1)

	assert.True(t, RMS.Less(&fast, &slow))
	assert.False(t, RMS.Less(&slow, &fast))
}

func TestPolicy_Decide_StrictlySmallerKeyPreempts(t *testing.T) {
	running := mustInstance(t, 1, "A", 0, 10, 5)
	running.ExecutedTime = 1
	urgent := mustInstance(t, 2, "B", 1, 4, 1)

	d := EDF.Decide(&running, &urgent)
	assert.True(t, d.Preempt)
	assert.Equal(t, int64(10), d.RunningKey)
	assert.Equal(t, int64(4), d.CandidateKey)
}

func TestPolicy_Decide_EqualKeyDoesNotPreempt(t *testing.T) {
	running := mustInstance(t, 1, "A", 0, 5, 3)
	running.ExecutedTime = 1
	same := mustInstance(t, 2, "B", 1, 5, 1)

	assert.False(t, EDF.Decide(&running, &same).Preempt)
}

func TestPolicy_Decide_FinishedRunningNeverPreempted(t *testing.T) {
	running := mustInstance(t, 1, "A", 0, 10, 2)
	running.ExecutedTime = 2
	urgent := mustInstance(t, 2, "B", 1, 3, 1)

	d := EDF.Decide(&running, &urgent)
	assert.False(t, d.Preempt)
	assert.Equal(t, "running instance finished", d.Reason)
}

func TestPolicy_Decide_LLFUsesStoredLaxity(t *testing.T) {
	// GIVEN the LLF example at t=1: A laxity 2, B laxity 0
	a := mustInstance(t, 1, "A", 0, 5, 3)
	a.ExecutedTime = 1
	a.DynamicLaxity = a.Laxity(1)
	b := mustInstance(t, 2, "B", 1, 2, 1)
	b.DynamicLaxity = b.Laxity(1)

	d := LLF.Decide(&a, &b)
	assert.True(t, d.Preempt)
	assert.Equal(t, int64(2), d.RunningKey)
	assert.Equal(t, int64(0), d.CandidateKey)
}
