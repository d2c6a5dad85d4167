package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, TaskState("pending"), StatePending)
	assert.Equal(t, TaskState("ready"), StateReady)
	assert.Equal(t, TaskState("running"), StateRunning)
	assert.Equal(t, TaskState("finished"), StateFinished)
	assert.Equal(t, TaskState("missed"), StateMissed)
}

func TestNewTaskInstance_RequiredFields_SetCorrectly(t *testing.T) {
	// GIVEN a periodic instance description
	p := TaskParams{ID: 3, InstanceIndex: 2, Label: "C", ArrivalTime: 20, Deadline: 30, RunTime: 4, Period: 10}

	// WHEN NewTaskInstance is called
	inst, err := NewTaskInstance(p)

	// THEN fields MUST match and progress starts at zero
	require.NoError(t, err)
	assert.Equal(t, 3, inst.ID)
	assert.Equal(t, 2, inst.InstanceIndex)
	assert.Equal(t, "C", inst.Label)
	assert.Equal(t, int64(20), inst.ArrivalTime)
	assert.Equal(t, int64(30), inst.Deadline)
	assert.Equal(t, int64(4), inst.TotalRunTime)
	assert.Equal(t, int64(0), inst.ExecutedTime)
	assert.Equal(t, StatePending, inst.State)
	assert.False(t, inst.Running)
}

func TestNewTaskInstance_StaticPriority_DerivedFromPeriod(t *testing.T) {
	inst, err := NewTaskInstance(TaskParams{Label: "A", ArrivalTime: 0, Deadline: 8, RunTime: 1, Period: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(5), inst.StaticPriority)
}

func TestNewTaskInstance_Aperiodic_StaticPriorityIsRelativeDeadline(t *testing.T) {
	inst, err := NewTaskInstance(TaskParams{Label: "A", ArrivalTime: 4, Deadline: 10, RunTime: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(6), inst.StaticPriority)
}

func TestNewTaskInstance_Malformed_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		p    TaskParams
	}{
		{"zero run time", TaskParams{Label: "A", ArrivalTime: 0, Deadline: 5, RunTime: 0}},
		{"negative run time", TaskParams{Label: "A", ArrivalTime: 0, Deadline: 5, RunTime: -1}},
		{"deadline equals arrival", TaskParams{Label: "A", ArrivalTime: 5, Deadline: 5, RunTime: 1}},
		{"deadline before arrival", TaskParams{Label: "A", ArrivalTime: 5, Deadline: 2, RunTime: 1}},
		{"negative arrival", TaskParams{Label: "A", ArrivalTime: -1, Deadline: 2, RunTime: 1}},
		{"negative period", TaskParams{Label: "A", ArrivalTime: 0, Deadline: 2, RunTime: 1, Period: -3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTaskInstance(tc.p)
			assert.Error(t, err)
		})
	}
}

func TestTaskInstance_LaxityAndRemaining(t *testing.T) {
	// GIVEN A with deadline 5, run 3, one slice executed
	inst := mustInstance(t, 1, "A", 0, 5, 3)
	inst.ExecutedTime = 1

	// THEN laxity at t=1 is 5 - 1 - 2 = 2
	assert.Equal(t, int64(2), inst.Remaining())
	assert.Equal(t, int64(2), inst.Laxity(1))
	assert.False(t, inst.Finished())

	inst.ExecutedTime = 3
	assert.True(t, inst.Finished())
}

func TestTaskInstance_String_IncludesNameAndState(t *testing.T) {
	inst := mustInstance(t, 1, "B", 0, 5, 3)
	s := inst.String()
	assert.Contains(t, s, "B0")
	assert.Contains(t, s, "pending")
}
