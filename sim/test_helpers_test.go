package sim

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mustInstance builds an aperiodic instance or fails the test.
func mustInstance(t *testing.T, id int, label string, arrival, deadline, run int64) TaskInstance {
	t.Helper()
	inst, err := NewTaskInstance(TaskParams{ID: id, Label: label, ArrivalTime: arrival, Deadline: deadline, RunTime: run})
	require.NoError(t, err)
	return inst
}

// mustPeriodic builds one instance of a periodic task whose deadline equals its next release.
func mustPeriodic(t *testing.T, id, index int, label string, period, run int64) TaskInstance {
	t.Helper()
	arrival := int64(index) * period
	inst, err := NewTaskInstance(TaskParams{
		ID: id, InstanceIndex: index, Label: label,
		ArrivalTime: arrival, Deadline: arrival + period, RunTime: run, Period: period,
	})
	require.NoError(t, err)
	return inst
}

// segmentSpans returns "<name>[begin,end)" strings for compact assertions;
// interrupted segments carry a trailing "*".
func segmentSpans(segs []ExecutionSegment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = spanString(s)
	}
	return out
}

func spanString(s ExecutionSegment) string {
	suffix := ""
	if s.Interrupted {
		suffix = "*"
	}
	return fmt.Sprintf("%s[%d,%d)%s", s.Name(), s.BeginTime, s.EndTime, suffix)
}

// tableRow returns the trimmed cells of the rendered table row whose first
// cell is key, or nil if there is none.
func tableRow(out, key string) []string {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "|") {
			continue
		}
		parts := strings.Split(strings.Trim(line, "|"), "|")
		cells := make([]string, len(parts))
		for i, p := range parts {
			cells[i] = strings.TrimSpace(p)
		}
		if len(cells) > 0 && cells[0] == key {
			return cells
		}
	}
	return nil
}
