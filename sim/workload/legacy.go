package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// legacyFields is the number of integers in one legacy task record:
// index is_cycle in_time period_or_stop_time run_time.
const legacyFields = 5

// ParseLegacy reads the whitespace-separated text format: the horizon,
// followed by one record per task
//
//	index is_cycle in_time period_or_stop_time run_time
//
// where period_or_stop_time is the period of a periodic task (is_cycle != 0,
// relative deadline = period) or the absolute deadline of an aperiodic one.
// Labels are assigned A, B, … in record order.
func ParseLegacy(r io.Reader) (*TaskSetSpec, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var values []int64
	for scanner.Scan() {
		v, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", len(values)+1, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("missing horizon")
	}

	spec := &TaskSetSpec{Version: currentVersion, Horizon: values[0]}
	records := values[1:]
	if len(records)%legacyFields != 0 {
		return nil, fmt.Errorf("record %d is incomplete: want %d fields, got %d",
			len(records)/legacyFields+1, legacyFields, len(records)%legacyFields)
	}
	for i := 0; i < len(records); i += legacyFields {
		rec := records[i : i+legacyFields]
		t := TaskSpec{
			ID:       int(rec[0]),
			Label:    labelFor(len(spec.Tasks)),
			Periodic: rec[1] != 0,
			Arrival:  rec[2],
			RunTime:  rec[4],
		}
		if t.Periodic {
			t.Period = rec[3]
		} else {
			t.Deadline = rec[3]
		}
		spec.Tasks = append(spec.Tasks, t)
	}
	return spec, nil
}
