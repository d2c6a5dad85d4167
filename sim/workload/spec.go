package workload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// TaskSetSpec is the top-level task-set configuration.
// Loaded from YAML or the legacy text format via LoadTaskSet(path).
type TaskSetSpec struct {
	Version string     `yaml:"version"`
	Horizon int64      `yaml:"horizon"`
	Tasks   []TaskSpec `yaml:"tasks"`
}

// TaskSpec describes one task. A periodic task releases an instance at
// Arrival + k*Period for every release not after the horizon.
type TaskSpec struct {
	ID       int    `yaml:"id"`
	Label    string `yaml:"label"`
	Periodic bool   `yaml:"periodic"`
	Arrival  int64  `yaml:"arrival"`
	Period   int64  `yaml:"period,omitempty"`
	// Deadline is relative to each release for periodic tasks (0 = period)
	// and absolute for aperiodic tasks.
	Deadline int64 `yaml:"deadline,omitempty"`
	RunTime  int64 `yaml:"run_time"`
}

// RelativeDeadline returns the deadline offset of each release.
func (t *TaskSpec) RelativeDeadline() int64 {
	if !t.Periodic {
		return t.Deadline - t.Arrival
	}
	if t.Deadline == 0 {
		return t.Period
	}
	return t.Deadline
}

const currentVersion = "1"

// LoadTaskSet reads a task set from path. Files ending in ".txt" use the
// legacy whitespace format; everything else is parsed as YAML with strict
// field checking (unrecognized keys are rejected).
func LoadTaskSet(path string) (*TaskSetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task set: %w", err)
	}
	var spec *TaskSetSpec
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		spec, err = ParseLegacy(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing legacy task set: %w", err)
		}
	} else {
		spec = &TaskSetSpec{}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(spec); err != nil {
			return nil, fmt.Errorf("parsing task set: %w", err)
		}
	}
	spec.Normalize()
	logrus.Debugf("loaded %d tasks from %s (horizon %d)", len(spec.Tasks), path, spec.Horizon)
	return spec, nil
}

// SaveTaskSet writes spec to path as YAML.
func SaveTaskSet(path string, spec *TaskSetSpec) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshaling task set: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing task set: %w", err)
	}
	return nil
}

// Normalize fills defaults in-place: the version, missing labels (A, B, …
// by position) and, when every ID is zero, IDs 1..n by position.
// Idempotent.
func (s *TaskSetSpec) Normalize() {
	if s.Version == "" {
		s.Version = currentVersion
	}
	allZero := true
	for _, t := range s.Tasks {
		if t.ID != 0 {
			allZero = false
			break
		}
	}
	for i := range s.Tasks {
		if allZero && len(s.Tasks) > 1 {
			s.Tasks[i].ID = i + 1
		}
		if s.Tasks[i].Label == "" {
			s.Tasks[i].Label = labelFor(i)
		}
	}
}

// labelFor returns "A".."Z" for the first 26 positions and "T<n>" after.
func labelFor(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("T%d", i)
}

// Validate checks every field of the task set.
func (s *TaskSetSpec) Validate() error {
	if s.Version != currentVersion {
		return fmt.Errorf("unsupported version %q; valid: %s", s.Version, currentVersion)
	}
	if s.Horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %d", s.Horizon)
	}
	ids := make(map[int]bool, len(s.Tasks))
	labels := make(map[string]bool, len(s.Tasks))
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if err := validateTask(t, i); err != nil {
			return err
		}
		if ids[t.ID] {
			return fmt.Errorf("task[%d]: duplicate id %d", i, t.ID)
		}
		ids[t.ID] = true
		if labels[t.Label] {
			return fmt.Errorf("task[%d]: duplicate label %q", i, t.Label)
		}
		labels[t.Label] = true
	}
	return nil
}

func validateTask(t *TaskSpec, idx int) error {
	prefix := fmt.Sprintf("task[%d]", idx)
	if t.Label == "" {
		return fmt.Errorf("%s: label must not be empty", prefix)
	}
	if t.RunTime <= 0 {
		return fmt.Errorf("%s: run_time must be positive, got %d", prefix, t.RunTime)
	}
	if t.Arrival < 0 {
		return fmt.Errorf("%s: arrival must be non-negative, got %d", prefix, t.Arrival)
	}
	if !t.Periodic {
		if t.Period != 0 {
			return fmt.Errorf("%s: aperiodic task must not set period, got %d", prefix, t.Period)
		}
		if t.Deadline <= t.Arrival {
			return fmt.Errorf("%s: deadline %d must be after arrival %d", prefix, t.Deadline, t.Arrival)
		}
		return nil
	}
	if t.Period <= 0 {
		return fmt.Errorf("%s: period must be positive, got %d", prefix, t.Period)
	}
	if t.Deadline < 0 {
		return fmt.Errorf("%s: relative deadline must be non-negative, got %d", prefix, t.Deadline)
	}
	return nil
}
