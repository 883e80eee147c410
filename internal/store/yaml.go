package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/shiftmeter/internal/model"
)

type yamlState struct {
	HourlyWage *string     `yaml:"hourly_wage,omitempty"`
	History    []yamlShift `yaml:"history"`
}

type yamlShift struct {
	ID      string  `yaml:"id"`
	TS      string  `yaml:"ts"`
	Seconds int64   `yaml:"seconds"`
	Amount  float64 `yaml:"amount"`
	Wage    float64 `yaml:"wage"`
}

// YAML keeps settings and shifts in a single YAML state file. Every mutation
// rewrites the whole file through a temp file and rename.
type YAML struct {
	path string
}

// OpenYAML prepares a YAML state file at path. A missing file is an empty state.
func OpenYAML(path string) (*YAML, error) {
	if path == "" {
		return nil, fmt.Errorf("state path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &YAML{path: path}, nil
}

// Close implements history.Backend.
func (y *YAML) Close() error {
	return nil
}

// LoadWage returns the stored wage string and whether one was saved.
func (y *YAML) LoadWage(_ context.Context) (string, bool, error) {
	state, err := y.read()
	if err != nil {
		return "", false, err
	}
	if state.HourlyWage == nil {
		return "", false, nil
	}
	return *state.HourlyWage, true, nil
}

// SaveWage stores the wage string.
func (y *YAML) SaveWage(_ context.Context, value string) error {
	state, err := y.read()
	if err != nil {
		return err
	}
	state.HourlyWage = &value
	return y.write(state)
}

// AppendShift stores a completed shift ahead of all existing ones.
func (y *YAML) AppendShift(_ context.Context, record model.ShiftRecord) error {
	state, err := y.read()
	if err != nil {
		return err
	}
	entry := yamlShift{
		ID:      record.ID,
		TS:      record.EndedAt.UTC().Format(time.RFC3339Nano),
		Seconds: record.DurationSeconds,
		Amount:  record.Amount,
		Wage:    record.Wage,
	}
	state.History = append([]yamlShift{entry}, state.History...)
	return y.write(state)
}

// ClearShifts removes every shift.
func (y *YAML) ClearShifts(_ context.Context) error {
	state, err := y.read()
	if err != nil {
		return err
	}
	state.History = []yamlShift{}
	return y.write(state)
}

// ListShifts returns all shifts, most recent first.
func (y *YAML) ListShifts(_ context.Context) ([]model.ShiftRecord, error) {
	state, err := y.read()
	if err != nil {
		return nil, err
	}
	records := make([]model.ShiftRecord, 0, len(state.History))
	for _, entry := range state.History {
		endedAt, err := time.Parse(time.RFC3339Nano, entry.TS)
		if err != nil {
			return nil, fmt.Errorf("failed to parse shift timestamp %q: %w", entry.TS, err)
		}
		records = append(records, model.ShiftRecord{
			ID:              entry.ID,
			EndedAt:         endedAt,
			DurationSeconds: entry.Seconds,
			Amount:          entry.Amount,
			Wage:            entry.Wage,
		})
	}
	return records, nil
}

func (y *YAML) read() (yamlState, error) {
	raw, err := os.ReadFile(y.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return yamlState{}, nil
		}
		return yamlState{}, fmt.Errorf("read state file: %w", err)
	}
	var state yamlState
	if err := yaml.Unmarshal(raw, &state); err != nil {
		return yamlState{}, fmt.Errorf("parse state yaml: %w", err)
	}
	return state, nil
}

func (y *YAML) write(state yamlState) error {
	if state.History == nil {
		state.History = []yamlShift{}
	}
	serialized, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(y.path), "state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(serialized); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpPath, y.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
