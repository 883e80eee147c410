// Package model defines shared data structures.
package model

import "time"

// Config defines timer session settings.
type Config struct {
	RefreshInterval time.Duration
	ExportPath      string
}

// StorageConfig selects and locates the persistence backend.
type StorageConfig struct {
	Backend string
	Path    string
}

// ShiftRecord captures a completed shift. Records are never mutated after creation.
type ShiftRecord struct {
	ID              string
	EndedAt         time.Time
	DurationSeconds int64
	Amount          float64
	Wage            float64
}

// Summary aggregates a shift history for reporting.
type Summary struct {
	Shifts       int
	TotalSeconds int64
	TotalAmount  float64
	AverageWage  float64
}
