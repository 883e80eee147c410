// Package history owns the ordered log of completed shifts.
package history

import (
	"context"
	"errors"

	"github.com/verte-zerg/shiftmeter/internal/model"
)

// ErrEmptyHistory is returned when exporting a history with no shifts.
var ErrEmptyHistory = errors.New("no shifts to export")

// Backend persists the wage setting and the shift history as two independent entries.
// AppendShift and ClearShifts must leave either the old or the new sequence visible.
type Backend interface {
	LoadWage(ctx context.Context) (string, bool, error)
	SaveWage(ctx context.Context, value string) error
	ListShifts(ctx context.Context) ([]model.ShiftRecord, error)
	AppendShift(ctx context.Context, record model.ShiftRecord) error
	ClearShifts(ctx context.Context) error
	Close() error
}

// Store is the most-recent-first shift history.
type Store struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Append inserts record at the front of the history.
func (s *Store) Append(ctx context.Context, record model.ShiftRecord) error {
	return s.backend.AppendShift(ctx, record)
}

// Clear removes every shift. Callers confirm with the user beforehand.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.ClearShifts(ctx)
}

// List returns the full history, most recent first.
func (s *Store) List(ctx context.Context) ([]model.ShiftRecord, error) {
	records, err := s.backend.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.ShiftRecord{}
	}
	return records, nil
}
