// Package session ties one timer, the wage setting and the shift history together.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/shiftmeter/internal/clock"
	"github.com/verte-zerg/shiftmeter/internal/history"
	"github.com/verte-zerg/shiftmeter/internal/model"
	"github.com/verte-zerg/shiftmeter/internal/timer"
)

// ErrInvalidWage is returned when a wage input is rejected.
var ErrInvalidWage = errors.New("please enter a valid hourly wage")

// wageTolerance is the most negative wage input still rejected.
const wageTolerance = -0.1

// MaxWage bounds the hourly wage so shift amounts stay finite.
const MaxWage = 1e9

// Session is the caller-owned context for one timer.
type Session struct {
	backend history.Backend
	history *history.Store
	timer   *timer.Timer
}

// New loads the persisted wage and builds an idle timer over the backend.
func New(ctx context.Context, c clock.Clock, backend history.Backend) (*Session, error) {
	wage := 0.0
	raw, ok, err := backend.LoadWage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load wage: %w", err)
	}
	if ok {
		// A corrupt stored value falls back to zero, like a first run.
		if v, err := ParseWage(raw); err == nil {
			wage = v
		}
	}
	return &Session{
		backend: backend,
		history: history.New(backend),
		timer:   timer.New(c, wage),
	}, nil
}

// ParseWage validates a wage input. Non-numeric and non-finite values are
// rejected, as are values at or below -0.1 or above MaxWage.
func ParseWage(input string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= wageTolerance || v > MaxWage {
		return 0, ErrInvalidWage
	}
	return v, nil
}

// Timer returns the session's timer.
func (s *Session) Timer() *timer.Timer {
	return s.timer
}

// History returns the shift history store.
func (s *Session) History() *history.Store {
	return s.history
}

// Wage reports the current hourly wage.
func (s *Session) Wage() float64 {
	return s.timer.Wage()
}

// SaveWage validates, persists and applies a new wage. A rejected input leaves
// the prior wage in place.
func (s *Session) SaveWage(ctx context.Context, input string) error {
	wage, err := ParseWage(input)
	if err != nil {
		return err
	}
	if err := s.backend.SaveWage(ctx, strconv.FormatFloat(wage, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to save wage: %w", err)
	}
	s.timer.SetWage(wage)
	return nil
}

// Start begins a shift; it returns timer.ErrWageNotSet without a positive wage.
func (s *Session) Start() error {
	return s.timer.Start()
}

// Pause banks the running segment.
func (s *Session) Pause() {
	s.timer.Pause()
}

// Resume continues a paused shift.
func (s *Session) Resume() {
	s.timer.Resume()
}

// Reset discards the current shift without recording it.
func (s *Session) Reset() bool {
	return s.timer.Reset()
}

// End finalizes the current shift and appends it to the history. It reports
// false when no shift was in progress. The timer is cleared only after the
// record is saved; on a save error the shift stays in progress.
func (s *Session) End(ctx context.Context) (model.ShiftRecord, bool, error) {
	record, ok := s.timer.Record()
	if !ok {
		return model.ShiftRecord{}, false, nil
	}
	if err := s.history.Append(ctx, record); err != nil {
		return record, true, fmt.Errorf("failed to save shift: %w", err)
	}
	s.timer.Clear()
	return record, true, nil
}
