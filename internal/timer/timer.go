// Package timer implements the shift timer state machine.
package timer

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/shiftmeter/internal/clock"
	"github.com/verte-zerg/shiftmeter/internal/model"
)

// ErrWageNotSet is returned by Start when no positive wage is configured.
var ErrWageNotSet = errors.New("hourly wage is not set")

// State is the current timer mode.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Timer tracks one shift across pause/resume cycles.
//
// Operations attempted from a state that does not permit them are no-ops.
// Timer is not safe for concurrent use; callers drive it from one event loop.
type Timer struct {
	clock        clock.Clock
	wage         float64
	state        State
	accumulated  time.Duration
	segmentStart time.Time
}

// New returns an idle Timer using the given clock and hourly wage.
func New(c clock.Clock, wage float64) *Timer {
	if c == nil {
		c = clock.System
	}
	return &Timer{clock: c, wage: wage}
}

// State reports the current mode.
func (t *Timer) State() State {
	return t.state
}

// Wage reports the hourly wage used for conversions.
func (t *Timer) Wage() float64 {
	return t.wage
}

// SetWage changes the wage for the live display and the next End.
func (t *Timer) SetWage(wage float64) {
	t.wage = wage
}

// Accumulated reports time banked from completed segments.
func (t *Timer) Accumulated() time.Duration {
	return t.accumulated
}

// Start begins a shift. It fails with ErrWageNotSet unless the wage is positive.
func (t *Timer) Start() error {
	if t.state != StateIdle {
		return nil
	}
	if !(t.wage > 0) {
		return ErrWageNotSet
	}
	t.state = StateRunning
	t.segmentStart = t.clock.Now()
	return nil
}

// Pause banks the open segment.
func (t *Timer) Pause() {
	if t.state != StateRunning {
		return
	}
	t.accumulated += t.clock.Now().Sub(t.segmentStart)
	t.segmentStart = time.Time{}
	t.state = StatePaused
}

// Resume opens a new segment.
func (t *Timer) Resume() {
	if t.state != StatePaused {
		return
	}
	t.segmentStart = t.clock.Now()
	t.state = StateRunning
}

// End finalizes the shift and returns its record. It reports false from Idle.
func (t *Timer) End() (model.ShiftRecord, bool) {
	record, ok := t.Record()
	if ok {
		t.clear()
	}
	return record, ok
}

// Record builds the record End would return without changing state, so a
// caller can persist it before calling Clear. It reports false from Idle.
func (t *Timer) Record() (model.ShiftRecord, bool) {
	if t.state == StateIdle {
		return model.ShiftRecord{}, false
	}
	now := t.clock.Now()
	seconds := int64(math.Round(t.elapsedAt(now).Seconds()))
	return model.ShiftRecord{
		ID:              uuid.New().String(),
		EndedAt:         now,
		DurationSeconds: seconds,
		Amount:          Amount(seconds, t.wage),
		Wage:            t.wage,
	}, true
}

// Clear returns the timer to Idle with nothing banked.
func (t *Timer) Clear() {
	t.clear()
}

// Reset discards banked time without creating a record. It is refused while
// running and reports whether it took effect.
func (t *Timer) Reset() bool {
	if !t.CanReset() {
		return false
	}
	t.clear()
	return true
}

// Elapsed reports the total elapsed time of the current shift.
func (t *Timer) Elapsed() time.Duration {
	return t.elapsedAt(t.clock.Now())
}

// ElapsedSeconds reports Elapsed in fractional seconds.
func (t *Timer) ElapsedSeconds() float64 {
	return t.Elapsed().Seconds()
}

// Earned converts the current elapsed time to money at the current wage.
func (t *Timer) Earned() float64 {
	return t.ElapsedSeconds() / 3600 * t.wage
}

// CanStart reports whether Start would begin a shift.
func (t *Timer) CanStart() bool {
	return t.state == StateIdle && t.wage > 0
}

// CanPause reports whether Pause would take effect.
func (t *Timer) CanPause() bool {
	return t.state == StateRunning
}

// CanResume reports whether Resume would take effect.
func (t *Timer) CanResume() bool {
	return t.state == StatePaused
}

// CanEnd reports whether End would produce a record.
func (t *Timer) CanEnd() bool {
	return t.state != StateIdle
}

// CanReset reports whether Reset would take effect: always while paused,
// and while idle only if time is still banked.
func (t *Timer) CanReset() bool {
	switch t.state {
	case StatePaused:
		return true
	case StateIdle:
		return t.accumulated > 0
	default:
		return false
	}
}

// Amount converts whole seconds to money at wage per hour.
func Amount(seconds int64, wage float64) float64 {
	return float64(seconds) / 3600 * wage
}

func (t *Timer) elapsedAt(now time.Time) time.Duration {
	elapsed := t.accumulated
	if t.state == StateRunning {
		elapsed += now.Sub(t.segmentStart)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (t *Timer) clear() {
	t.state = StateIdle
	t.accumulated = 0
	t.segmentStart = time.Time{}
}
