package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/shiftmeter/internal/clock"
	"github.com/verte-zerg/shiftmeter/internal/format"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestPauseResumeScenario(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 20)

	if err := tm.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(1800 * time.Second)
	tm.Pause()
	if tm.Accumulated() != 1800*time.Second {
		t.Fatalf("expected 1800s accumulated, got %v", tm.Accumulated())
	}
	clk.Advance(200 * time.Second)
	if tm.Elapsed() != 1800*time.Second {
		t.Fatalf("expected frozen elapsed while paused, got %v", tm.Elapsed())
	}
	tm.Resume()
	clk.Advance(1800 * time.Second)

	rec, ok := tm.End()
	if !ok {
		t.Fatalf("expected a record")
	}
	if rec.DurationSeconds != 3600 {
		t.Fatalf("expected 3600 seconds, got %d", rec.DurationSeconds)
	}
	if format.Round2(rec.Amount) != 20.00 {
		t.Fatalf("expected amount 20.00, got %v", rec.Amount)
	}
	if rec.Wage != 20 {
		t.Fatalf("expected wage 20, got %v", rec.Wage)
	}
	if !rec.EndedAt.Equal(t0.Add(3800 * time.Second)) {
		t.Fatalf("unexpected end timestamp: %v", rec.EndedAt)
	}
	if rec.ID == "" {
		t.Fatalf("expected record id")
	}
	if tm.State() != StateIdle || tm.Accumulated() != 0 {
		t.Fatalf("expected idle with nothing banked, got %s/%v", tm.State(), tm.Accumulated())
	}
}

func TestAccumulationIndependentOfCycles(t *testing.T) {
	segments := []time.Duration{
		7 * time.Second,
		1500 * time.Millisecond,
		42 * time.Minute,
		250 * time.Millisecond,
		3 * time.Hour,
	}
	var want time.Duration
	for _, s := range segments {
		want += s
	}

	clk := clock.NewFake(t0)
	tm := New(clk, 15)
	if err := tm.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, seg := range segments {
		clk.Advance(seg)
		if i == len(segments)-1 {
			break
		}
		tm.Pause()
		clk.Advance(time.Duration(i+1) * time.Hour)
		tm.Resume()
	}
	if tm.Elapsed() != want {
		t.Fatalf("expected %v elapsed, got %v", want, tm.Elapsed())
	}

	singleClk := clock.NewFake(t0)
	single := New(singleClk, 15)
	_ = single.Start()
	singleClk.Advance(want)

	a, _ := tm.End()
	b, _ := single.End()
	if a.DurationSeconds != b.DurationSeconds {
		t.Fatalf("expected %d seconds for both, got %d and %d", b.DurationSeconds, a.DurationSeconds, b.DurationSeconds)
	}
}

func TestEndRoundsToNearestSecond(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    int64
	}{
		{1499 * time.Millisecond, 1},
		{1500 * time.Millisecond, 2},
		{59*time.Minute + 59*time.Second + 600*time.Millisecond, 3600},
		{0, 0},
	}
	for _, tc := range cases {
		clk := clock.NewFake(t0)
		tm := New(clk, 30)
		_ = tm.Start()
		clk.Advance(tc.elapsed)
		rec, ok := tm.End()
		if !ok {
			t.Fatalf("expected record for %v", tc.elapsed)
		}
		if rec.DurationSeconds != tc.want {
			t.Fatalf("expected %d seconds for %v, got %d", tc.want, tc.elapsed, rec.DurationSeconds)
		}
		if rec.Amount != float64(tc.want)/3600*30 {
			t.Fatalf("unexpected amount %v for %d seconds", rec.Amount, tc.want)
		}
	}
}

func TestEndFromPausedUsesBankedTime(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 12)
	_ = tm.Start()
	clk.Advance(90 * time.Second)
	tm.Pause()
	clk.Advance(time.Hour)
	rec, ok := tm.End()
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.DurationSeconds != 90 {
		t.Fatalf("expected 90 seconds, got %d", rec.DurationSeconds)
	}
}

func TestStartRequiresPositiveWage(t *testing.T) {
	for _, wage := range []float64{0, -0.05} {
		tm := New(clock.NewFake(t0), wage)
		err := tm.Start()
		if !errors.Is(err, ErrWageNotSet) {
			t.Fatalf("expected ErrWageNotSet for wage %v, got %v", wage, err)
		}
		if tm.State() != StateIdle {
			t.Fatalf("expected idle, got %s", tm.State())
		}
		if tm.CanStart() {
			t.Fatalf("expected start to be unavailable for wage %v", wage)
		}
	}
}

func TestResetWhilePausedDiscards(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 10)
	_ = tm.Start()
	clk.Advance(time.Minute)
	tm.Pause()
	if !tm.Reset() {
		t.Fatalf("expected reset to apply while paused")
	}
	if tm.Accumulated() != 0 || tm.State() != StateIdle {
		t.Fatalf("expected cleared idle timer, got %s/%v", tm.State(), tm.Accumulated())
	}
	if _, ok := tm.End(); ok {
		t.Fatalf("expected no record after reset")
	}
}

func TestResetRefusedWhileRunning(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 10)
	_ = tm.Start()
	clk.Advance(time.Minute)
	if tm.Reset() {
		t.Fatalf("expected reset to be refused while running")
	}
	if tm.State() != StateRunning || tm.Elapsed() != time.Minute {
		t.Fatalf("expected running timer untouched, got %s/%v", tm.State(), tm.Elapsed())
	}
}

func TestOutOfOrderCallsAreNoOps(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 10)

	tm.Resume()
	tm.Pause()
	if tm.Reset() {
		t.Fatalf("expected idle reset with nothing banked to be a no-op")
	}
	if _, ok := tm.End(); ok {
		t.Fatalf("expected no record from idle")
	}
	if tm.State() != StateIdle || tm.Accumulated() != 0 {
		t.Fatalf("expected untouched idle timer")
	}

	_ = tm.Start()
	clk.Advance(10 * time.Second)
	if err := tm.Start(); err != nil {
		t.Fatalf("expected repeated start to be a no-op, got %v", err)
	}
	tm.Resume()
	if tm.Elapsed() != 10*time.Second {
		t.Fatalf("expected segment to keep running, got %v", tm.Elapsed())
	}
	tm.Pause()
	tm.Pause()
	if tm.Accumulated() != 10*time.Second {
		t.Fatalf("expected single bank, got %v", tm.Accumulated())
	}
}

func TestWageChangeAppliesToLiveDisplayAndNextEnd(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 10)
	_ = tm.Start()
	clk.Advance(30 * time.Minute)
	if got := format.Round2(tm.Earned()); got != 5 {
		t.Fatalf("expected 5.00 earned, got %v", got)
	}
	tm.SetWage(40)
	if got := format.Round2(tm.Earned()); got != 20 {
		t.Fatalf("expected 20.00 earned after wage change, got %v", got)
	}
	rec, _ := tm.End()
	if rec.Wage != 40 || format.Round2(rec.Amount) != 20 {
		t.Fatalf("expected record at new wage, got %+v", rec)
	}
}

func TestLiveDisplayMonotonicWhileRunning(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 25)
	_ = tm.Start()
	prev := tm.Earned()
	for i := 0; i < 10; i++ {
		clk.Advance(16 * time.Millisecond)
		cur := tm.Earned()
		if cur < prev {
			t.Fatalf("expected non-decreasing earned, got %v after %v", cur, prev)
		}
		prev = cur
	}
}

func TestAvailability(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 10)
	check := func(label string, start, pause, resume, end, reset bool) {
		t.Helper()
		got := []bool{tm.CanStart(), tm.CanPause(), tm.CanResume(), tm.CanEnd(), tm.CanReset()}
		want := []bool{start, pause, resume, end, reset}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: expected availability %v, got %v", label, want, got)
			}
		}
	}
	check("idle", true, false, false, false, false)
	_ = tm.Start()
	check("running", false, true, false, true, false)
	clk.Advance(time.Second)
	tm.Pause()
	check("paused", false, false, true, true, true)
}

func TestRecordLeavesShiftInProgress(t *testing.T) {
	clk := clock.NewFake(t0)
	tm := New(clk, 12)
	if _, ok := tm.Record(); ok {
		t.Fatalf("expected no record while idle")
	}
	_ = tm.Start()
	clk.Advance(90 * time.Minute)
	rec, ok := tm.Record()
	if !ok || rec.DurationSeconds != 5400 {
		t.Fatalf("expected 5400s record, got %+v ok=%v", rec, ok)
	}
	if tm.State() != StateRunning || tm.Elapsed() != 90*time.Minute {
		t.Fatalf("expected running with 90m, got %s %v", tm.State(), tm.Elapsed())
	}
	tm.Clear()
	if tm.State() != StateIdle || tm.Accumulated() != 0 || tm.CanReset() {
		t.Fatalf("expected cleared idle timer")
	}
}
