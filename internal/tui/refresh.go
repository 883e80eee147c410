package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// refreshMsg is delivered on each display refresh tick of task id.
type refreshMsg struct {
	id uint64
}

// refreshTask re-renders the live display at a fixed cadence until cancelled.
// Ticks from a cancelled task are dropped and never reschedule.
type refreshTask struct {
	id        uint64
	interval  time.Duration
	cancelled bool
}

func newRefreshTask(id uint64, interval time.Duration) *refreshTask {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &refreshTask{id: id, interval: interval}
}

// next schedules the following tick.
func (r *refreshTask) next() tea.Cmd {
	if r.cancelled {
		return nil
	}
	id := r.id
	return tea.Tick(r.interval, func(time.Time) tea.Msg {
		return refreshMsg{id: id}
	})
}

// owns reports whether msg belongs to this live task.
func (r *refreshTask) owns(msg refreshMsg) bool {
	return r != nil && !r.cancelled && msg.id == r.id
}

// Cancel stops the task.
func (r *refreshTask) Cancel() {
	r.cancelled = true
}
