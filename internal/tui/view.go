package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/stats"
	"github.com/verte-zerg/shiftmeter/internal/timer"
)

const (
	// Rows used by everything except the history table.
	chromeHeight     = 16
	historyMinHeight = 3
)

var (
	elapsedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	earnedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8FBF7F"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardStyle     = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

type action struct {
	key     string
	label   string
	enabled bool
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		m.renderTimer(),
		m.renderActions(),
		m.renderWage(),
		m.renderHistory(),
		m.renderNotice(),
		m.renderFooter(),
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.mode == modeConfirmClear {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderConfirm())
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderTimer() string {
	tm := m.session.Timer()
	elapsed := format.HMS(tm.ElapsedSeconds())
	earned := format.Currency(tm.Earned())
	body := fmt.Sprintf("%s\n%s   %s",
		labelStyle.Render(stateLabel(tm.State())),
		elapsedStyle.Render(elapsed),
		earnedStyle.Render(earned),
	)
	return cardStyle.Render(body)
}

func stateLabel(s timer.State) string {
	switch s {
	case timer.StateRunning:
		return "On the clock"
	case timer.StatePaused:
		return "Paused"
	default:
		return "Off the clock"
	}
}

func (m *Model) actions() []action {
	tm := m.session.Timer()
	return []action{
		{key: "s", label: "Start", enabled: tm.CanStart()},
		{key: "p", label: "Pause", enabled: tm.CanPause()},
		{key: "r", label: "Resume", enabled: tm.CanResume()},
		{key: "e", label: "End", enabled: tm.CanEnd()},
		{key: "x", label: "Reset", enabled: tm.CanReset()},
	}
}

func (m *Model) renderActions() string {
	parts := make([]string, 0, 5)
	for _, a := range m.actions() {
		text := fmt.Sprintf("[%s] %s", a.key, a.label)
		if a.enabled {
			parts = append(parts, enabledStyle.Render(text))
		} else {
			parts = append(parts, disabledStyle.Render(text))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderWage() string {
	if m.mode == modeWage {
		return m.wageInput.View()
	}
	wage := m.session.Wage()
	if wage <= 0 {
		return labelStyle.Render("Hourly wage not set. Press w to set it.")
	}
	return labelStyle.Render(fmt.Sprintf("Hourly wage $%s/hr", format.Fixed2(wage)))
}

func (m *Model) renderHistory() string {
	if len(m.records) == 0 {
		return labelStyle.Render("No shifts recorded yet.")
	}
	summary := labelStyle.Render(stats.SummaryLine(m.summary))
	return lipgloss.JoinVertical(lipgloss.Left, m.history.View(), summary)
}

func (m *Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	if m.noticeErr {
		return errorStyle.Render(m.notice)
	}
	return noticeStyle.Render(m.notice)
}

func (m *Model) renderFooter() string {
	return footerStyle.Render("w wage · o export · C clear history · ↑/↓ scroll · q quit")
}

func (m *Model) renderConfirm() string {
	return modalStyle.Render("Clear all saved shifts?\n\n" + labelStyle.Render("y to confirm · any other key to cancel"))
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(false)
	return styles
}
