// Package tui provides the Bubble Tea shift timer interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/history"
	"github.com/verte-zerg/shiftmeter/internal/model"
	"github.com/verte-zerg/shiftmeter/internal/session"
	"github.com/verte-zerg/shiftmeter/internal/stats"
	"github.com/verte-zerg/shiftmeter/internal/timer"
)

const defaultRefreshInterval = 250 * time.Millisecond

type mode int

const (
	modeNormal mode = iota
	modeWage
	modeConfirmClear
)

// Model implements the Bubble Tea shift timer UI.
type Model struct {
	config  model.Config
	session *session.Session

	width  int
	height int

	mode      mode
	wageInput textinput.Model
	history   table.Model

	records []model.ShiftRecord
	summary model.Summary

	refresh    *refreshTask
	refreshSeq uint64

	notice    string
	noticeErr bool
}

// NewModel constructs a shift timer TUI model.
func NewModel(cfg model.Config, sess *session.Session) *Model {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = history.DefaultExportName
	}
	m := &Model{
		config:  cfg,
		session: sess,
	}
	m.initWageInput()
	m.initHistoryTable()
	m.loadHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.syncRefresh()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutHistory()
		return m, nil
	case refreshMsg:
		if !m.refresh.owns(msg) {
			return m, nil
		}
		return m, m.refresh.next()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		switch m.mode {
		case modeWage:
			return m.updateWage(msg)
		case modeConfirmClear:
			return m.updateConfirmClear(msg)
		default:
			return m.updateNormal(msg)
		}
	default:
		return m, nil
	}
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, m.quit()
	case "s":
		m.startShift()
	case "p":
		m.session.Pause()
	case "r":
		m.session.Resume()
	case "e":
		m.endShift()
	case "x":
		if m.session.Reset() {
			m.setNotice("Shift discarded.")
		}
	case "w":
		return m, m.startWageInput()
	case "o":
		m.exportHistory()
	case "C":
		m.mode = modeConfirmClear
	default:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	return m, m.syncRefresh()
}

func (m *Model) updateWage(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopWageInput()
		return m, nil
	case tea.KeyEnter:
		if err := m.session.SaveWage(context.Background(), m.wageInput.Value()); err != nil {
			m.setError(wageErrorText(err))
			return m, nil
		}
		m.stopWageInput()
		m.setNotice(fmt.Sprintf("Wage saved: $%s/hr", format.Fixed2(m.session.Wage())))
		return m, nil
	}
	var cmd tea.Cmd
	m.wageInput, cmd = m.wageInput.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	if msg.String() != "y" && msg.String() != "Y" {
		m.setNotice("Clear cancelled.")
		return m, nil
	}
	if err := m.session.History().Clear(context.Background()); err != nil {
		m.setError(fmt.Sprintf("failed to clear history: %v", err))
		return m, nil
	}
	m.loadHistory()
	m.setNotice("History cleared.")
	return m, nil
}

func (m *Model) startShift() {
	if err := m.session.Start(); err != nil {
		if errors.Is(err, timer.ErrWageNotSet) {
			m.setError("Set your hourly wage first.")
			return
		}
		m.setError(err.Error())
	}
}

func (m *Model) endShift() {
	record, ok, err := m.session.End(context.Background())
	if !ok {
		return
	}
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.loadHistory()
	m.setNotice(fmt.Sprintf("Shift saved: %s · %s", format.HMS(float64(record.DurationSeconds)), format.Currency(record.Amount)))
}

func (m *Model) exportHistory() {
	err := m.session.History().WriteExport(context.Background(), m.config.ExportPath)
	switch {
	case errors.Is(err, history.ErrEmptyHistory):
		m.setError("No shifts to export.")
	case err != nil:
		m.setError(fmt.Sprintf("failed to export: %v", err))
	default:
		m.setNotice("Exported to " + m.config.ExportPath)
	}
}

func (m *Model) quit() tea.Cmd {
	if m.refresh != nil {
		m.refresh.Cancel()
		m.refresh = nil
	}
	return tea.Quit
}

// syncRefresh starts the refresh task on entering Running and cancels it on leaving.
func (m *Model) syncRefresh() tea.Cmd {
	running := m.session.Timer().State() == timer.StateRunning
	switch {
	case running && m.refresh == nil:
		m.refreshSeq++
		m.refresh = newRefreshTask(m.refreshSeq, m.config.RefreshInterval)
		return m.refresh.next()
	case !running && m.refresh != nil:
		m.refresh.Cancel()
		m.refresh = nil
	}
	return nil
}

func (m *Model) loadHistory() {
	records, err := m.session.History().List(context.Background())
	if err != nil {
		m.setError(fmt.Sprintf("failed to load history: %v", err))
		return
	}
	m.records = records
	m.summary = stats.Summarize(records)
	m.history.SetRows(historyRows(records))
	m.history.GotoTop()
}

func (m *Model) initWageInput() {
	input := textinput.New()
	input.Prompt = "Hourly wage $ "
	input.Placeholder = "0.00"
	input.CharLimit = 16
	m.wageInput = input
}

func (m *Model) startWageInput() tea.Cmd {
	m.mode = modeWage
	value := ""
	if m.session.Wage() > 0 {
		value = format.Fixed2(m.session.Wage())
	}
	m.wageInput.SetValue(value)
	m.wageInput.CursorEnd()
	return m.wageInput.Focus()
}

func (m *Model) stopWageInput() {
	m.mode = modeNormal
	m.wageInput.Blur()
}

func (m *Model) initHistoryTable() {
	columns := []table.Column{
		{Title: "Duration", Width: 10},
		{Title: "Earned", Width: 12},
		{Title: "Wage", Width: 12},
		{Title: "Completed", Width: 24},
		{Title: "", Width: 16},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(historyMinHeight),
	)
	t.SetStyles(historyTableStyles())
	m.history = t
}

func (m *Model) layoutHistory() {
	height := m.height - chromeHeight
	if height < historyMinHeight {
		height = historyMinHeight
	}
	m.history.SetHeight(height)
}

func historyRows(records []model.ShiftRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			format.HMS(float64(r.DurationSeconds)),
			format.Currency(r.Amount),
			fmt.Sprintf("@ $%s/hr", format.Fixed2(r.Wage)),
			format.LocalTimestamp(r.EndedAt),
			format.Ago(r.EndedAt),
		})
	}
	return rows
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeErr = false
}

func (m *Model) setError(text string) {
	m.notice = text
	m.noticeErr = true
}

func wageErrorText(err error) string {
	if errors.Is(err, session.ErrInvalidWage) {
		return "Please enter a valid hourly wage."
	}
	return err.Error()
}
