package stats

import (
	"fmt"

	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/model"
)

var historyHeaders = []string{"Completed", "Duration", "Earned", "Wage"}

// Summarize totals a shift history.
func Summarize(records []model.ShiftRecord) model.Summary {
	var sum model.Summary
	for _, r := range records {
		sum.Shifts++
		sum.TotalSeconds += r.DurationSeconds
		sum.TotalAmount += r.Amount
	}
	if sum.TotalSeconds > 0 {
		sum.AverageWage = sum.TotalAmount / (float64(sum.TotalSeconds) / 3600)
	}
	return sum
}

// HistoryRow renders one record as display cells.
func HistoryRow(r model.ShiftRecord) []string {
	return []string{
		format.LocalTimestamp(r.EndedAt),
		format.HMS(float64(r.DurationSeconds)),
		format.Currency(r.Amount),
		fmt.Sprintf("$%s/hr", format.Fixed2(r.Wage)),
	}
}

// HistoryTable renders the history as aligned text lines, most recent first.
func HistoryTable(records []model.ShiftRecord) []string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, HistoryRow(r))
	}
	return FormatTable(historyHeaders, rows, map[int]bool{1: true, 2: true, 3: true})
}

// SummaryLine renders totals on a single line.
func SummaryLine(sum model.Summary) string {
	noun := "shifts"
	if sum.Shifts == 1 {
		noun = "shift"
	}
	return fmt.Sprintf("%d %s · %s worked · %s earned · avg %s/hr",
		sum.Shifts, noun,
		format.HMS(float64(sum.TotalSeconds)),
		format.Currency(sum.TotalAmount),
		format.Currency(sum.AverageWage),
	)
}
