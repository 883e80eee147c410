package stats

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/shiftmeter/internal/history"
	"github.com/verte-zerg/shiftmeter/internal/model"
	"github.com/verte-zerg/shiftmeter/internal/store"
)

func TestSummarizeFromStore(t *testing.T) {
	dir := t.TempDir()
	st, err := store.OpenSQLite(filepath.Join(dir, "shiftmeter.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	h := history.New(st)
	wages := []float64{20, 30, 10}
	for i, wage := range wages {
		rec := model.ShiftRecord{
			ID:              string(rune('a' + i)),
			EndedAt:         time.Unix(0, 0).Add(time.Duration(i) * time.Hour),
			DurationSeconds: 1800,
			Amount:          1800.0 / 3600 * wage,
			Wage:            wage,
		}
		if err := h.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, err := h.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sum := Summarize(records)
	if sum.Shifts != 3 {
		t.Fatalf("expected 3 shifts, got %d", sum.Shifts)
	}
	if sum.TotalSeconds != 5400 {
		t.Fatalf("expected 5400 seconds, got %d", sum.TotalSeconds)
	}
	if sum.TotalAmount != 30 {
		t.Fatalf("expected 30 earned, got %v", sum.TotalAmount)
	}
	if sum.AverageWage != 20 {
		t.Fatalf("expected average wage 20, got %v", sum.AverageWage)
	}

	line := SummaryLine(sum)
	for _, want := range []string{"3 shifts", "01:30:00 worked", "$30.00 earned", "avg $20.00/hr"} {
		if !strings.Contains(line, want) {
			t.Fatalf("summary missing %q: %s", want, line)
		}
	}

	lines := HistoryTable(records)
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(lines))
	}
	if !strings.HasSuffix(lines[1], "$10.00/hr") {
		t.Fatalf("expected newest shift first: %q", lines[1])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Shifts != 0 || sum.AverageWage != 0 {
		t.Fatalf("expected zero summary, got %+v", sum)
	}
	if !strings.HasPrefix(SummaryLine(sum), "0 shifts") {
		t.Fatalf("unexpected summary line: %s", SummaryLine(sum))
	}
}
