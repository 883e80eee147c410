package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/model"
)

type memBackend struct {
	wage   *string
	shifts []model.ShiftRecord
}

func (m *memBackend) LoadWage(context.Context) (string, bool, error) {
	if m.wage == nil {
		return "", false, nil
	}
	return *m.wage, true, nil
}

func (m *memBackend) SaveWage(_ context.Context, value string) error {
	m.wage = &value
	return nil
}

func (m *memBackend) ListShifts(context.Context) ([]model.ShiftRecord, error) {
	return append([]model.ShiftRecord(nil), m.shifts...), nil
}

func (m *memBackend) AppendShift(_ context.Context, r model.ShiftRecord) error {
	m.shifts = append([]model.ShiftRecord{r}, m.shifts...)
	return nil
}

func (m *memBackend) ClearShifts(context.Context) error {
	m.shifts = nil
	return nil
}

func (m *memBackend) Close() error { return nil }

func record(i int, seconds int64, wage float64) model.ShiftRecord {
	return model.ShiftRecord{
		ID:              fmt.Sprintf("id-%d", i),
		EndedAt:         time.Date(2024, 5, 1, 17, 0, i, 0, time.UTC),
		DurationSeconds: seconds,
		Amount:          float64(seconds) / 3600 * wage,
		Wage:            wage,
	}
}

func TestAppendIsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	st := New(&memBackend{})
	for i := 0; i < 3; i++ {
		if err := st.Append(ctx, record(i, 60, 10)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	if list[0].ID != "id-2" || list[2].ID != "id-0" {
		t.Fatalf("unexpected order: %s, %s, %s", list[0].ID, list[1].ID, list[2].ID)
	}
}

func TestClearEmptiesHistory(t *testing.T) {
	ctx := context.Background()
	st := New(&memBackend{})
	for i := 0; i < 5; i++ {
		_ = st.Append(ctx, record(i, 60, 10))
	}
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}
}

func TestExportRejectsEmptyHistory(t *testing.T) {
	st := New(&memBackend{})
	out, err := st.ExportDelimited(context.Background())
	if !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestExportFormat(t *testing.T) {
	ctx := context.Background()
	st := New(&memBackend{})
	_ = st.Append(ctx, model.ShiftRecord{
		EndedAt:         time.Date(2024, 5, 1, 17, 30, 0, 123000000, time.UTC),
		DurationSeconds: 3725,
		Amount:          3725.0 / 3600 * 18.5,
		Wage:            18.5,
	})
	out, err := st.ExportDelimited(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := `"datetime","seconds","formatted_time","amount_usd","wage_usd_hr"` + "\n" +
		`"2024-05-01T17:30:00.123Z","3725","01:02:05","19.14","18.50"`
	if out != want {
		t.Fatalf("unexpected export:\n%s\nwant:\n%s", out, want)
	}
}

func TestExportRoundTrips(t *testing.T) {
	ctx := context.Background()
	st := New(&memBackend{})
	durations := []int64{0, 59, 3600, 86399, 100 * 3600}
	for i, d := range durations {
		_ = st.Append(ctx, record(i, d, 22.75))
	}
	out, err := st.ExportDelimited(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	list, _ := st.List(ctx)
	if len(rows) != len(list)+1 {
		t.Fatalf("expected %d rows, got %d", len(list)+1, len(rows))
	}
	for i, rec := range list {
		row := rows[i+1]
		if row[1] != fmt.Sprint(rec.DurationSeconds) {
			t.Fatalf("row %d: expected seconds %d, got %s", i, rec.DurationSeconds, row[1])
		}
		if row[2] != format.HMS(float64(rec.DurationSeconds)) {
			t.Fatalf("row %d: expected %s, got %s", i, format.HMS(float64(rec.DurationSeconds)), row[2])
		}
	}
	if rows[1][2] != "100:00:00" {
		t.Fatalf("expected widened hours, got %s", rows[1][2])
	}
}

func TestQuoteRowDoublesQuotes(t *testing.T) {
	got := quoteRow([]string{`a"b`, "c"})
	if got != `"a""b","c"` {
		t.Fatalf("unexpected quoting: %s", got)
	}
}

func TestWriteExport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "out", DefaultExportName)

	st := New(&memBackend{})
	if err := st.WriteExport(ctx, path); !errors.Is(err, ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file for empty history")
	}

	_ = st.Append(ctx, record(1, 120, 30))
	if err := st.WriteExport(ctx, path); err != nil {
		t.Fatalf("write export: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(raw), `"datetime"`) {
		t.Fatalf("unexpected file content: %s", raw)
	}
}
