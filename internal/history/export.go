package history

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/shiftmeter/internal/format"
	"github.com/verte-zerg/shiftmeter/internal/model"
)

// DefaultExportName is the file name used for exports.
const DefaultExportName = "shifts.csv"

var exportHeader = []string{"datetime", "seconds", "formatted_time", "amount_usd", "wage_usd_hr"}

// ExportDelimited renders the history as a CSV table with every field quoted.
func (s *Store) ExportDelimited(ctx context.Context) (string, error) {
	records, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return Delimited(records)
}

// WriteExport writes the CSV export to path through a temp file.
func (s *Store) WriteExport(ctx context.Context, path string) error {
	out, err := s.ExportDelimited(ctx)
	if err != nil {
		return err
	}
	if path == "" {
		path = DefaultExportName
	}
	return writeFileAtomic(path, out)
}

// Delimited renders records, most recent first, in export format.
func Delimited(records []model.ShiftRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyHistory
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, quoteRow(exportHeader))
	for _, r := range records {
		lines = append(lines, quoteRow(exportRow(r)))
	}
	return strings.Join(lines, "\n"), nil
}

func exportRow(r model.ShiftRecord) []string {
	return []string{
		format.ISO(r.EndedAt),
		strconv.FormatInt(r.DurationSeconds, 10),
		format.HMS(float64(r.DurationSeconds)),
		format.Fixed2(r.Amount),
		format.Fixed2(r.Wage),
	}
}

// encoding/csv only quotes fields that need it; the export quotes all of them.
func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func writeFileAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "shifts-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(content); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
