package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/beanvault/coffee-journal/internal/repository"
)

// Service is a tiny façade over the entry repository that produces XLSX
// bytes for journal exports.
type Service struct {
	entries repository.EntryRepository
	logger  *slog.Logger
}

func NewService(entries repository.EntryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entries: entries, logger: logger}
}

// ExportEntriesXLSX returns an XLSX workbook (as bytes) for the filtered
// journal entries.
func (s *Service) ExportEntriesXLSX(ctx context.Context, filter repository.EntryFilter) ([]byte, error) {
	start := time.Now()

	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Journal"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Added",
		"Roaster",
		"Origin",
		"Farm",
		"Variety",
		"Process",
		"Roast Level",
		"Roast Date",
		"Flavor Notes",
		"Rating",
		"Notes",
		"Website",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, e.CreatedAt.Format("2006-01-02"))
		write(2, e.Fields.RoasterName)
		write(3, e.Fields.Origin)
		write(4, e.Fields.Farm)
		write(5, e.Fields.Variety)
		write(6, e.Fields.ProcessMethod)
		write(7, e.Fields.RoastLevel)
		write(8, e.Fields.RoastDate)
		write(9, e.Fields.FlavorNotes)
		if e.Rating > 0 {
			write(10, e.Rating)
		}
		write(11, truncate(e.Notes, 140))
		write(12, e.Fields.RoasterWebsite)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // roaster
	_ = f.SetColWidth(sheet, "C", "C", 20) // origin
	_ = f.SetColWidth(sheet, "I", "I", 40) // flavor notes
	_ = f.SetColWidth(sheet, "K", "K", 48) // notes
	_ = f.SetColWidth(sheet, "L", "L", 32) // website

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps s at n runes, never bytes, so multi-byte characters in user
// notes are not split mid-sequence.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
