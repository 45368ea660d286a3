// Package export writes classified tables to an XLSX workbook, one sheet per
// category plus a key-information sheet.
package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

const infoSheet = "Key Information"

// TablesXLSX renders result as an XLSX workbook and returns its bytes.
func TablesXLSX(result *models.ExtractionResult, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with Sheet1; rename it instead of leaving it empty.
	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	w := &sheetWriter{f: f, logger: logger}
	if err := w.keyInformation(result.KeyInformation); err != nil {
		return nil, err
	}

	tables := 0
	for _, c := range models.Categories() {
		list := result.TablesByType[c]
		if len(list) == 0 {
			continue
		}
		sheet := string(c)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := w.tables(sheet, list); err != nil {
			return nil, err
		}
		tables += len(list)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}

	logger.Debug("export.xlsx.ok",
		"tables", tables,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// sheetWriter keeps the first excelize error and warns about cells excelize
// truncates to its per-cell limit.
type sheetWriter struct {
	f      *excelize.File
	logger *slog.Logger
	err    error
}

func (w *sheetWriter) check(err error, what string) {
	if err != nil && w.err == nil {
		w.err = fmt.Errorf("failed to %s: %w", what, err)
	}
}

func (w *sheetWriter) warnLong(sheet, cell, v string) {
	if n := len(utf16.Encode([]rune(v))); n > excelize.TotalCellChars {
		w.logger.Warn("export.xlsx.truncated", "sheet", sheet, "cell", cell, "chars", n, "limit", excelize.TotalCellChars)
	}
}

func (w *sheetWriter) cell(sheet string, col, row int, v any) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.check(err, "address cell")
		return
	}
	if s, ok := v.(string); ok {
		w.warnLong(sheet, name, s)
	}
	w.check(w.f.SetCellValue(sheet, name, v), "write cell "+sheet+"!"+name)
}

func (w *sheetWriter) row(sheet string, row int, values []string) string {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.check(err, "address row")
		return ""
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		w.warnLong(sheet, cell, v)
	}
	w.check(w.f.SetSheetRow(sheet, start, &values), "write row "+sheet+"!"+start)
	return start
}

func (w *sheetWriter) keyInformation(ki models.KeyInformation) error {
	row := 1
	write := func(label string, v any) {
		w.cell(infoSheet, 1, row, label)
		w.cell(infoSheet, 2, row, v)
		row++
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	write("Resort Name", deref(ki.ResortName))
	write("Validity Period", deref(ki.ValidityPeriod))
	write("Currency", deref(ki.Currency))
	if ki.RoomCount != nil {
		write("Room Count", *ki.RoomCount)
	} else {
		write("Room Count", "")
	}
	write("Christmas Supplement", ki.HasChristmasSupplement)
	write("Transfer Included", ki.HasTransferIncluded)
	for _, mp := range ki.MealPlansAvailable {
		write("Meal Plan", mp)
	}
	for _, o := range ki.SpecialOffers {
		write("Special Offer", o)
	}

	w.check(w.f.SetColWidth(infoSheet, "A", "A", 22), "set column width")
	w.check(w.f.SetColWidth(infoSheet, "B", "B", 60), "set column width")
	return w.err
}

// tables stacks the tables of one category with a blank row between them.
// Each block starts with a "Table <id> (page <n>)" caption.
func (w *sheetWriter) tables(sheet string, tables []models.ClassifiedTable) error {
	bold, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	row := 1
	for _, t := range tables {
		w.cell(sheet, 1, row, fmt.Sprintf("Table %d (page %d)", t.ID, t.Position.Page))
		caption, _ := excelize.CoordinatesToCellName(1, row)
		w.check(w.f.SetCellStyle(sheet, caption, caption, bold), "style caption")
		row++

		if len(t.Headers) > 0 {
			start := w.row(sheet, row, t.Headers)
			end, _ := excelize.CoordinatesToCellName(len(t.Headers), row)
			if start != "" {
				w.check(w.f.SetCellStyle(sheet, start, end, bold), "style headers")
			}
			row++
		}
		for _, r := range t.Rows {
			w.row(sheet, row, r)
			row++
		}
		row++
	}
	return w.err
}
