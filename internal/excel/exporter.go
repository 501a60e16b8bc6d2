package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/example/hifzbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoStats is returned when there is nothing to export
var ErrNoStats = errors.New("no statistics to export")

// SheetName is the worksheet holding the exported rows
const SheetName = "Sheet1"

// Header is the first row of every export
var Header = []string{
	"Дата",
	"Выучено страниц",
	"Базовых джузов",
	"Прогресс за день",
	"Всего джузов",
	"Джузов в день",
	"Повторено страниц",
}

// FileName returns the name of an export made at t, ext without the dot
func FileName(t time.Time, ext string) string {
	return fmt.Sprintf("quran_stats_%s.%s", t.Format(models.DateLayout), ext)
}

// WriteCSV writes stats as CSV with Header as the first line
func WriteCSV(w io.Writer, stats []models.DailyStat) error {
	if len(stats) == 0 {
		return ErrNoStats
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range stats {
		rec := []string{displayDate(s.Date)}
		for _, v := range numbers(s) {
			rec = append(rec, fmt.Sprint(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %s: %w", s.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders stats as an Excel workbook
func WriteXLSX(stats []models.DailyStat) (*bytes.Buffer, error) {
	if len(stats) == 0 {
		return nil, ErrNoStats
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, s := range stats {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{displayDate(s.Date)}
		for _, v := range numbers(s) {
			row = append(row, v)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", s.Date, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func numbers(s models.DailyStat) []int {
	return []int{
		s.PagesMemorized,
		s.BaseSectionCount,
		s.DailyProgressPages,
		s.TotalSectionCount,
		s.SectionsPerDay,
		s.PagesRepeated,
	}
}

// displayDate turns 2025-03-10 into 10.03.2025
func displayDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02.01.2006")
}
