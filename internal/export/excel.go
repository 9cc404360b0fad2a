// Package export writes analysis results as xlsx workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"stockanalyzer/internal/calculator"
	"stockanalyzer/internal/model"
)

// maxSheetName is the xlsx sheet name length limit.
const maxSheetName = 31

// NamedTable pairs a normalized dataset with its data type name.
type NamedTable struct {
	Name  string
	Table *model.Table
}

// WriteDataset writes a single table to its own workbook.
func WriteDataset(path string, t *model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeTable(f, f.GetSheetName(0), t); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// WriteSummary writes the combined workbook: the statistics summary, the full
// historical series, and one sheet per auxiliary dataset.
func WriteSummary(path string, metrics []calculator.Metric, hist *model.Table, aux []NamedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return err
	}
	if err := f.SetSheetRow(summary, "A1", &[]interface{}{"Metric", "Value"}); err != nil {
		return err
	}
	for i, m := range metrics {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summary, cell, &[]interface{}{m.Name, m.Value}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Historical Data"); err != nil {
		return err
	}
	if err := writeTable(f, "Historical Data", hist); err != nil {
		return err
	}

	for _, nt := range aux {
		sheet := sheetName(nt.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeTable(f, sheet, nt.Table); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// writeTable lays out a table with its index in the first column. Time values
// are written as plain calendar dates; xlsx does not round-trip timezone-aware
// timestamps reliably.
func writeTable(f *excelize.File, sheet string, t *model.Table) error {
	header := make([]interface{}, 0, len(t.Columns)+1)
	header = append(header, t.IndexName)
	for _, c := range t.Columns {
		header = append(header, c.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r := 0; r < t.Rows(); r++ {
		row := make([]interface{}, 0, len(t.Columns)+1)
		row = append(row, cellValue(t.Index[r]))
		for _, c := range t.Columns {
			row = append(row, cellValue(c.Values[r]))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v model.Value) interface{} {
	switch v.Kind {
	case model.KindNum:
		return v.Num
	case model.KindText:
		return v.Str
	case model.KindTime:
		return v.Time.Format("2006-01-02")
	default:
		return nil
	}
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
