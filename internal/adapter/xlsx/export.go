// Package xlsx writes the consolidated record set as a spreadsheet.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/MHBws/dengue-climate-etl/internal/domain"
)

const sheetName = "Consolidado"

var header = []any{
	"Year", "Month", "Region", "Cases", "Deaths", "AvgTemperature", "TotalPrecipitation",
}

// Export writes the records to an XLSX file at path, one sheet, header row
// first, rows in the order given.
func Export(path string, records []*domain.ConsolidatedRecord) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file, nothing to flush

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		row := []any{
			rec.Year,
			string(rec.Month),
			rec.Region,
			rec.Cases,
			rec.Deaths,
			rec.AvgTemperature,
			rec.TotalPrecipitation,
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
