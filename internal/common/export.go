package common

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"fjacquet/ledger-ingest/internal/models"
)

// ExportSheet is the worksheet name used by WriteExportXLSX.
const ExportSheet = "Transactions"

// WriteExportCSV writes stored transactions in export layout to w.
func WriteExportCSV(rows []models.ExportRow, w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if len(rows) == 0 {
		if err := csvWriter.Write(models.ExportHeaders); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteExportXLSX writes stored transactions to a new workbook at path.
func WriteExportXLSX(rows []models.ExportRow, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	header := make([]any, len(models.ExportHeaders))
	for i, h := range models.ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := row.Cells()
		if err := f.SetSheetRow(ExportSheet, cell, &cells); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving workbook: %w", err)
	}
	return nil
}
