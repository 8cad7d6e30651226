package excelextractor

import (
	"fmt"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// workbook is the first worksheet of a spreadsheet as plain strings plus the
// number of sheets the file declares.
type workbook struct {
	sheetCount int
	rows       [][]string
}

type workbookReader func(path, password string) (workbook, error)

// readXLSX reads the first sheet of an Office Open XML workbook.
func readXLSX(path, password string) (workbook, error) {
	f, err := excelize.OpenFile(path, excelize.Options{Password: password})
	if err != nil {
		return workbook{}, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return workbook{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return workbook{}, fmt.Errorf("failed to get rows of sheet %q: %w", sheets[0], err)
	}
	return workbook{sheetCount: len(sheets), rows: rows}, nil
}

// readXLS reads the first sheet of a legacy BIFF workbook.
func readXLS(path, _ string) (workbook, error) {
	book, err := xls.OpenFile(path)
	if err != nil {
		return workbook{}, err
	}
	count := book.GetNumberSheets()
	if count == 0 {
		return workbook{}, nil
	}
	sheet, err := book.GetSheet(0)
	if err != nil {
		return workbook{}, fmt.Errorf("failed to get first sheet: %w", err)
	}
	if sheet == nil {
		return workbook{sheetCount: count}, nil
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		cols := row.GetCols()
		values := make([]string, 0, len(cols))
		for _, col := range cols {
			values = append(values, col.GetString())
		}
		rows = append(rows, values)
	}
	return workbook{sheetCount: count, rows: rows}, nil
}
