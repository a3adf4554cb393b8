package data

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one worksheet of a workbook into a Table. The first row is
// the header. An empty sheet name selects the first worksheet.
func LoadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("data: %s has no worksheets", path)
		}
		sheet = sheets[0]
	}

	// raw values keep number formats (thousand separators, percent) out of the parse
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("data: read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}
	return FromRecords(rows[0], rows[1:])
}

// Load picks a reader from the file extension (.xlsx, .xlsm or .csv).
func Load(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	case ".csv":
		return LoadCSV(path)
	case "":
		return nil, errors.New("data: input path has no extension")
	default:
		return nil, fmt.Errorf("data: unsupported input format %q", filepath.Ext(path))
	}
}
