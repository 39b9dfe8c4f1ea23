// =============================================================================
// scaffold - Batch Sheet Reader
// =============================================================================
//
// Reads the spreadsheet that drives a batch run. The first row names context
// keys; every following non-empty row is the extra context of one project.
//
// SUPPORTED FORMATS:
//   .xlsx  first sheet, or the sheet named with --sheet-name
//   .csv   comma separated, "#" lines are comments
//
// EXAMPLE (projects.csv):
//   project_name,license,github_setup
//   Data Tools,MIT,private
//   Report Builder,Apache-2.0,None
//
// =============================================================================

package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/scaffold/internal/errors"
	"github.com/ginjaninja78/scaffold/internal/types"
)

// Row is one project to generate.
type Row struct {
	// Number is the 1-based row number in the sheet.
	Number int

	// Values maps header names to cell values, in column order. Empty cells
	// are left out so template defaults apply.
	Values *types.Context
}

// Sheet is a parsed batch sheet.
type Sheet struct {
	// Source is the file the sheet was read from.
	Source string

	// Name is the worksheet name (the file name for CSV).
	Name string

	Headers []string
	Rows    []Row
}

// ReadSheet reads a batch sheet, choosing the format by extension.
//
// PARAMETERS:
//   - path: the .xlsx or .csv file.
//   - sheetName: worksheet to read from an .xlsx file ("" for the first).
func ReadSheet(path, sheetName string) (*Sheet, error) {
	var (
		name string
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		name, rows, err = readXLSX(path, sheetName)
	case ".csv":
		name, rows, err = readCSV(path)
	default:
		return nil, errors.New(errors.EUsage,
			fmt.Sprintf("unsupported sheet %s: use an .xlsx or .csv file", path))
	}
	if err != nil {
		return nil, errors.Wrap(errors.EUsage, fmt.Sprintf("failed to read sheet %s", path), err)
	}
	return buildSheet(path, name, rows)
}

// readXLSX returns the rows of one worksheet.
func readXLSX(path, sheetName string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return "", nil, fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return "", nil, fmt.Errorf("workbook has no sheet %q (sheets: %s)",
			sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return sheetName, rows, nil
}

// readCSV returns every record of a CSV file.
func readCSV(path string) (string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return filepath.Base(path), rows, nil
}

// buildSheet turns raw rows into keyed rows.
func buildSheet(path, name string, rows [][]string) (*Sheet, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, errors.New(errors.EUsage, fmt.Sprintf("sheet %s is empty", path))
	}

	headers, err := cleanHeaders(rows[headerIdx])
	if err != nil {
		return nil, errors.Wrap(errors.EUsage, fmt.Sprintf("sheet %s has an invalid header row", path), err)
	}

	sheet := &Sheet{Source: path, Name: name, Headers: headers}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		if len(row) > len(headers) {
			return nil, errors.New(errors.EUsage,
				fmt.Sprintf("row %d of %s has %d cells but the header has %d", i+1, path, len(row), len(headers)))
		}

		values := types.NewContext()
		for col, header := range headers {
			if header == "" || col >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[col]); v != "" {
				values.Set(header, v)
			}
		}
		sheet.Rows = append(sheet.Rows, Row{Number: i + 1, Values: values})
	}
	return sheet, nil
}

// cleanHeaders trims header cells. Empty headers are kept as "" and their
// columns ignored; duplicates are rejected.
func cleanHeaders(headers []string) ([]string, error) {
	cleaned := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header != "" {
			if seen[header] {
				return nil, fmt.Errorf("duplicate column %q", header)
			}
			seen[header] = true
		}
		cleaned[i] = header
	}
	return cleaned, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
