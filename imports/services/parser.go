package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ParsedSheet is the outcome of reading one DPGF workbook: the header
// row as column names, and every data row keyed by those names.
type ParsedSheet struct {
	Columns []string
	Rows    []map[string]interface{}
}

// ParseDpgfWorkbook reads the first sheet of an XLSX file. The first
// non-empty row is the header; unnamed header cells get a positional
// name so downstream mapping can still address them.
func ParseDpgfWorkbook(path string) (*ParsedSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !rowIsEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, fmt.Errorf("workbook sheet %q is empty", sheetName)
	}

	columns := buildColumnNames(rows[headerIdx])

	sheet := &ParsedSheet{Columns: columns}
	for _, row := range rows[headerIdx+1:] {
		if rowIsEmpty(row) {
			continue
		}
		record := make(map[string]interface{}, len(columns))
		for j, name := range columns {
			if j < len(row) {
				record[name] = strings.TrimSpace(row[j])
			} else {
				record[name] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, record)
	}

	return sheet, nil
}

// BuildRawRows converts a parsed sheet into persistable raw rows.
// RowIndex is the position within the data rows, starting at zero.
func BuildRawRows(tenantID, importID uuid.UUID, sheet *ParsedSheet) ([]models.RawImportRow, error) {
	rows := make([]models.RawImportRow, 0, len(sheet.Rows))
	for i, record := range sheet.Rows {
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
		rows = append(rows, models.RawImportRow{
			TenantID: tenantID,
			ImportID: importID,
			RowIndex: i,
			RawData:  payload,
		})
	}
	return rows, nil
}

func buildColumnNames(header []string) []string {
	seen := make(map[string]int)
	columns := make([]string, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		seen[name]++
		columns[i] = name
	}
	return columns
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
