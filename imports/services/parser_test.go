package services

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestParseDpgfWorkbook(t *testing.T) {
	path := writeTestWorkbook(t, [][]interface{}{
		{"Référence", "Désignation", "Prix"},
		{"A-1", "Vis inox", "12.50"},
		{"", "", ""},
		{"A-2", "Boulon", "3.10"},
	})

	sheet, err := ParseDpgfWorkbook(path)
	if err != nil {
		t.Fatalf("ParseDpgfWorkbook: %v", err)
	}

	wantColumns := []string{"Référence", "Désignation", "Prix"}
	if len(sheet.Columns) != len(wantColumns) {
		t.Fatalf("columns = %v, want %v", sheet.Columns, wantColumns)
	}
	for i, col := range wantColumns {
		if sheet.Columns[i] != col {
			t.Errorf("column[%d] = %q, want %q", i, sheet.Columns[i], col)
		}
	}

	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (empty row skipped)", len(sheet.Rows))
	}
	if got := sheet.Rows[0]["Référence"]; got != "A-1" {
		t.Errorf("row 0 Référence = %v, want A-1", got)
	}
	if got := sheet.Rows[1]["Prix"]; got != "3.10" {
		t.Errorf("row 1 Prix = %v, want 3.10", got)
	}
}

func TestParseDpgfWorkbookSkipsLeadingEmptyRows(t *testing.T) {
	path := writeTestWorkbook(t, [][]interface{}{
		{"", ""},
		{"Ref", "Prix"},
		{"X", "1"},
	})

	sheet, err := ParseDpgfWorkbook(path)
	if err != nil {
		t.Fatalf("ParseDpgfWorkbook: %v", err)
	}
	if len(sheet.Columns) != 2 || sheet.Columns[0] != "Ref" {
		t.Fatalf("columns = %v, want [Ref Prix]", sheet.Columns)
	}
	if len(sheet.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(sheet.Rows))
	}
}

func TestBuildColumnNames(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{
			name:   "plain headers trimmed",
			header: []string{" Ref ", "Prix"},
			want:   []string{"Ref", "Prix"},
		},
		{
			name:   "blank cells get positional names",
			header: []string{"Ref", "", "Prix"},
			want:   []string{"Ref", "column_2", "Prix"},
		},
		{
			name:   "duplicates get numeric suffixes",
			header: []string{"Prix", "Prix", "Prix"},
			want:   []string{"Prix", "Prix_2", "Prix_3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildColumnNames(tt.header)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("name[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildRawRows(t *testing.T) {
	tenantID := uuid.New()
	importID := uuid.New()
	sheet := &ParsedSheet{
		Columns: []string{"Ref", "Prix"},
		Rows: []map[string]interface{}{
			{"Ref": "A", "Prix": "1"},
			{"Ref": "B", "Prix": "2"},
		},
	}

	rows, err := BuildRawRows(tenantID, importID, sheet)
	if err != nil {
		t.Fatalf("BuildRawRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, row := range rows {
		if row.RowIndex != i {
			t.Errorf("row %d index = %d", i, row.RowIndex)
		}
		if row.TenantID != tenantID || row.ImportID != importID {
			t.Errorf("row %d has wrong scope ids", i)
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal(row.RawData, &decoded); err != nil {
			t.Fatalf("row %d payload not valid JSON: %v", i, err)
		}
		if decoded["Ref"] != sheet.Rows[i]["Ref"] {
			t.Errorf("row %d Ref = %v, want %v", i, decoded["Ref"], sheet.Rows[i]["Ref"])
		}
	}
}
