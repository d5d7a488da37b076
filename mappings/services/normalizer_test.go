package services

import "testing"

func TestNormalizeSourceColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"accented header", "Matière", "matiere"},
		{"already normalized", "matiere", "matiere"},
		{"mixed case with spaces", "  HEX Code ", "hex code"},
		{"cedilla and uppercase", "Désignation Façade", "designation facade"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSourceColumn(tt.input)
			if got != tt.expect {
				t.Errorf("NormalizeSourceColumn(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestNormalizeSourceColumnIdempotent(t *testing.T) {
	inputs := []string{"Matière", "  Prix Brut HT ", "Validité FIN", "référence", ""}
	for _, input := range inputs {
		once := NormalizeSourceColumn(input)
		twice := NormalizeSourceColumn(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeSupplierName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"empty defaults", "", "General"},
		{"whitespace only defaults", "   ", "General"},
		{"trims edges", "  Acier Plus  ", "Acier Plus"},
		{"collapses runs", "Acier   Plus \t SARL", "Acier Plus SARL"},
		{"single word untouched", "General", "General"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSupplierName(tt.input)
			if got != tt.expect {
				t.Errorf("NormalizeSupplierName(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
