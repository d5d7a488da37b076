package services

import (
	"strings"
	"testing"
)

func TestParseSuggestionResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "plain JSON array",
			raw:  `[{"source_column":"Réf","target_field":"hex_code","confidence":0.9}]`,
			want: 1,
		},
		{
			name: "fenced code block",
			raw: "```json\n[{\"source_column\":\"Prix\",\"target_field\":\"prix_brut\",\"confidence\":0.8}," +
				"{\"source_column\":\"Unité\",\"target_field\":\"unite\",\"confidence\":0.7}]\n```",
			want: 2,
		},
		{
			name: "prose around the array",
			raw:  "Here are the mappings:\n[{\"source_column\":\"Qté\",\"target_field\":\"quantite\",\"confidence\":0.6}]\nLet me know.",
			want: 1,
		},
		{
			name:    "no array at all",
			raw:     "I cannot map these columns.",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			raw:     `[{"source_column":}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseSuggestionResponse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", rows)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSuggestionResponse: %v", err)
			}
			if len(rows) != tt.want {
				t.Fatalf("rows = %d, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestBuildSuggestionPrompt(t *testing.T) {
	columns := []string{"Réf Fournisseur", "PU HT"}
	samples := map[string][]string{
		"Réf Fournisseur": {"AB-123", "CD-456"},
		"PU HT":           {"12.50"},
	}

	prompt := buildSuggestionPrompt(columns, samples)

	for _, col := range columns {
		if !strings.Contains(prompt, col) {
			t.Errorf("prompt missing column %q", col)
		}
	}
	if !strings.Contains(prompt, "AB-123") {
		t.Errorf("prompt missing sample value")
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Errorf("prompt missing output format instruction")
	}
}
