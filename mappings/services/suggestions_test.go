package services

import (
	"reflect"
	"testing"

	"dpgf-quoting-backend/db/models"
)

func TestCreateNormalizedColumnsMap(t *testing.T) {
	columns := []string{"HEX Code", "Hex Code ", "Désignation", "designation", "Qté"}

	columnsMap := CreateNormalizedColumnsMap(columns)

	if got := columnsMap["hex code"]; !reflect.DeepEqual(got, []string{"HEX Code", "Hex Code "}) {
		t.Errorf("hex code variants = %v", got)
	}
	if got := columnsMap["designation"]; !reflect.DeepEqual(got, []string{"Désignation", "designation"}) {
		t.Errorf("designation variants = %v", got)
	}
	if got := columnsMap["qte"]; !reflect.DeepEqual(got, []string{"Qté"}) {
		t.Errorf("qte variants = %v", got)
	}
}

func TestExpandSuggestionsFanOut(t *testing.T) {
	columnsMap := map[string][]string{
		"hex code": {"HEX Code", "Hex Code "},
	}
	memoryRows := []models.MappingMemory{
		{
			SourceColumnNormalized: "hex code",
			SourceColumnOriginal:   "Hex Code",
			TargetField:            "hex_code",
			Confidence:             0.9,
			UseCount:               4,
		},
	}

	suggestions := ExpandSuggestionsForColumns(columnsMap, memoryRows)
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions (one per variant), got %d", len(suggestions))
	}

	for i, want := range []string{"HEX Code", "Hex Code "} {
		s := suggestions[i]
		if s.SourceColumn != want {
			t.Errorf("suggestion %d source column = %q, want %q", i, s.SourceColumn, want)
		}
		if s.TargetField != "hex_code" {
			t.Errorf("suggestion %d target field = %q", i, s.TargetField)
		}
		if s.Source != SuggestionSourceMemory {
			t.Errorf("suggestion %d source = %q, want memory", i, s.Source)
		}
		if s.Confidence != 0.9 {
			t.Errorf("suggestion %d confidence = %v", i, s.Confidence)
		}
		if s.UseCount == nil || *s.UseCount != 4 {
			t.Errorf("suggestion %d use count = %v", i, s.UseCount)
		}
	}
}

func TestExpandSuggestionsNormalizesOriginalWhenKeyMissing(t *testing.T) {
	columnsMap := map[string][]string{
		"matiere": {"Matière"},
	}
	memoryRows := []models.MappingMemory{
		{SourceColumnOriginal: "MATIÈRE", TargetField: "matiere"},
	}

	suggestions := ExpandSuggestionsForColumns(columnsMap, memoryRows)
	if len(suggestions) != 1 || suggestions[0].SourceColumn != "Matière" {
		t.Fatalf("expected match via normalized original column, got %+v", suggestions)
	}
	if suggestions[0].Confidence != defaultConfidence {
		t.Errorf("confidence = %v, want default %v", suggestions[0].Confidence, defaultConfidence)
	}
	if suggestions[0].UseCount != nil {
		t.Errorf("use count should be absent, got %v", *suggestions[0].UseCount)
	}
}

func TestExpandSuggestionsLiteralFallback(t *testing.T) {
	// Key absent from the current import: the memory row's original
	// column is offered verbatim.
	columnsMap := map[string][]string{}
	memoryRows := []models.MappingMemory{
		{SourceColumnNormalized: "prix brut", SourceColumnOriginal: "Prix Brut", TargetField: "prix_brut"},
	}

	suggestions := ExpandSuggestionsForColumns(columnsMap, memoryRows)
	if len(suggestions) != 1 || suggestions[0].SourceColumn != "Prix Brut" {
		t.Fatalf("expected literal fallback suggestion, got %+v", suggestions)
	}
}

func TestExpandSuggestionsUnresolvableRowDropped(t *testing.T) {
	memoryRows := []models.MappingMemory{
		{SourceColumnNormalized: "ghost column", TargetField: "hex_code"},
	}

	suggestions := ExpandSuggestionsForColumns(map[string][]string{}, memoryRows)
	if len(suggestions) != 0 {
		t.Errorf("unresolvable memory rows must contribute nothing, got %+v", suggestions)
	}
}
