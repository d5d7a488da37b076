package services

import "dpgf-quoting-backend/db/models"

type SuggestionSource string

const (
	SuggestionSourceMemory   SuggestionSource = "memory"
	SuggestionSourceTemplate SuggestionSource = "template"
	SuggestionSourceAI       SuggestionSource = "ai"
)

const defaultConfidence = 0.5

// Suggestion is a derived, per-request mapping proposal. Never stored;
// regenerated from mapping memory on every request.
type Suggestion struct {
	SourceColumn string           `json:"source_column"`
	TargetField  string           `json:"target_field"`
	Confidence   float64          `json:"confidence"`
	Source       SuggestionSource `json:"source"`
	UseCount     *int             `json:"use_count,omitempty"`
}

// CreateNormalizedColumnsMap fans differently-cased or accented headers
// into their shared normalized key. All originals are retained in
// appearance order, so one learned mapping can apply to every textual
// variant present in the current file.
func CreateNormalizedColumnsMap(sourceColumns []string) map[string][]string {
	columnsMap := make(map[string][]string, len(sourceColumns))
	for _, column := range sourceColumns {
		normalized := NormalizeSourceColumn(column)
		columnsMap[normalized] = append(columnsMap[normalized], column)
	}
	return columnsMap
}

// ExpandSuggestionsForColumns turns stored mapping-memory rows into one
// suggestion per (memory row x matching original column). A row's own
// normalized key wins; otherwise its original column is normalized on
// the fly. Rows whose key matches nothing in the current import fall
// back to their original column verbatim, and rows with no resolvable
// candidate at all contribute nothing.
func ExpandSuggestionsForColumns(columnsMap map[string][]string, memoryRows []models.MappingMemory) []Suggestion {
	suggestions := []Suggestion{}

	for _, row := range memoryRows {
		normalizedKey := row.SourceColumnNormalized
		if normalizedKey == "" && row.SourceColumnOriginal != "" {
			normalizedKey = NormalizeSourceColumn(row.SourceColumnOriginal)
		}

		var candidates []string
		if normalizedKey != "" {
			candidates = columnsMap[normalizedKey]
		}
		if len(candidates) == 0 && row.SourceColumnOriginal != "" {
			candidates = []string{row.SourceColumnOriginal}
		}

		for _, sourceColumn := range candidates {
			// Confidence is a non-nullable column, so zero means unset
			// here. Revisit if it ever becomes a pointer and a stored
			// 0 must survive.
			confidence := row.Confidence
			if confidence == 0 {
				confidence = defaultConfidence
			}

			suggestion := Suggestion{
				SourceColumn: sourceColumn,
				TargetField:  row.TargetField,
				Confidence:   confidence,
				Source:       SuggestionSourceMemory,
			}
			if row.UseCount > 0 {
				useCount := row.UseCount
				suggestion.UseCount = &useCount
			}
			suggestions = append(suggestions, suggestion)
		}
	}

	return suggestions
}
