package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dpgf-quoting-backend/config"
	internal_services "dpgf-quoting-backend/internal/services"

	"go.uber.org/zap"
)

// Catalogue fields an AI suggestion may target. Anything else in the
// model's answer is discarded.
var aiTargetFields = map[string]bool{
	"hex_code":         true,
	"designation":      true,
	"unite":            true,
	"matiere":          true,
	"temps_unitaire_h": true,
	"prix_brut":        true,
	"remise_pct":       true,
	"prix_net":         true,
	"supplier_ref":     true,
	"validite_fin":     true,
	"quantite":         true,
}

// AISuggester proposes mappings for columns that mapping memory could
// not resolve, using the Gemini service.
type AISuggester struct {
	gemini *internal_services.GeminiService
}

func NewAISuggester(gemini *internal_services.GeminiService) *AISuggester {
	return &AISuggester{gemini: gemini}
}

type aiSuggestionRow struct {
	SourceColumn string  `json:"source_column"`
	TargetField  string  `json:"target_field"`
	Confidence   float64 `json:"confidence"`
}

// SuggestForColumns asks the model to map the remaining columns, given
// a few sample values per column. Returns at most one suggestion per
// column; columns the model cannot place are omitted.
func (s *AISuggester) SuggestForColumns(ctx context.Context, columns []string, samples map[string][]string) ([]Suggestion, error) {
	if s == nil || s.gemini == nil || len(columns) == 0 {
		return nil, nil
	}

	prompt := buildSuggestionPrompt(columns, samples)
	raw, err := s.gemini.GenerateContentWithRetry(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("ai suggestion request failed: %w", err)
	}

	rows, err := parseSuggestionResponse(raw)
	if err != nil {
		config.Logger.Warn("Unparseable AI suggestion response",
			zap.Int("columns", len(columns)),
			zap.Error(err),
		)
		return nil, err
	}

	wanted := make(map[string]bool, len(columns))
	for _, col := range columns {
		wanted[col] = true
	}

	seen := make(map[string]bool)
	suggestions := []Suggestion{}
	for _, row := range rows {
		if !wanted[row.SourceColumn] || seen[row.SourceColumn] {
			continue
		}
		if !aiTargetFields[row.TargetField] {
			continue
		}
		confidence := row.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = defaultConfidence
		}
		seen[row.SourceColumn] = true
		suggestions = append(suggestions, Suggestion{
			SourceColumn: row.SourceColumn,
			TargetField:  row.TargetField,
			Confidence:   confidence,
			Source:       SuggestionSourceAI,
		})
	}

	return suggestions, nil
}

func buildSuggestionPrompt(columns []string, samples map[string][]string) string {
	var b strings.Builder
	b.WriteString("You map spreadsheet columns from French supplier price lists (DPGF) to catalogue fields.\n")
	b.WriteString("Allowed target fields: ")
	first := true
	for field := range aiTargetFields {
		if !first {
			b.WriteString(", ")
		}
		b.WriteString(field)
		first = false
	}
	b.WriteString(".\n\nColumns with sample values:\n")
	for _, col := range columns {
		b.WriteString(fmt.Sprintf("- %q", col))
		if vals := samples[col]; len(vals) > 0 {
			b.WriteString(": ")
			for i, v := range vals {
				if i > 0 {
					b.WriteString("; ")
				}
				if len(v) > 40 {
					v = v[:40]
				}
				b.WriteString(v)
				if i == 4 {
					break
				}
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer with only a JSON array of objects with keys source_column, target_field and confidence (0 to 1). Skip columns you cannot place.\n")
	return b.String()
}

func parseSuggestionResponse(raw string) ([]aiSuggestionRow, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in model response")
	}

	var rows []aiSuggestionRow
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	return rows, nil
}
