package controllers

import (
	"encoding/json"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/mappings/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetSuggestions derives mapping proposals for an import's columns:
// mapping memory first, then the latest supplier template for columns
// memory left unmapped, then the AI suggester for the rest. Nothing is
// stored; results are rebuilt on every call.
func (mc *MappingController) GetSuggestions(c *fiber.Ctx) error {
	imp, _, errResp := mc.loadImportScoped(c)
	if imp == nil {
		return errResp
	}

	rows, err := mc.sampleRows(imp.TenantID, imp.ID)
	if err != nil {
		config.Logger.Error("Failed to load sample rows for suggestions",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load import rows",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	columns := columnsOf(rows)
	if len(columns) == 0 {
		return c.JSON(fiber.Map{
			"message": "No columns available yet",
			"data": fiber.Map{
				"columns":     columns,
				"suggestions": []services.Suggestion{},
			},
			"error": nil,
		})
	}

	supplier := supplierOf(imp)
	columnsMap := services.CreateNormalizedColumnsMap(columns)

	normalizedKeys := make([]string, 0, len(columnsMap))
	for key := range columnsMap {
		normalizedKeys = append(normalizedKeys, key)
	}

	memoryRows, err := mc.MappingRepo.GetMemoryRows(imp.TenantID, supplier, normalizedKeys)
	if err != nil {
		config.Logger.Error("Failed to fetch mapping memory",
			zap.String("import_id", imp.ID.String()),
			zap.String("supplier", supplier),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch mapping memory",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	suggestions := services.ExpandSuggestionsForColumns(columnsMap, memoryRows)

	mapped := map[string]bool{}
	for _, s := range suggestions {
		mapped[s.SourceColumn] = true
	}

	// Template fallback for columns memory could not place.
	templates, err := mc.MappingRepo.GetTemplates(imp.TenantID, supplier)
	if err != nil {
		config.Logger.Warn("Failed to fetch mapping templates",
			zap.String("supplier", supplier),
			zap.Error(err),
		)
	} else if len(templates) > 0 {
		suggestions = append(suggestions, templateSuggestions(templates[0].Mappings, columnsMap, mapped)...)
		for _, s := range suggestions {
			mapped[s.SourceColumn] = true
		}
	}

	// AI fallback for whatever is still unmapped.
	var unmapped []string
	for _, column := range columns {
		if !mapped[column] {
			unmapped = append(unmapped, column)
		}
	}
	if len(unmapped) > 0 && mc.AISuggester != nil {
		aiSuggestions, err := mc.AISuggester.SuggestForColumns(c.Context(), unmapped, sampleValues(rows, unmapped))
		if err != nil {
			config.Logger.Warn("AI suggestion fallback failed",
				zap.String("import_id", imp.ID.String()),
				zap.Int("unmapped_columns", len(unmapped)),
				zap.Error(err),
			)
		} else {
			suggestions = append(suggestions, aiSuggestions...)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Suggestions generated successfully",
		"data": fiber.Map{
			"columns":     columns,
			"supplier":    supplier,
			"suggestions": suggestions,
		},
		"error": nil,
	})
}

// templateSuggestions expands a stored template document into
// suggestions for the current file's columns.
func templateSuggestions(doc []byte, columnsMap map[string][]string, mapped map[string]bool) []services.Suggestion {
	var entries []struct {
		SourceColumn string `json:"source_column"`
		TargetField  string `json:"target_field"`
	}
	if err := json.Unmarshal(doc, &entries); err != nil {
		config.Logger.Warn("Undecodable mapping template document", zap.Error(err))
		return nil
	}

	var suggestions []services.Suggestion
	for _, entry := range entries {
		if entry.SourceColumn == "" || entry.TargetField == "" {
			continue
		}
		candidates := columnsMap[services.NormalizeSourceColumn(entry.SourceColumn)]
		for _, column := range candidates {
			if mapped[column] {
				continue
			}
			suggestions = append(suggestions, services.Suggestion{
				SourceColumn: column,
				TargetField:  entry.TargetField,
				Confidence:   0.6,
				Source:       services.SuggestionSourceTemplate,
			})
		}
	}
	return suggestions
}

// sampleValues collects up to five non-empty sample values per column
// for the AI prompt.
func sampleValues(rows []services.RawRow, columns []string) map[string][]string {
	wanted := make(map[string]bool, len(columns))
	for _, column := range columns {
		wanted[column] = true
	}

	samples := map[string][]string{}
	for _, row := range rows {
		for name, value := range row.RawData {
			if !wanted[name] || len(samples[name]) >= 5 {
				continue
			}
			if s, ok := value.(string); ok && s != "" {
				samples[name] = append(samples[name], s)
			}
		}
	}
	return samples
}
