package controllers

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	imports_repositories "dpgf-quoting-backend/imports/repositories"
	"dpgf-quoting-backend/mappings/repositories"
	"dpgf-quoting-backend/mappings/services"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sampleRowLimit caps how many raw rows feed column discovery,
// suggestions and validation previews.
const sampleRowLimit = 200

type MappingController struct {
	MappingRepo repositories.MappingRepository
	ImportRepo  imports_repositories.ImportRepository
	DB          *gorm.DB
	Ctx         context.Context
	AISuggester *services.AISuggester
}

// loadImportScoped fetches the import for the caller's tenant or
// writes the error response.
func (mc *MappingController) loadImportScoped(c *fiber.Ctx) (*models.DpgfImport, *token.Payload, error) {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	importID, err := uuid.Parse(c.Params("import_id"))
	if err != nil {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid import ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	imp, err := mc.ImportRepo.GetImportByID(payload.TenantID, importID)
	if err != nil {
		return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Import not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return imp, payload, nil
}

// sampleRows materializes up to sampleRowLimit stored raw rows.
func (mc *MappingController) sampleRows(tenantID, importID uuid.UUID) ([]services.RawRow, error) {
	stored, err := mc.ImportRepo.GetRawRows(tenantID, importID, sampleRowLimit, 0)
	if err != nil {
		return nil, err
	}

	rows := make([]services.RawRow, 0, len(stored))
	for _, record := range stored {
		data := map[string]interface{}{}
		if err := json.Unmarshal(record.RawData, &data); err != nil {
			config.Logger.Warn("Skipping undecodable raw row",
				zap.String("import_id", importID.String()),
				zap.Int("row_index", record.RowIndex),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, services.RawRow{RowIndex: record.RowIndex, RawData: data})
	}
	return rows, nil
}

// columnsOf returns the union of column names across the sample, sorted
// for stable output.
func columnsOf(rows []services.RawRow) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for name := range row.RawData {
			seen[name] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

func supplierOf(imp *models.DpgfImport) string {
	if imp.Supplier != nil {
		return services.NormalizeSupplierName(*imp.Supplier)
	}
	return services.NormalizeSupplierName("")
}

type saveMappingEntry struct {
	SourceColumn string           `json:"source_column"`
	TargetField  string           `json:"target_field"`
	FieldType    models.FieldType `json:"field_type"`
	MappingOrder int              `json:"mapping_order"`
}

// SaveMappings persists a mapping set for an import: upserts the
// mappings, bumps the import's mapping version and feeds every entry
// into mapping memory for future suggestions.
func (mc *MappingController) SaveMappings(c *fiber.Ctx) error {
	imp, payload, errResp := mc.loadImportScoped(c)
	if imp == nil {
		return errResp
	}

	type SaveMappingsRequest struct {
		Mappings []saveMappingEntry `json:"mappings"`
	}

	var req SaveMappingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if len(req.Mappings) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No mappings supplied",
			"data":    nil,
			"error":   "At least one mapping is required.",
		})
	}

	seen := map[string]bool{}
	for _, entry := range req.Mappings {
		if entry.SourceColumn == "" || entry.TargetField == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid mapping entry",
				"data":    nil,
				"error":   "Every mapping needs a source_column and a target_field.",
			})
		}
		if seen[entry.SourceColumn] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid mapping entry",
				"data":    nil,
				"error":   "Duplicate source_column '" + entry.SourceColumn + "' in mapping set.",
			})
		}
		seen[entry.SourceColumn] = true
	}

	supplier := supplierOf(imp)
	now := time.Now()

	var newVersion int
	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		mappings := make([]models.ColumnMapping, 0, len(req.Mappings))
		for _, entry := range req.Mappings {
			fieldType := entry.FieldType
			if fieldType == "" {
				fieldType = models.FieldTypeText
			}
			mappings = append(mappings, models.ColumnMapping{
				TenantID:     imp.TenantID,
				ImportID:     imp.ID,
				SourceColumn: entry.SourceColumn,
				TargetField:  entry.TargetField,
				FieldType:    fieldType,
				MappingOrder: entry.MappingOrder,
				CreatedBy:    payload.Email,
			})
		}

		if err := mc.MappingRepo.UpsertColumnMappings(tx, mappings); err != nil {
			return err
		}

		version, err := mc.MappingRepo.BumpMappingVersion(tx, imp.ID)
		if err != nil {
			return err
		}
		newVersion = version

		for _, entry := range req.Mappings {
			record := models.MappingMemory{
				TenantID:               imp.TenantID,
				Supplier:               supplier,
				SourceColumnNormalized: services.NormalizeSourceColumn(entry.SourceColumn),
				SourceColumnOriginal:   entry.SourceColumn,
				TargetField:            entry.TargetField,
				Confidence:             0.5,
				LastUsedAt:             now,
			}
			if err := mc.MappingRepo.IncrementMappingMemory(tx, record); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		config.Logger.Error("Failed to save mappings",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save mappings",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	config.Logger.Info("Mappings saved",
		zap.String("import_id", imp.ID.String()),
		zap.String("supplier", supplier),
		zap.Int("mapping_count", len(req.Mappings)),
		zap.Int("mapping_version", newVersion),
	)

	return c.JSON(fiber.Map{
		"message": "Mappings saved successfully",
		"data": fiber.Map{
			"import_id":       imp.ID,
			"mapping_version": newVersion,
			"mapping_count":   len(req.Mappings),
		},
		"error": nil,
	})
}

// GetMappings returns the saved mapping set for an import.
func (mc *MappingController) GetMappings(c *fiber.Ctx) error {
	imp, _, errResp := mc.loadImportScoped(c)
	if imp == nil {
		return errResp
	}

	mappings, err := mc.MappingRepo.GetColumnMappings(imp.TenantID, imp.ID)
	if err != nil {
		config.Logger.Error("Failed to fetch column mappings",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch mappings",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Mappings retrieved successfully",
		"data": fiber.Map{
			"mappings":        mappings,
			"mapping_status":  imp.MappingStatus,
			"mapping_version": imp.MappingVersion,
		},
		"error": nil,
	})
}
