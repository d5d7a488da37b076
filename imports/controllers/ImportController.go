package controllers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/imports/repositories"
	"dpgf-quoting-backend/imports/tasks"
	"dpgf-quoting-backend/mappings/services"
	"dpgf-quoting-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type ImportController struct {
	ImportRepo  repositories.ImportRepository
	AsynqClient *asynq.Client
	Ctx         context.Context
	UploadDir   string
}

// UploadImport accepts a DPGF workbook, stores it and queues parsing.
func (ic *ImportController) UploadImport(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to get file",
			"data":    nil,
			"error":   "A 'file' form field is required.",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unsupported file type",
			"data":    nil,
			"error":   "Only .xlsx and .xlsm workbooks are supported.",
		})
	}

	importID := uuid.New()
	if err := os.MkdirAll(ic.UploadDir, 0o755); err != nil {
		config.Logger.Error("Failed to create upload directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save file",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	storagePath := filepath.Join(ic.UploadDir, fmt.Sprintf("%s%s", importID, ext))
	if err := c.SaveFile(file, storagePath); err != nil {
		config.Logger.Error("Failed to save uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save file",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	var supplier *string
	if v := strings.TrimSpace(c.FormValue("supplier")); v != "" {
		normalized := services.NormalizeSupplierName(v)
		supplier = &normalized
	}

	imp := models.DpgfImport{
		ID:            importID,
		TenantID:      payload.TenantID,
		UserID:        payload.UserID,
		Filename:      file.Filename,
		StoragePath:   storagePath,
		Supplier:      supplier,
		Status:        models.ImportStatusPending,
		MappingStatus: models.MappingStatusNone,
	}

	created, err := ic.ImportRepo.CreateImport(&imp)
	if err != nil {
		config.Logger.Error("Failed to create import record", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create import",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	task, err := tasks.NewImportParseTask(created.ID, created.TenantID, payload.Email)
	if err != nil {
		config.Logger.Error("Failed to build parse task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to queue parsing",
			"data":    nil,
			"error":   err.Error(),
		})
	}
	if _, err := ic.AsynqClient.Enqueue(task); err != nil {
		config.Logger.Error("Failed to enqueue parse task",
			zap.String("import_id", created.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to queue parsing",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	config.Logger.Info("Import uploaded and queued",
		zap.String("import_id", created.ID.String()),
		zap.String("filename", created.Filename),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Import queued for parsing",
		"data":    created,
		"error":   nil,
	})
}

// GetImportStatus returns one import with its lifecycle fields.
func (ic *ImportController) GetImportStatus(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "Authentication required.",
		})
	}

	importID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid import ID",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	imp, err := ic.ImportRepo.GetImportByID(payload.TenantID, importID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Import not found",
			"data":    nil,
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Import retrieved successfully",
		"data":    imp,
		"error":   nil,
	})
}
