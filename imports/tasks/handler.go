package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/imports/repositories"
	"dpgf-quoting-backend/imports/services"
	"dpgf-quoting-backend/utils"
	"dpgf-quoting-backend/websocket"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ImportTaskHandler processes queued import-parse jobs.
type ImportTaskHandler struct {
	ImportRepo repositories.ImportRepository
	Hub        *websocket.Hub
}

func NewImportTaskHandler(importRepo repositories.ImportRepository, hub *websocket.Hub) *ImportTaskHandler {
	return &ImportTaskHandler{
		ImportRepo: importRepo,
		Hub:        hub,
	}
}

// HandleImportParseTask parses the stored workbook into raw rows and
// marks the import parsed. Failures flip the import to failed before
// being returned to asynq for retry accounting.
func (h *ImportTaskHandler) HandleImportParseTask(ctx context.Context, t *asynq.Task) error {
	var payload ImportParsePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to decode import parse payload: %v: %w", err, asynq.SkipRetry)
	}

	imp, err := h.ImportRepo.GetImportByID(payload.TenantID, payload.ImportID)
	if err != nil {
		config.Logger.Error("Import parse task: import not found",
			zap.String("import_id", payload.ImportID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("import lookup failed: %v: %w", err, asynq.SkipRetry)
	}

	if imp.Status == models.ImportStatusParsed {
		config.Logger.Info("Import parse task: import already parsed, skipping",
			zap.String("import_id", imp.ID.String()),
		)
		return nil
	}

	if err := h.ImportRepo.UpdateImportStatus(imp.ID, models.ImportStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark import processing: %w", err)
	}
	h.broadcastStatus(imp.TenantID, imp.ID, models.ImportStatusProcessing, 0)

	sheet, err := services.ParseDpgfWorkbook(imp.StoragePath)
	if err != nil {
		h.failImport(imp, err)
		return fmt.Errorf("failed to parse workbook: %v: %w", err, asynq.SkipRetry)
	}

	rows, err := services.BuildRawRows(imp.TenantID, imp.ID, sheet)
	if err != nil {
		h.failImport(imp, err)
		return fmt.Errorf("failed to build raw rows: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.ImportRepo.InsertRawRows(rows); err != nil {
		h.failImport(imp, err)
		return fmt.Errorf("failed to insert raw rows: %w", err)
	}

	if err := h.ImportRepo.MarkImportParsed(imp.ID, len(rows), time.Now()); err != nil {
		return fmt.Errorf("failed to mark import parsed: %w", err)
	}

	h.broadcastStatus(imp.TenantID, imp.ID, models.ImportStatusParsed, len(rows))

	config.Logger.Info("Import parsed",
		zap.String("import_id", imp.ID.String()),
		zap.String("filename", imp.Filename),
		zap.Int("row_count", len(rows)),
	)

	if payload.UserEmail != "" {
		message := fmt.Sprintf("Your price list %q has been parsed: %d rows are ready for column mapping.", imp.Filename, len(rows))
		if err := utils.SendEmail(payload.UserEmail, message, "Price list ready for mapping", ""); err != nil {
			config.Logger.Warn("Failed to send import completion email",
				zap.String("import_id", imp.ID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (h *ImportTaskHandler) failImport(imp *models.DpgfImport, cause error) {
	config.Logger.Error("Import parse failed",
		zap.String("import_id", imp.ID.String()),
		zap.String("filename", imp.Filename),
		zap.Error(cause),
	)
	if err := h.ImportRepo.UpdateImportStatus(imp.ID, models.ImportStatusFailed); err != nil {
		config.Logger.Error("Failed to mark import failed",
			zap.String("import_id", imp.ID.String()),
			zap.Error(err),
		)
	}
	h.broadcastStatus(imp.TenantID, imp.ID, models.ImportStatusFailed, 0)
}

func (h *ImportTaskHandler) broadcastStatus(tenantID, importID uuid.UUID, status models.ImportStatus, rowCount int) {
	if h.Hub == nil {
		return
	}
	channel := websocket.ImportChannel(importID)
	h.Hub.BroadcastToChannel(tenantID, channel, websocket.WebSocketMessage{
		Type: websocket.MessageTypeImportStatus,
		Payload: map[string]interface{}{
			"import_id": importID.String(),
			"status":    status,
			"row_count": rowCount,
		},
		Timestamp: time.Now(),
		ChannelID: channel,
	})
}
