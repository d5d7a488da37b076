package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TypeImportParse = "import:parse"

// ImportParsePayload identifies the uploaded file to parse in the
// background and who to notify when it is done.
type ImportParsePayload struct {
	ImportID  uuid.UUID `json:"import_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserEmail string    `json:"user_email"`
}

// NewImportParseTask builds the asynq task enqueued right after an
// upload is accepted.
func NewImportParseTask(importID, tenantID uuid.UUID, userEmail string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImportParsePayload{
		ImportID:  importID,
		TenantID:  tenantID,
		UserEmail: userEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode import parse payload: %w", err)
	}
	return asynq.NewTask(TypeImportParse, payload, asynq.MaxRetry(3)), nil
}
