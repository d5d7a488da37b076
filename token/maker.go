package token

import (
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
)

// Maker defines a contract for anything that can create and verify
// tokens, so the implementation can change without touching handlers.
type Maker interface {
	CreateToken(userID, tenantID uuid.UUID, email string, role models.Role, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
