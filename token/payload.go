package token

import (
	"errors"
	"fmt"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("token has expired")

// Payload carries the tenant-scoped identity every request runs under.
type Payload struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	TenantID  uuid.UUID   `json:"tenant_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiredAt time.Time   `json:"expired_at"`
}

func NewPayload(userID, tenantID uuid.UUID, email string, role models.Role, duration time.Duration) (*Payload, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if userID == uuid.Nil || tenantID == uuid.Nil {
		return nil, errors.New("user and tenant are required")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC()
	payload := &Payload{
		ID:        tokenID,
		UserID:    userID,
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiredAt: issuedAt.Add(duration),
	}
	return payload, nil
}

func (payload *Payload) Valid() error {
	if time.Now().UTC().After(payload.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, Email: %s, Tenant: %s, Role: %s", p.ID, p.Email, p.TenantID, p.Role)
}
