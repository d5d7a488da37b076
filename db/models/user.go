package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	AdminRole    Role = "admin"
	EngineerRole Role = "engineer"
	ViewerRole   Role = "viewer"
)

// CanEditPricing reports whether the role is allowed to mutate
// catalogue, pricing and mapping data.
func (r Role) CanEditPricing() bool {
	return r == AdminRole || r == EngineerRole
}

// Tenant is the billing/isolation unit. Every domain record carries a
// TenantID and queries are always scoped to one tenant.
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	Name      string         `gorm:"unique;not null" json:"name"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// User represents system users with role-based access
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `json:"-"` // Never include in JSON responses

	Role Role `gorm:"type:varchar(30);not null" json:"role"`

	// Status
	Active      bool       `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	// Audit fields
	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
