package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusParsed     ImportStatus = "parsed"
	ImportStatusFailed     ImportStatus = "failed"
)

type MappingStatus string

const (
	MappingStatusNone      MappingStatus = "none"
	MappingStatusDraft     MappingStatus = "draft"
	MappingStatusConfirmed MappingStatus = "confirmed"
)

// DpgfImport tracks one uploaded supplier price list (DPGF file) from
// upload through parsing and column mapping.
type DpgfImport struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`

	Filename    string       `gorm:"not null" json:"filename"`
	StoragePath string       `gorm:"not null" json:"storage_path"`
	Supplier    *string      `gorm:"index" json:"supplier"`
	Status      ImportStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RowCount    int          `gorm:"default:0" json:"row_count"`
	ParsedAt    *time.Time   `json:"parsed_at"`

	// Mapping lifecycle: version bumps on every mapping save.
	MappingStatus  MappingStatus `gorm:"type:varchar(20);default:'none'" json:"mapping_status"`
	MappingVersion int           `gorm:"default:0" json:"mapping_version"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RawImportRow is one physical spreadsheet row of an import, stored as
// parsed. Immutable once created.
type RawImportRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ImportID uuid.UUID `gorm:"type:uuid;not null;index:idx_raw_rows_import_row" json:"import_id"`

	RowIndex int            `gorm:"not null;index:idx_raw_rows_import_row" json:"row_index"`
	RawData  datatypes.JSON `gorm:"type:jsonb" json:"raw_data"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
