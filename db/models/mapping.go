package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeEmail       FieldType = "email"
	FieldTypeCurrency    FieldType = "currency"
	FieldTypeHexCode     FieldType = "hex_code"
	FieldTypeSupplierRef FieldType = "supplier_ref"
)

// ColumnMapping is a user-confirmed link between a source spreadsheet
// column and a catalogue field, keyed by tenant+import+source column.
type ColumnMapping struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mappings_scope" json:"tenant_id"`
	ImportID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mappings_scope" json:"import_id"`

	SourceColumn string    `gorm:"not null;uniqueIndex:idx_mappings_scope" json:"source_column"`
	TargetField  string    `gorm:"not null" json:"target_field"`
	FieldType    FieldType `gorm:"type:varchar(20);not null" json:"field_type"`
	MappingOrder int       `gorm:"default:0" json:"mapping_order"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MappingMemory accumulates confirmed mapping choices across imports.
// One logical counter per (tenant, supplier, normalized column, target
// field): confirming the same mapping again increments UseCount rather
// than inserting a new record.
type MappingMemory struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mapping_memory_counter" json:"tenant_id"`

	Supplier               string `gorm:"not null;uniqueIndex:idx_mapping_memory_counter" json:"supplier"`
	SourceColumnNormalized string `gorm:"not null;uniqueIndex:idx_mapping_memory_counter" json:"source_column_normalized"`
	SourceColumnOriginal   string `gorm:"not null" json:"source_column_original"`
	TargetField            string `gorm:"not null;uniqueIndex:idx_mapping_memory_counter" json:"target_field"`

	Confidence float64   `gorm:"default:0.5" json:"confidence"`
	UseCount   int       `gorm:"default:1" json:"use_count"`
	LastUsedAt time.Time `json:"last_used_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// MappingTemplate is a named, reusable set of column mappings for a
// supplier, stored as a JSON document.
type MappingTemplate struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	SupplierName string         `gorm:"not null;index" json:"supplier_name"`
	Mappings     datatypes.JSON `gorm:"type:jsonb" json:"mappings"`
	Version      int            `gorm:"default:1" json:"version"`
	Description  *string        `gorm:"type:text" json:"description"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
