package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogueItem is one orderable product. HexCode is the business key,
// unique per tenant and stored uppercase.
type CatalogueItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_catalogue_hex" json:"tenant_id"`

	HexCode     string  `gorm:"not null;uniqueIndex:idx_catalogue_hex" json:"hex_code"`
	Designation string  `gorm:"not null" json:"designation"`
	Matiere     *string `gorm:"index" json:"matiere"`
	Unite       *string `json:"unite"`

	// Unit labor time in hours; nil or <= 0 means labor is unknown and
	// pricing flags the line temps_manquant.
	TempsUnitaireH *decimal.Decimal `gorm:"type:decimal(10,4)" json:"temps_unitaire_h"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SupplierPrice is one quoted purchase price for a catalogue item. A
// price with no ValiditeFin never expires.
type SupplierPrice struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID        uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CatalogueItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"catalogue_item_id"`

	SupplierName string          `gorm:"not null;index" json:"supplier_name"`
	PrixBrut     decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"prix_brut"`
	RemisePct    decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"remise_pct"`
	PrixNet      decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"prix_net"`
	ValiditeFin  *time.Time      `json:"validite_fin"`

	CatalogueItem *CatalogueItem `gorm:"foreignKey:CatalogueItemID" json:"catalogue_item,omitempty"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Error types recorded for rejected bulk upload rows.
const (
	DuplicateErrorType   = "duplicate"
	MissingDataErrorType = "missing_data"
	BadValueErrorType    = "bad_value"
)

// CatalogueUploadError is a rejected row from a bulk catalogue upload,
// kept for the error report sent back to the uploader.
type CatalogueUploadError struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	HexCode     string `json:"hex_code"`
	Designation string `json:"designation"`
	Matiere     string `json:"matiere"`
	Unite       string `json:"unite"`
	Reason      string `gorm:"not null" json:"reason"`
	ErrorType   string `gorm:"not null" json:"error_type"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// MaterialIndex is a dated cost multiplier snapshot for a material.
// "Last" for pricing purposes means most recent by Date.
type MaterialIndex struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Matiere     string          `gorm:"not null;index" json:"matiere"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Coefficient decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"coefficient"`

	CreatedBy string    `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
