package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft      QuoteStatus = "draft"
	QuoteStatusCalculated QuoteStatus = "calculated"
	QuoteStatusSent       QuoteStatus = "sent"
	QuoteStatusAccepted   QuoteStatus = "accepted"
)

// PricingParams is the per-tenant default pricing context (hourly
// labor rate, margin, reference base cost for index fallback).
type PricingParams struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"tenant_id"`

	TauxHoraireEur decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"taux_horaire_eur"`
	MargePct       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"marge_pct"`
	BaseCost       decimal.Decimal `gorm:"type:decimal(15,4);default:100" json:"base_cost"`

	UpdatedBy string    `gorm:"not null" json:"updated_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Quote is a sale quote built from catalogue items and supplier prices.
type Quote struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Reference  string      `gorm:"not null;index" json:"reference"`
	ClientName string      `gorm:"not null" json:"client_name"`
	Lot        *string     `json:"lot"`
	Status     QuoteStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`

	TauxHoraireEur decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"taux_horaire_eur"`
	MargePct       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"marge_pct"`
	BaseCost       decimal.Decimal `gorm:"type:decimal(15,4);default:100" json:"base_cost"`

	TotalAchats decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"total_achats"`
	TotalMO     decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"total_mo"`
	TotalPV     decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"total_pv"`

	// Set by the nightly stale-pricing sweep when any line's structural
	// pricing inputs have degraded since the last calculation.
	RequiresUpdate bool       `gorm:"default:false" json:"requires_update"`
	CalculatedAt   *time.Time `json:"calculated_at"`

	Lines []QuoteLine `gorm:"foreignKey:QuoteID" json:"lines,omitempty"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// QuoteLine ties one catalogue item and quantity to a quote, together
// with the last calculated pricing results.
type QuoteLine struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	QuoteID  uuid.UUID `gorm:"type:uuid;not null;index" json:"quote_id"`

	CatalogueItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"catalogue_item_id"`
	LineOrder       int             `gorm:"default:0" json:"line_order"`
	Quantite        decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"quantite"`

	// Calculated outputs, persisted for display and totals.
	CoutAchatU decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"cout_achat_u"`
	MoU        decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"mo_u"`
	PvU        decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"pv_u"`
	TotalLigne decimal.Decimal `gorm:"type:decimal(15,4);default:0" json:"total_ligne"`
	Flags      datatypes.JSON  `gorm:"type:jsonb" json:"flags"`

	CatalogueItem *CatalogueItem `gorm:"foreignKey:CatalogueItemID" json:"catalogue_item,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
