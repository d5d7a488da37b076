package repositories

import (
	"errors"
	"fmt"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	CreateQuote(quote *models.Quote) (*models.Quote, error)
	GetQuoteByID(tenantID, quoteID uuid.UUID) (*models.Quote, error)
	GetFilteredQuotes(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Quote, int64, error)
	SaveCalculation(quote *models.Quote, lines []models.QuoteLine, calculatedAt time.Time) error
	SetRequiresUpdate(quoteID uuid.UUID, requiresUpdate bool) error
	ListActiveQuotes(batchSize int, process func([]models.Quote) error) error

	GetPricingParams(tenantID uuid.UUID) (*models.PricingParams, error)
	UpsertPricingParams(params *models.PricingParams) (*models.PricingParams, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) CreateQuote(quote *models.Quote) (*models.Quote, error) {
	quote.ID = uuid.New()
	for i := range quote.Lines {
		quote.Lines[i].ID = uuid.New()
		quote.Lines[i].TenantID = quote.TenantID
		quote.Lines[i].QuoteID = quote.ID
		quote.Lines[i].LineOrder = i
	}
	if err := r.db.Create(quote).Error; err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return quote, nil
}

func (r *quoteRepository) GetQuoteByID(tenantID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_order") }).
		Preload("Lines.CatalogueItem").
		First(&quote, "id = ? AND tenant_id = ?", quoteID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("quote '%s' not found", quoteID)
		}
		return nil, err
	}
	return &quote, nil
}

// GetFilteredQuotes retrieves a tenant's quotes with filtering and pagination
func (r *quoteRepository) GetFilteredQuotes(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.Quote, int64, error) {
	var quotes []models.Quote
	var total int64

	db := r.db.Model(&models.Quote{}).Where("tenant_id = ?", tenantID)

	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", value)
		case "client":
			db = db.Where("client_name ILIKE ?", "%"+value+"%")
		case "reference":
			db = db.Where("reference ILIKE ?", "%"+value+"%")
		case "requires_update":
			if value == "true" {
				db = db.Where("requires_update = ?", true)
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Limit(pageSize).Offset(offset).Order("created_at DESC").Find(&quotes).Error; err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

// SaveCalculation persists the calculated outputs of all lines and the
// quote totals in one transaction.
func (r *quoteRepository) SaveCalculation(quote *models.Quote, lines []models.QuoteLine, calculatedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			err := tx.Model(&models.QuoteLine{}).
				Where("id = ?", lines[i].ID).
				Updates(map[string]interface{}{
					"cout_achat_u": lines[i].CoutAchatU,
					"mo_u":         lines[i].MoU,
					"pv_u":         lines[i].PvU,
					"total_ligne":  lines[i].TotalLigne,
					"flags":        lines[i].Flags,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update quote line %s: %w", lines[i].ID, err)
			}
		}

		return tx.Model(&models.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]interface{}{
				"total_achats":    quote.TotalAchats,
				"total_mo":        quote.TotalMO,
				"total_pv":        quote.TotalPV,
				"status":          models.QuoteStatusCalculated,
				"requires_update": false,
				"calculated_at":   calculatedAt,
			}).Error
	})
}

func (r *quoteRepository) SetRequiresUpdate(quoteID uuid.UUID, requiresUpdate bool) error {
	return r.db.Model(&models.Quote{}).
		Where("id = ?", quoteID).
		Update("requires_update", requiresUpdate).Error
}

// ListActiveQuotes streams non-deleted draft/calculated quotes with
// their lines in batches; used by the nightly stale-pricing sweep.
func (r *quoteRepository) ListActiveQuotes(batchSize int, process func([]models.Quote) error) error {
	var batch []models.Quote
	result := r.db.
		Preload("Lines").
		Preload("Lines.CatalogueItem").
		Where("status IN ?", []models.QuoteStatus{models.QuoteStatusDraft, models.QuoteStatusCalculated}).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return process(batch)
		})
	return result.Error
}

func (r *quoteRepository) GetPricingParams(tenantID uuid.UUID) (*models.PricingParams, error) {
	var params models.PricingParams
	err := r.db.First(&params, "tenant_id = ?", tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pricing params for tenant '%s' not found", tenantID)
		}
		return nil, err
	}
	return &params, nil
}

func (r *quoteRepository) UpsertPricingParams(params *models.PricingParams) (*models.PricingParams, error) {
	var existing models.PricingParams
	err := r.db.First(&existing, "tenant_id = ?", params.TenantID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up pricing params: %w", err)
		}
		params.ID = uuid.New()
		if err := r.db.Create(params).Error; err != nil {
			return nil, fmt.Errorf("failed to create pricing params: %w", err)
		}
		return params, nil
	}

	existing.TauxHoraireEur = params.TauxHoraireEur
	existing.MargePct = params.MargePct
	existing.BaseCost = params.BaseCost
	existing.UpdatedBy = params.UpdatedBy
	if err := r.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update pricing params: %w", err)
	}
	return &existing, nil
}
