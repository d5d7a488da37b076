package repositories

import (
	"errors"
	"fmt"
	"strings"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogueRepository interface {
	CreateCatalogueItem(tx *gorm.DB, item *models.CatalogueItem) (*models.CatalogueItem, error)
	UpdateCatalogueItem(item *models.CatalogueItem) (*models.CatalogueItem, error)
	DeleteCatalogueItem(tenantID, itemID uuid.UUID) error
	GetCatalogueItemByID(tenantID, itemID uuid.UUID) (*models.CatalogueItem, error)
	GetCatalogueItemByHexCode(tenantID uuid.UUID, hexCode string) (*models.CatalogueItem, error)
	GetFilteredCatalogueItems(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.CatalogueItem, int64, error)
	GetAllCatalogueItems() ([]models.CatalogueItem, error)
	FindDuplicateHexCodes(tenantID uuid.UUID, hexCodes []string) ([]string, error)
	BulkCreateCatalogueItems(tx *gorm.DB, items []models.CatalogueItem) error
	LogCatalogueUploadErrors(rows []models.CatalogueUploadError) error

	CreateSupplierPrice(price *models.SupplierPrice) (*models.SupplierPrice, error)
	UpdateSupplierPrice(price *models.SupplierPrice) (*models.SupplierPrice, error)
	GetSupplierPriceByID(tenantID, priceID uuid.UUID) (*models.SupplierPrice, error)
	GetSupplierPricesByCatalogueItem(tenantID, itemID uuid.UUID) ([]models.SupplierPrice, error)
	GetSupplierPricesForItems(tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID][]models.SupplierPrice, error)

	CreateMaterialIndex(index *models.MaterialIndex) (*models.MaterialIndex, error)
	GetMaterialIndicesByMatiere(tenantID uuid.UUID, matiere string) ([]models.MaterialIndex, error)
	GetLastMaterialIndex(tenantID uuid.UUID, matiere string) (*models.MaterialIndex, error)
}

type catalogueRepository struct {
	db *gorm.DB
}

func NewCatalogueRepository(db *gorm.DB) CatalogueRepository {
	return &catalogueRepository{db: db}
}

func (r *catalogueRepository) CreateCatalogueItem(tx *gorm.DB, item *models.CatalogueItem) (*models.CatalogueItem, error) {
	// Hex codes are the per-tenant business key, stored uppercase.
	item.HexCode = strings.ToUpper(strings.TrimSpace(item.HexCode))

	var existing models.CatalogueItem
	err := tx.Where("tenant_id = ? AND hex_code = ?", item.TenantID, item.HexCode).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("catalogue item with hex code '%s' already exists", item.HexCode)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing catalogue item: %w", err)
	}

	item.ID = uuid.New()
	if err := tx.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create catalogue item: %w", err)
	}
	return item, nil
}

func (r *catalogueRepository) UpdateCatalogueItem(item *models.CatalogueItem) (*models.CatalogueItem, error) {
	item.HexCode = strings.ToUpper(strings.TrimSpace(item.HexCode))
	if err := r.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("failed to update catalogue item: %w", err)
	}
	return item, nil
}

func (r *catalogueRepository) DeleteCatalogueItem(tenantID, itemID uuid.UUID) error {
	return r.db.Where("tenant_id = ?", tenantID).Delete(&models.CatalogueItem{}, "id = ?", itemID).Error
}

func (r *catalogueRepository) GetCatalogueItemByID(tenantID, itemID uuid.UUID) (*models.CatalogueItem, error) {
	var item models.CatalogueItem
	err := r.db.First(&item, "id = ? AND tenant_id = ?", itemID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalogue item '%s' not found", itemID)
		}
		return nil, err
	}
	return &item, nil
}

func (r *catalogueRepository) GetCatalogueItemByHexCode(tenantID uuid.UUID, hexCode string) (*models.CatalogueItem, error) {
	var item models.CatalogueItem
	normalized := strings.ToUpper(strings.TrimSpace(hexCode))
	err := r.db.First(&item, "tenant_id = ? AND hex_code = ?", tenantID, normalized).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalogue item with hex code '%s' not found", normalized)
		}
		return nil, err
	}
	return &item, nil
}

// GetFilteredCatalogueItems retrieves catalogue items with filtering and pagination
func (r *catalogueRepository) GetFilteredCatalogueItems(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.CatalogueItem, int64, error) {
	var items []models.CatalogueItem
	var total int64

	db := r.db.Model(&models.CatalogueItem{}).Where("tenant_id = ?", tenantID)

	for key, value := range filters {
		switch key {
		case "hex_code":
			db = db.Where("hex_code ILIKE ?", "%"+strings.ToUpper(value)+"%")
		case "designation":
			db = db.Where("designation ILIKE ?", "%"+value+"%")
		case "matiere":
			db = db.Where("matiere = ?", value)
		case "missing_time":
			if strings.ToLower(value) == "true" {
				db = db.Where("temps_unitaire_h IS NULL OR temps_unitaire_h <= 0")
			}
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Limit(pageSize).Offset(offset).Order("hex_code").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// GetAllCatalogueItems loads every item across tenants, for search
// reindexing at startup.
func (r *catalogueRepository) GetAllCatalogueItems() ([]models.CatalogueItem, error) {
	var items []models.CatalogueItem
	err := r.db.Find(&items).Error
	return items, err
}

// FindDuplicateHexCodes returns the hex codes from the given list that
// already exist for the tenant.
func (r *catalogueRepository) FindDuplicateHexCodes(tenantID uuid.UUID, hexCodes []string) ([]string, error) {
	if len(hexCodes) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.Model(&models.CatalogueItem{}).
		Where("tenant_id = ? AND hex_code IN ?", tenantID, hexCodes).
		Pluck("hex_code", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate hex codes: %w", err)
	}
	return existing, nil
}

func (r *catalogueRepository) BulkCreateCatalogueItems(tx *gorm.DB, items []models.CatalogueItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := tx.CreateInBatches(items, 200).Error; err != nil {
		return fmt.Errorf("failed to bulk insert catalogue items: %w", err)
	}
	return nil
}

func (r *catalogueRepository) LogCatalogueUploadErrors(rows []models.CatalogueUploadError) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.CreateInBatches(rows, 200).Error
}

func (r *catalogueRepository) CreateSupplierPrice(price *models.SupplierPrice) (*models.SupplierPrice, error) {
	price.ID = uuid.New()
	if err := r.db.Create(price).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier price: %w", err)
	}
	return price, nil
}

func (r *catalogueRepository) UpdateSupplierPrice(price *models.SupplierPrice) (*models.SupplierPrice, error) {
	if err := r.db.Save(price).Error; err != nil {
		return nil, fmt.Errorf("failed to update supplier price: %w", err)
	}
	return price, nil
}

func (r *catalogueRepository) GetSupplierPriceByID(tenantID, priceID uuid.UUID) (*models.SupplierPrice, error) {
	var price models.SupplierPrice
	err := r.db.First(&price, "id = ? AND tenant_id = ?", priceID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("supplier price '%s' not found", priceID)
		}
		return nil, err
	}
	return &price, nil
}

func (r *catalogueRepository) GetSupplierPricesByCatalogueItem(tenantID, itemID uuid.UUID) ([]models.SupplierPrice, error) {
	var prices []models.SupplierPrice
	err := r.db.
		Where("tenant_id = ? AND catalogue_item_id = ?", tenantID, itemID).
		Order("prix_net").
		Find(&prices).Error
	return prices, err
}

// GetSupplierPricesForItems loads all candidate prices for a set of
// catalogue items in one query, grouped by item.
func (r *catalogueRepository) GetSupplierPricesForItems(tenantID uuid.UUID, itemIDs []uuid.UUID) (map[uuid.UUID][]models.SupplierPrice, error) {
	grouped := make(map[uuid.UUID][]models.SupplierPrice, len(itemIDs))
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	var prices []models.SupplierPrice
	err := r.db.
		Where("tenant_id = ? AND catalogue_item_id IN ?", tenantID, itemIDs).
		Find(&prices).Error
	if err != nil {
		return nil, err
	}

	for _, price := range prices {
		grouped[price.CatalogueItemID] = append(grouped[price.CatalogueItemID], price)
	}
	return grouped, nil
}

func (r *catalogueRepository) CreateMaterialIndex(index *models.MaterialIndex) (*models.MaterialIndex, error) {
	index.ID = uuid.New()
	if err := r.db.Create(index).Error; err != nil {
		return nil, fmt.Errorf("failed to create material index: %w", err)
	}
	return index, nil
}

func (r *catalogueRepository) GetMaterialIndicesByMatiere(tenantID uuid.UUID, matiere string) ([]models.MaterialIndex, error) {
	var indices []models.MaterialIndex
	err := r.db.
		Where("tenant_id = ? AND matiere = ?", tenantID, matiere).
		Order("date DESC").
		Find(&indices).Error
	return indices, err
}

// GetLastMaterialIndex resolves "last" as most recent by date. A
// material with no history returns nil, nil: absence is a pricing
// fallback case, not an error.
func (r *catalogueRepository) GetLastMaterialIndex(tenantID uuid.UUID, matiere string) (*models.MaterialIndex, error) {
	var index models.MaterialIndex
	err := r.db.
		Where("tenant_id = ? AND matiere = ?", tenantID, matiere).
		Order("date DESC").
		First(&index).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &index, nil
}
