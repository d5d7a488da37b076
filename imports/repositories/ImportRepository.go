package repositories

import (
	"errors"
	"fmt"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportRepository interface {
	CreateImport(imp *models.DpgfImport) (*models.DpgfImport, error)
	GetImportByID(tenantID, importID uuid.UUID) (*models.DpgfImport, error)
	GetFilteredImports(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.DpgfImport, int64, error)
	UpdateImportStatus(importID uuid.UUID, status models.ImportStatus) error
	MarkImportParsed(importID uuid.UUID, rowCount int, parsedAt time.Time) error
	InsertRawRows(rows []models.RawImportRow) error
	CountRawRows(tenantID, importID uuid.UUID) (int64, error)
	GetRawRows(tenantID, importID uuid.UUID, limit, offset int) ([]models.RawImportRow, error)
}

type importRepository struct {
	db *gorm.DB
}

func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) CreateImport(imp *models.DpgfImport) (*models.DpgfImport, error) {
	imp.ID = uuid.New()
	if err := r.db.Create(imp).Error; err != nil {
		return nil, fmt.Errorf("failed to create import: %w", err)
	}
	return imp, nil
}

func (r *importRepository) GetImportByID(tenantID, importID uuid.UUID) (*models.DpgfImport, error) {
	var imp models.DpgfImport
	err := r.db.First(&imp, "id = ? AND tenant_id = ?", importID, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("import '%s' not found", importID)
		}
		return nil, err
	}
	return &imp, nil
}

// GetFilteredImports retrieves a tenant's imports with filtering and pagination
func (r *importRepository) GetFilteredImports(tenantID uuid.UUID, pageSize int, offset int, filters map[string]string) ([]models.DpgfImport, int64, error) {
	var imports []models.DpgfImport
	var total int64

	db := r.db.Model(&models.DpgfImport{}).Where("tenant_id = ?", tenantID)

	for key, value := range filters {
		switch key {
		case "status":
			db = db.Where("status = ?", value)
		case "supplier":
			db = db.Where("supplier ILIKE ?", "%"+value+"%")
		case "filename":
			db = db.Where("filename ILIKE ?", "%"+value+"%")
		case "start_date":
			db = db.Where("Date(created_at) >= ?", value)
		case "end_date":
			db = db.Where("Date(created_at) <= ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Limit(pageSize).Offset(offset).Order("created_at DESC").Find(&imports).Error; err != nil {
		return nil, 0, err
	}

	return imports, total, nil
}

func (r *importRepository) UpdateImportStatus(importID uuid.UUID, status models.ImportStatus) error {
	return r.db.Model(&models.DpgfImport{}).Where("id = ?", importID).Update("status", status).Error
}

func (r *importRepository) MarkImportParsed(importID uuid.UUID, rowCount int, parsedAt time.Time) error {
	return r.db.Model(&models.DpgfImport{}).Where("id = ?", importID).Updates(map[string]interface{}{
		"status":    models.ImportStatusParsed,
		"row_count": rowCount,
		"parsed_at": parsedAt,
	}).Error
}

// InsertRawRows writes parsed rows in batches; an import's rows are
// immutable after this point.
func (r *importRepository) InsertRawRows(rows []models.RawImportRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ID = uuid.New()
	}
	return r.db.CreateInBatches(rows, 500).Error
}

func (r *importRepository) CountRawRows(tenantID, importID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.RawImportRow{}).
		Where("tenant_id = ? AND import_id = ?", tenantID, importID).
		Count(&count).Error
	return count, err
}

func (r *importRepository) GetRawRows(tenantID, importID uuid.UUID, limit, offset int) ([]models.RawImportRow, error) {
	var rows []models.RawImportRow
	err := r.db.
		Where("tenant_id = ? AND import_id = ?", tenantID, importID).
		Order("row_index").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}
