package repositories

import (
	"fmt"
	"time"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MappingRepository interface {
	UpsertColumnMappings(tx *gorm.DB, mappings []models.ColumnMapping) error
	BumpMappingVersion(tx *gorm.DB, importID uuid.UUID) (int, error)
	IncrementMappingMemory(tx *gorm.DB, record models.MappingMemory) error
	GetMemoryRows(tenantID uuid.UUID, supplier string, normalizedColumns []string) ([]models.MappingMemory, error)
	GetColumnMappings(tenantID, importID uuid.UUID) ([]models.ColumnMapping, error)
	GetTemplates(tenantID uuid.UUID, supplier string) ([]models.MappingTemplate, error)
	SaveTemplate(template *models.MappingTemplate) (*models.MappingTemplate, error)
}

type mappingRepository struct {
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepository{db: db}
}

// UpsertColumnMappings saves a mapping set keyed by
// tenant+import+source column, replacing target/type/order on conflict.
func (r *mappingRepository) UpsertColumnMappings(tx *gorm.DB, mappings []models.ColumnMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	for i := range mappings {
		if mappings[i].ID == uuid.Nil {
			mappings[i].ID = uuid.New()
		}
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"}, {Name: "import_id"}, {Name: "source_column"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"target_field", "field_type", "mapping_order", "updated_at"}),
	}).Create(&mappings).Error
}

// BumpMappingVersion moves the import to draft mapping status and
// increments its mapping version, returning the new version.
func (r *mappingRepository) BumpMappingVersion(tx *gorm.DB, importID uuid.UUID) (int, error) {
	err := tx.Model(&models.DpgfImport{}).
		Where("id = ?", importID).
		Updates(map[string]interface{}{
			"mapping_status":  models.MappingStatusDraft,
			"mapping_version": gorm.Expr("mapping_version + 1"),
		}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to bump mapping version: %w", err)
	}

	var imp models.DpgfImport
	if err := tx.Select("mapping_version").First(&imp, "id = ?", importID).Error; err != nil {
		return 0, err
	}
	return imp.MappingVersion, nil
}

// IncrementMappingMemory keeps one logical counter per
// (tenant, supplier, normalized column, target field): the first
// confirmation inserts, later ones increment use_count and refresh the
// original spelling and last-used timestamp.
func (r *mappingRepository) IncrementMappingMemory(tx *gorm.DB, record models.MappingMemory) error {
	record.ID = uuid.New()
	if record.UseCount == 0 {
		record.UseCount = 1
	}
	if record.LastUsedAt.IsZero() {
		record.LastUsedAt = time.Now()
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"}, {Name: "supplier"},
			{Name: "source_column_normalized"}, {Name: "target_field"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"use_count":              gorm.Expr("mapping_memories.use_count + 1"),
			"source_column_original": record.SourceColumnOriginal,
			"confidence":             record.Confidence,
			"last_used_at":           record.LastUsedAt,
			"updated_at":             time.Now(),
		}),
	}).Create(&record).Error
}

// GetMemoryRows fetches a supplier's learned mappings for the given
// normalized columns, best confidence first.
func (r *mappingRepository) GetMemoryRows(tenantID uuid.UUID, supplier string, normalizedColumns []string) ([]models.MappingMemory, error) {
	var rows []models.MappingMemory
	db := r.db.Where("tenant_id = ? AND supplier = ?", tenantID, supplier)
	if len(normalizedColumns) > 0 {
		db = db.Where("source_column_normalized IN ?", normalizedColumns)
	}
	err := db.Order("confidence DESC, use_count DESC").Find(&rows).Error
	return rows, err
}

func (r *mappingRepository) GetColumnMappings(tenantID, importID uuid.UUID) ([]models.ColumnMapping, error) {
	var mappings []models.ColumnMapping
	err := r.db.
		Where("tenant_id = ? AND import_id = ?", tenantID, importID).
		Order("mapping_order").
		Find(&mappings).Error
	return mappings, err
}

func (r *mappingRepository) GetTemplates(tenantID uuid.UUID, supplier string) ([]models.MappingTemplate, error) {
	var templates []models.MappingTemplate
	err := r.db.
		Where("tenant_id = ? AND supplier_name = ?", tenantID, supplier).
		Order("version DESC").
		Find(&templates).Error
	return templates, err
}

func (r *mappingRepository) SaveTemplate(template *models.MappingTemplate) (*models.MappingTemplate, error) {
	template.ID = uuid.New()
	if template.Version == 0 {
		template.Version = 1
	}
	if err := r.db.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to save mapping template: %w", err)
	}
	return template, nil
}
