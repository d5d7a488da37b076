package config

import "gorm.io/gorm"

// CreateMappingMemoryPartialIndex enforces the one-counter-per-triple
// invariant for mapping memory: a single row per
// (tenant, supplier, normalized column, target field). AutoMigrate
// declares the composite unique index too, but running the statement
// explicitly keeps databases created before the index was declared in
// the model consistent.
func CreateMappingMemoryPartialIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_mapping_memory_counter
		ON mapping_memories (tenant_id, supplier, source_column_normalized, target_field);
	`).Error
}
