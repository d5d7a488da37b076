package config

import (
	"fmt"
	"log"

	"dpgf-quoting-backend/db/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// allModels defines all models that should be migrated.
// This is the only place you need to add new models.
var allModels = []interface{}{
	// Tenancy and users
	&models.Tenant{},
	&models.User{},

	// Imports and mapping
	&models.DpgfImport{},
	&models.RawImportRow{},
	&models.ColumnMapping{},
	&models.MappingMemory{},
	&models.MappingTemplate{},

	// Catalogue and pricing data
	&models.CatalogueItem{},
	&models.SupplierPrice{},
	&models.MaterialIndex{},
	&models.PricingParams{},
	&models.CatalogueUploadError{},

	// Quotes
	&models.Quote{},
	&models.QuoteLine{},
}

func ConfigureDatabase() *gorm.DB {
	host := GetEnv("DB_HOST")
	user := GetEnv("POSTGRES_USER")
	password := GetEnv("POSTGRES_PASSWORD")
	dbname := GetEnv("POSTGRES_DB")
	port := GetEnv("DB_PORT")
	timezone := GetEnvOrDefault("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		host, user, password, dbname, port, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("[DB-CONNECT] Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("[DB-MIGRATE] Failed to run migrations: %v", err)
	}

	if err := CreateMappingMemoryPartialIndex(db); err != nil {
		log.Fatalf("[DB-MIGRATE] Failed to create mapping memory index: %v", err)
	}

	return db
}
