package config

import (
	"errors"
	"fmt"
	"log"

	"dpgf-quoting-backend/db/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedInitialData creates a default tenant, an admin user and the
// tenant's pricing parameters so a fresh install is usable immediately.
func SeedInitialData(db *gorm.DB) error {
	tenantName := GetEnvOrDefault("INITIAL_TENANT_NAME", "Atelier Demo")

	var tenant models.Tenant
	err := db.Where("name = ?", tenantName).First(&tenant).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up initial tenant: %w", err)
		}
		tenant = models.Tenant{
			ID:       uuid.New(),
			Name:     tenantName,
			IsActive: true,
		}
		if err := db.Create(&tenant).Error; err != nil {
			return fmt.Errorf("failed to create initial tenant: %w", err)
		}
		log.Printf("Created initial tenant %s", tenant.Name)
	}

	adminEmail := GetEnvOrDefault("INITIAL_ADMIN_EMAIL", "admin@example.com")

	var existing models.User
	err = db.Where("email = ?", adminEmail).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up initial admin: %w", err)
		}

		hashedPassword, err := bcrypt.GenerateFromPassword(
			[]byte(GetEnvOrDefault("INITIAL_ADMIN_PASSWORD", "changeme123")),
			bcrypt.DefaultCost,
		)
		if err != nil {
			return fmt.Errorf("failed to hash initial admin password: %w", err)
		}

		admin := models.User{
			ID:        uuid.New(),
			TenantID:  tenant.ID,
			FirstName: "Initial",
			LastName:  "Admin",
			Email:     adminEmail,
			Password:  string(hashedPassword),
			Role:      models.AdminRole,
			Active:    true,
			CreatedBy: "system",
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create initial admin: %w", err)
		}
		log.Printf("Created initial admin user %s", admin.Email)
	}

	var params models.PricingParams
	err = db.Where("tenant_id = ?", tenant.ID).First(&params).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up pricing params: %w", err)
		}
		params = models.PricingParams{
			ID:             uuid.New(),
			TenantID:       tenant.ID,
			TauxHoraireEur: decimal.NewFromInt(60),
			MargePct:       decimal.NewFromInt(25),
			BaseCost:       decimal.NewFromInt(100),
			UpdatedBy:      "system",
		}
		if err := db.Create(&params).Error; err != nil {
			return fmt.Errorf("failed to create pricing params: %w", err)
		}
	}

	return nil
}
