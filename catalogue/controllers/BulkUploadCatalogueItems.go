package controllers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dpgf-quoting-backend/config"
	"dpgf-quoting-backend/db/models"
	"dpgf-quoting-backend/middleware"
	"dpgf-quoting-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BulkUploadCatalogueItems ingests catalogue items from an Excel file.
// Expected columns: hex_code, designation, matiere, unite,
// temps_unitaire_h. Rejected rows are reported back by email with a
// generated error workbook.
func (cc *CatalogueController) BulkUploadCatalogueItems(c *fiber.Ctx) error {
	payload, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"data":    nil,
			"error":   "missing authentication payload",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to get file"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Only .xlsx and .xlsm files are supported"})
	}

	if err := os.MkdirAll("./tmp", 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to prepare upload directory"})
	}
	tempFilePath := fmt.Sprintf("./tmp/%s%s", uuid.New().String(), ext)
	if err := c.SaveFile(file, tempFilePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to save file"})
	}
	defer os.Remove(tempFilePath)

	f, err := excelize.OpenFile(tempFilePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to open Excel file"})
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read rows from Excel sheet"})
	}

	cell := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var validItems []models.CatalogueItem
	var invalidRows []models.CatalogueUploadError
	hexCodesInFile := make(map[string]struct{})

	for i, row := range rows {
		if i == 0 {
			continue
		}

		hexCode := strings.ToUpper(cell(row, 0))
		designation := cell(row, 1)
		matiere := strings.ToLower(cell(row, 2))
		unite := cell(row, 3)
		tempsRaw := cell(row, 4)

		if hexCode == "" && designation == "" {
			continue
		}

		reject := func(reason, errorType string) {
			invalidRows = append(invalidRows, models.CatalogueUploadError{
				ID:          uuid.New(),
				TenantID:    payload.TenantID,
				HexCode:     hexCode,
				Designation: designation,
				Matiere:     matiere,
				Unite:       unite,
				Reason:      reason,
				ErrorType:   errorType,
				CreatedBy:   payload.Email,
			})
		}

		if hexCode == "" {
			reject(fmt.Sprintf("Missing hex code in row %d", i+1), models.MissingDataErrorType)
			continue
		}
		if designation == "" {
			reject(fmt.Sprintf("Missing designation in row %d", i+1), models.MissingDataErrorType)
			continue
		}
		if _, exists := hexCodesInFile[hexCode]; exists {
			reject(fmt.Sprintf("Duplicate hex code in the uploaded file in row %d", i+1), models.DuplicateErrorType)
			continue
		}
		hexCodesInFile[hexCode] = struct{}{}

		var tempsUnitaire *decimal.Decimal
		if tempsRaw != "" {
			d, parseErr := decimal.NewFromString(strings.ReplaceAll(tempsRaw, ",", "."))
			if parseErr != nil {
				reject(fmt.Sprintf("Invalid labor time '%s' in row %d", tempsRaw, i+1), models.BadValueErrorType)
				continue
			}
			tempsUnitaire = &d
		}

		item := models.CatalogueItem{
			ID:             uuid.New(),
			TenantID:       payload.TenantID,
			HexCode:        hexCode,
			Designation:    designation,
			TempsUnitaireH: tempsUnitaire,
			CreatedBy:      payload.Email,
		}
		if matiere != "" {
			item.Matiere = &matiere
		}
		if unite != "" {
			item.Unite = &unite
		}
		validItems = append(validItems, item)
	}

	// Check the database for hex codes that already exist.
	var hexCodesForDBCheck []string
	for hexCode := range hexCodesInFile {
		hexCodesForDBCheck = append(hexCodesForDBCheck, hexCode)
	}
	existingDuplicates, err := cc.CatalogueRepo.FindDuplicateHexCodes(payload.TenantID, hexCodesForDBCheck)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to check for duplicate hex codes in database"})
	}

	dbDuplicateMap := make(map[string]struct{})
	for _, dup := range existingDuplicates {
		dbDuplicateMap[dup] = struct{}{}
		invalidRows = append(invalidRows, models.CatalogueUploadError{
			ID:        uuid.New(),
			TenantID:  payload.TenantID,
			HexCode:   dup,
			Reason:    "Hex code already exists in the catalogue",
			ErrorType: models.DuplicateErrorType,
			CreatedBy: payload.Email,
		})
	}

	filteredValidItems := make([]models.CatalogueItem, 0, len(validItems))
	for _, item := range validItems {
		if _, isDBDuplicate := dbDuplicateMap[item.HexCode]; !isDBDuplicate {
			filteredValidItems = append(filteredValidItems, item)
		}
	}
	validItems = filteredValidItems

	var downloadLink string
	if len(invalidRows) > 0 {
		if err := cc.CatalogueRepo.LogCatalogueUploadErrors(invalidRows); err != nil {
			config.Logger.Warn("Failed to log rejected upload rows", zap.Error(err))
		}

		headers := []string{"HexCode", "Designation", "Matiere", "Unite", "Reason", "ErrorType", "CreatedBy"}
		filePath, err := utils.GenerateExcel(invalidRows, uuid.New().String(), headers)
		if err != nil {
			config.Logger.Warn("Failed to generate error report", zap.Error(err))
		} else {
			downloadLink = utils.GenerateDownloadLink(filePath)
			message := fmt.Sprintf(
				"Your catalogue upload finished with %d rejected rows. Download the error report here: %s",
				len(invalidRows), downloadLink,
			)
			subject := "Catalogue Upload Errors - " + time.Now().Format("2006-01-02 15:04:05")
			if err := utils.SendEmail(payload.Email, message, subject, ""); err != nil {
				config.Logger.Warn("Failed to send error report email", zap.Error(err))
			}
		}
	}

	if len(validItems) > 0 {
		err = cc.DB.Transaction(func(tx *gorm.DB) error {
			return cc.CatalogueRepo.BulkCreateCatalogueItems(tx, validItems)
		})
		if err != nil {
			config.Logger.Error("Bulk catalogue insert rolled back", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message":            "Failed to insert catalogue items, changes rolled back",
				"successful_count":   0,
				"duplicates_count":   len(existingDuplicates),
				"missing_data_count": len(invalidRows) - len(existingDuplicates),
				"download_link":      downloadLink,
				"error":              err.Error(),
			})
		}

		// Index only after a successful commit; the search index is
		// eventually consistent and never rolls back the upload.
		if cc.BleveRepo != nil {
			if err := cc.BleveRepo.IndexExistingCatalogueItems(validItems); err != nil {
				config.Logger.Warn("Failed to index uploaded catalogue items", zap.Error(err))
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":            "Bulk upload completed",
		"successful_count":   len(validItems),
		"duplicates_count":   len(existingDuplicates),
		"missing_data_count": len(invalidRows) - len(existingDuplicates),
		"download_link":      downloadLink,
	})
}
