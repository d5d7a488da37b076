package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"dpgf-quoting-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateExcel creates an Excel file from a slice of structs. Each
// header must name an exported struct field.
func GenerateExcel(data interface{}, taskName string, headers []string) (string, error) {
	dirPath := "./public/files"
	if err := EnsureDirectoryExists(dirPath + "/anchor"); err != nil {
		return "", fmt.Errorf("failed to ensure directory exists: %v", err)
	}

	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	dataSlice := reflect.ValueOf(data)
	if dataSlice.Kind() != reflect.Slice {
		return "", fmt.Errorf("expected data to be a slice")
	}

	for row := 0; row < dataSlice.Len(); row++ {
		item := dataSlice.Index(row).Interface()

		for col, header := range headers {
			field := reflect.ValueOf(item).FieldByName(header)
			if !field.IsValid() {
				config.Logger.Warn("Excel export: field not found on row struct",
					zap.String("field", header),
					zap.Int("row", row+2),
				)
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetName, cell, fmt.Sprintf("%v", field.Interface())); err != nil {
				return "", fmt.Errorf("error setting value for field %s on row %d: %v", header, row+2, err)
			}
		}
	}

	fileName := fmt.Sprintf("%s_%s.xlsx", taskName, time.Now().Format("2006-01-02_15-04-05"))
	filePath := fmt.Sprintf("/public/files/%s", fileName)
	relativeFilePath := fmt.Sprintf("%s/%s", dirPath, fileName)

	if err := f.SaveAs(relativeFilePath); err != nil {
		config.Logger.Error("Failed to save generated Excel file",
			zap.String("path", relativeFilePath),
			zap.Error(err),
		)
		return "", err
	}

	config.Logger.Info("Generated Excel file",
		zap.String("path", relativeFilePath),
		zap.Int("row_count", dataSlice.Len()),
	)

	return filePath, nil
}
