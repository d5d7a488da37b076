package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dpgf-quoting-backend/config"

	"go.uber.org/zap"
)

// Generated artifacts (error reports, quote PDFs, temp uploads) are
// served for a limited time and then swept.
var generatedFileDirs = []string{
	"./public/files",
	"./public/quotes",
	"./tmp",
}

// CleanupExpiredFile removes the file if it is older than the TTL.
func CleanupExpiredFile(filePath string, ttl time.Duration) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("error checking file: %v", err)
	}

	if time.Since(info.ModTime()) > ttl {
		if err := os.Remove(filePath); err != nil {
			return fmt.Errorf("error deleting expired file: %v", err)
		}
		config.Logger.Debug("Removed expired generated file", zap.String("path", filePath))
	}
	return nil
}

// CleanupGeneratedFiles sweeps all generated-file directories, removing
// entries older than the TTL. Missing directories are skipped.
func CleanupGeneratedFiles(ttl time.Duration) error {
	for _, dir := range generatedFileDirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("error reading directory %s: %v", dir, err)
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			if err := CleanupExpiredFile(filepath.Join(dir, file.Name()), ttl); err != nil {
				config.Logger.Warn("Failed to clean up generated file",
					zap.String("dir", dir),
					zap.String("file", file.Name()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}
