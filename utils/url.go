package utils

import "os"

// GenerateDownloadLink turns a public file path into an absolute URL
// using the configured base URL.
func GenerateDownloadLink(filePath string) string {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return baseURL + filePath
}
