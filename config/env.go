package config

import "os"

// GetEnv reads an environment variable. Missing keys return the empty
// string; callers that cannot run without a value must fail loudly.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvOrDefault reads an environment variable with a fallback.
func GetEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetGeminiAPIKey returns the Gemini API key or an empty string when
// AI-assisted mapping suggestions are disabled.
func GetGeminiAPIKey() string {
	return GetEnv("GEMINI_API_KEY")
}
