package config

import "os"

// GeminiAPIKey returns the insight API key from the GEMINI_API_KEY env
// var. Secrets stay out of the TOML file. An empty key is valid: insight
// generation then always falls back to the fixed reflection.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// Path returns the config file path from NEBULA_CONFIG, or the default.
func Path() string {
	if p := os.Getenv("NEBULA_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}
