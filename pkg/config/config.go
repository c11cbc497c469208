package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Log        LogConfig
	OCR        OCRConfig
	Classifier ClassifierConfig
	Gemini     GeminiConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type OCRConfig struct {
	PageLimit int
	Languages string
}

type ClassifierConfig struct {
	// TaxonomyPath points to a JSON taxonomy file. Empty means the built-in
	// taxonomy.
	TaxonomyPath string
}

// GeminiConfig configures the optional review assist. An empty APIKey
// disables it; extraction still runs without a model.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		OCR: OCRConfig{
			PageLimit: getEnvAsInt("OCR_PAGE_LIMIT", 5),
			Languages: getEnv("OCR_LANGUAGES", "por+eng"),
		},
		Classifier: ClassifierConfig{
			TaxonomyPath: getEnv("TAXONOMY_PATH", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
	}

	if cfg.OCR.PageLimit < 1 {
		return nil, errors.New("OCR_PAGE_LIMIT must be at least 1")
	}

	return cfg, nil
}

// AssistEnabled reports whether the review assist is configured.
func (c *GeminiConfig) AssistEnabled() bool {
	return c.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
