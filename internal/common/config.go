package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	OCR       OCRConfig
	Checklist ChecklistConfig
	Batch     BatchConfig
}

// DatabaseConfig holds audit store configuration. An empty DSN disables persistence.
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds page scanner configuration
type OCRConfig struct {
	Pdftoppm         string
	Tesseract        string
	TesseractLang    string
	TessdataDir      string
	DPI              int
	MaxPages         int
	PreferTextLayer  bool
	ArtifactCacheDir string
}

// ChecklistConfig holds catalog and evaluation configuration
type ChecklistConfig struct {
	CatalogFile   string
	HolidaysFile  string
	MinConfidence float64
	MinTextLength int
}

// BatchConfig holds worker pool configuration
type BatchConfig struct {
	Workers     int
	FileTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		OCR: OCRConfig{
			Pdftoppm:         getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:        getEnv("TESSERACT", "tesseract"),
			TesseractLang:    getEnv("TESSERACT_LANG", "spa"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			MaxPages:         getEnvAsInt("OCR_MAX_PAGES", 0),
			PreferTextLayer:  getEnvAsBool("OCR_PREFER_TEXT_LAYER", false),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Checklist: ChecklistConfig{
			CatalogFile:   getEnv("CATALOG_FILE", ""),
			HolidaysFile:  getEnv("HOLIDAYS_FILE", ""),
			MinConfidence: getEnvAsFloat64("MIN_OCR_CONFIDENCE", 30),
			MinTextLength: getEnvAsInt("MIN_TEXT_LENGTH", 40),
		},
		Batch: BatchConfig{
			Workers:     getEnvAsInt("WORKERS", 4),
			FileTimeout: getEnvAsDuration("FILE_TIMEOUT", 10*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// IsPostgresDSN reports whether dsn targets postgres rather than sqlite.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("WORKERS", c.Batch.Workers, Positive).
		Field("OCR_DPI", c.OCR.DPI, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	if c.Checklist.MinConfidence < 0 || c.Checklist.MinConfidence > 100 {
		return NewAppError("CONFIG_ERROR", "MIN_OCR_CONFIDENCE must be within 0..100", ErrInvalidInput)
	}
	if c.Checklist.MinTextLength < 0 {
		return NewAppError("CONFIG_ERROR", "MIN_TEXT_LENGTH must not be negative", ErrInvalidInput)
	}
	dsn := c.Database.DSN
	if dsn != "" && strings.Contains(dsn, "://") && !IsPostgresDSN(dsn) && !strings.HasPrefix(dsn, "file:") {
		return NewAppError("CONFIG_ERROR", "DB_URL must be a postgres URL or a sqlite path", ErrInvalidInput)
	}
	return nil
}
