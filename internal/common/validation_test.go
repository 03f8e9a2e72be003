package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorCollectsAllFailures(t *testing.T) {
	v := NewValidator().
		Field("dir", "", Required).
		Field("category", "other", OneOf("misional", "no_misional")).
		Field("workers", 0, Positive)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)

	err := v.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Message, "must be one of: misional, no_misional")
}

func TestValidatorPasses(t *testing.T) {
	v := NewValidator().
		Field("dir", "/tmp/bundle", Required).
		Field("category", "misional", OneOf("misional", "no_misional")).
		Field("workers", 4, Positive)

	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.Empty(t, v.ErrorMessage())
}

func TestConfigValidate(t *testing.T) {
	t.Setenv("WORKERS", "")
	t.Setenv("DB_URL", "")
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.Batch.Workers = 0
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "WORKERS")

	cfg = LoadConfig()
	cfg.OCR.DPI = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	cfg = LoadConfig()
	cfg.Database.DSN = "mysql://root@localhost/db"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	cfg.Database.DSN = "postgres://u:p@localhost:5432/audit"
	assert.NoError(t, cfg.Validate())

	cfg.Database.DSN = "audit.db"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WORKERS", "8")
	t.Setenv("MIN_OCR_CONFIDENCE", "45.5")
	t.Setenv("OCR_PREFER_TEXT_LAYER", "true")
	t.Setenv("FILE_TIMEOUT", "90s")

	cfg := LoadConfig()
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.InDelta(t, 45.5, cfg.Checklist.MinConfidence, 0.001)
	assert.True(t, cfg.OCR.PreferTextLayer)
	assert.Equal(t, "spa", cfg.OCR.TesseractLang)
	assert.Equal(t, 40, cfg.Checklist.MinTextLength)
	assert.Equal(t, "1m30s", cfg.Batch.FileTimeout.String())
}
