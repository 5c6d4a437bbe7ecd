package models_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := models.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, 1, cfg.OCR.MaxOCRPages)
	assert.InDelta(t, 0.231, cfg.Factors.ElectricityKgPerKWh, 1e-9)
	assert.InDelta(t, 11.63, cfg.Factors.GasM3ToKWh, 1e-9)
	assert.InDelta(t, 0.6, cfg.Review.Threshold, 1e-9)

	// The two gas-per-m3 defaults are intentionally different: the PDF
	// path derives its value from the kWh factor, the tabular path uses
	// the IPCC volumetric constant.
	assert.InDelta(t, 2.349, cfg.Factors.GasKgPerM3, 1e-9)
	assert.InDelta(t, 2.016, cfg.Factors.GasKgPerM3Tabular, 1e-9)
	assert.NotEqual(t, cfg.Factors.GasKgPerM3, cfg.Factors.GasKgPerM3Tabular)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ocr:
  engine: tesseract
  language: spa
  max_ocr_pages: 3
factors:
  electricity_kg_per_kwh: 0.19
review:
  threshold: 0.7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := models.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.OCR.MaxOCRPages)
	assert.InDelta(t, 0.19, cfg.Factors.ElectricityKgPerKWh, 1e-9)
	assert.InDelta(t, 0.7, cfg.Review.Threshold, 1e-9)

	// Untouched keys keep their defaults.
	assert.InDelta(t, 2.680, cfg.Factors.DieselKgPerL, 1e-9)
	assert.Equal(t, 300, cfg.OCR.DPI)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OCR_ENGINE", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_OCR_PAGES", "5")

	cfg, err := models.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.OCR.Engine)
	assert.Equal(t, "sk-test", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, 5, cfg.OCR.MaxOCRPages)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := models.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Config)
	}{
		{"unknown engine", func(c *models.Config) { c.OCR.Engine = "abbyy" }},
		{"zero ocr pages", func(c *models.Config) { c.OCR.MaxOCRPages = 0 }},
		{"dpi too low", func(c *models.Config) { c.OCR.DPI = 50 }},
		{"threshold above one", func(c *models.Config) { c.Review.Threshold = 1.5 }},
		{"negative electricity factor", func(c *models.Config) { c.Factors.ElectricityKgPerKWh = -1 }},
		{"zero gas conversion", func(c *models.Config) { c.Factors.GasM3ToKWh = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
