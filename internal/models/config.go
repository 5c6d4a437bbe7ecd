package models

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the service configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	OCR     OCRConfig     `yaml:"ocr"`
	AI      AIConfig      `yaml:"ai"`
	Factors FactorsConfig `yaml:"factors"`
	Review  ReviewConfig  `yaml:"review"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// OCRConfig represents OCR-specific configuration.
type OCRConfig struct {
	Engine        string `yaml:"engine"`         // "tesseract", "gemini" or "openai"
	Language      string `yaml:"language"`       // tesseract language pack (default: "spa")
	TesseractPath string `yaml:"tesseract_path"` // binary name or absolute path
	DPI           int    `yaml:"dpi"`            // rasterization DPI for scanned pages

	// MaxOCRPages bounds how many pages of a scanned PDF are OCR-processed.
	// Multi-page scans beyond the limit are skipped, not failed.
	MaxOCRPages int `yaml:"max_ocr_pages"`

	Preprocess bool `yaml:"preprocess"` // ImageMagick cleanup before OCR

	// AIConfidence is the flat extraction confidence reported by the AI
	// vision engines, which expose no per-token scores.
	AIConfidence float64 `yaml:"ai_confidence"`
}

// AIConfig represents AI provider configuration for the vision engines.
type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`
}

// OpenAIConfig for OpenAI/Azure OpenAI.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o"
}

// GeminiConfig for Google Gemini.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// FactorsConfig holds the emission-factor defaults applied when a document
// does not state its own factor. Values are externally configurable so they
// can track published inventories without code changes.
type FactorsConfig struct {
	ElectricityKgPerKWh float64 `yaml:"electricity_kg_per_kwh"` // Spanish grid mix
	NaturalGasKgPerKWh  float64 `yaml:"natural_gas_kg_per_kwh"`
	DieselKgPerL        float64 `yaml:"diesel_kg_per_l"`
	GasolineKgPerL      float64 `yaml:"gasoline_kg_per_l"`

	RoadFreightKgPerTKm float64 `yaml:"road_freight_kg_per_tkm"`
	RailFreightKgPerTKm float64 `yaml:"rail_freight_kg_per_tkm"`
	SeaFreightKgPerTKm  float64 `yaml:"sea_freight_kg_per_tkm"`
	AirFreightKgPerTKm  float64 `yaml:"air_freight_kg_per_tkm"`

	// GasM3ToKWh converts gas volume to energy when the invoice does not
	// state its own PCS conversion factor.
	GasM3ToKWh float64 `yaml:"gas_m3_to_kwh"`

	// GasKgPerM3 is the volumetric gas factor used by the PDF text path,
	// while GasKgPerM3Tabular is the IPCC default applied by the CSV/Excel
	// mapper. The two paths historically diverged; both stay configurable
	// and are never silently unified.
	GasKgPerM3        float64 `yaml:"gas_kg_per_m3"`
	GasKgPerM3Tabular float64 `yaml:"gas_kg_per_m3_tabular"`

	// FreightKgPerKgKm is a placeholder constant for the distance×weight
	// freight estimate.
	// TODO: replace with real tonne-kilometre factors per transport mode.
	FreightKgPerKgKm float64 `yaml:"freight_kg_per_kg_km"`
}

// ReviewConfig holds the downstream routing policy.
type ReviewConfig struct {
	// Threshold is the confidence at or above which records are accepted
	// as processed; anything below is routed to manual review.
	Threshold float64 `yaml:"threshold"`
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		OCR: OCRConfig{
			Engine:        "tesseract",
			Language:      "spa",
			TesseractPath: "tesseract",
			DPI:           300,
			MaxOCRPages:   1,
			Preprocess:    false,
			AIConfidence:  0.85,
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{Model: "gpt-4o"},
			Gemini: GeminiConfig{Model: "gemini-1.5-flash"},
		},
		Factors: FactorsConfig{
			ElectricityKgPerKWh: 0.231,
			NaturalGasKgPerKWh:  0.202,
			DieselKgPerL:        2.680,
			GasolineKgPerL:      2.310,
			RoadFreightKgPerTKm: 0.062,
			RailFreightKgPerTKm: 0.018,
			SeaFreightKgPerTKm:  0.010,
			AirFreightKgPerTKm:  0.500,
			GasM3ToKWh:          11.63,
			GasKgPerM3:          2.349, // 0.202 kg/kWh x 11.63 kWh/m3
			GasKgPerM3Tabular:   2.016, // IPCC 2006 volumetric factor
			FreightKgPerKgKm:    0.00012,
		},
		Review: ReviewConfig{
			Threshold: DefaultReviewThreshold,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and applies
// environment-variable overrides. An empty path yields the defaults plus
// overrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables if present
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		config.OCR.Engine = engine
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if pages := os.Getenv("MAX_OCR_PAGES"); pages != "" {
		if n, err := strconv.Atoi(pages); err == nil {
			config.OCR.MaxOCRPages = n
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	checks := []struct {
		bad bool
		msg string
	}{
		{c.OCR.Engine != "tesseract" && c.OCR.Engine != "gemini" && c.OCR.Engine != "openai",
			fmt.Sprintf("unknown ocr engine %q", c.OCR.Engine)},
		{c.OCR.MaxOCRPages < 1, "ocr.max_ocr_pages must be at least 1"},
		{c.OCR.DPI < 72, "ocr.dpi must be at least 72"},
		{c.OCR.AIConfidence < 0 || c.OCR.AIConfidence > 1, "ocr.ai_confidence must be within [0,1]"},
		{c.Review.Threshold < 0 || c.Review.Threshold > 1, "review.threshold must be within [0,1]"},
		{c.Factors.ElectricityKgPerKWh <= 0, "factors.electricity_kg_per_kwh must be positive"},
		{c.Factors.NaturalGasKgPerKWh <= 0, "factors.natural_gas_kg_per_kwh must be positive"},
		{c.Factors.DieselKgPerL <= 0, "factors.diesel_kg_per_l must be positive"},
		{c.Factors.GasolineKgPerL <= 0, "factors.gasoline_kg_per_l must be positive"},
		{c.Factors.GasM3ToKWh <= 0, "factors.gas_m3_to_kwh must be positive"},
		{c.Factors.GasKgPerM3 <= 0, "factors.gas_kg_per_m3 must be positive"},
		{c.Factors.GasKgPerM3Tabular <= 0, "factors.gas_kg_per_m3_tabular must be positive"},
	}

	for _, check := range checks {
		if check.bad {
			return fmt.Errorf("invalid config: %s", check.msg)
		}
	}
	return nil
}
