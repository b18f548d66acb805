package common

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	OCR      OCRConfig
	Extract  ExtractConfig
	Pipeline PipelineConfig
	Store    StoreConfig
	Export   ExportConfig
}

// OCRConfig holds OCR backend configuration
type OCRConfig struct {
	TesseractEnabled bool
	PaddleEnabled    bool
	Primary          string // engine tried first: "tesseract" | "paddleocr"
	Tesseract        string // binary name or absolute path; if empty -> "tesseract"
	Paddle           string // binary name or absolute path; if empty -> "paddleocr"
	Pdftotext        string
	Pdftoppm         string

	Languages string // tesseract language set, e.g. "spa+eng"
	DPI       int    // rasterization DPI for scanned PDFs
	PSM       int    // e.g., 6 is good for uniform block of text
	OEM       int    // 1 = LSTM; leave 0 to use default

	TessdataDir string
	CallTimeout time.Duration // per-engine invocation budget

	// Recognition below this mean confidence triggers fallback to the
	// secondary engine.
	ConfidenceFloor float32
}

// ExtractConfig holds field extraction and validation thresholds
type ExtractConfig struct {
	MinConfidence float32 // fields below this count as missing
	MinAmount     int64   // CLP, inclusive
	MaxAmount     int64   // CLP, inclusive
	MinYear       int     // earliest plausible boleta year

	// ExtraPrograms extends the built-in program code table (YAML overlay).
	ExtraPrograms []string
}

// PipelineConfig holds batch processing configuration
type PipelineConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// StoreConfig holds the local results database configuration
type StoreConfig struct {
	DBPath string
}

// ExportConfig holds spreadsheet export configuration
type ExportConfig struct {
	OutputPath string
}

// fileOverlay is the optional YAML configuration file shape (BOLETAS_CONFIG).
type fileOverlay struct {
	Languages     string   `yaml:"languages"`
	MinConfidence *float32 `yaml:"min_confidence"`
	MinAmount     *int64   `yaml:"min_amount"`
	MaxAmount     *int64   `yaml:"max_amount"`
	MinYear       *int     `yaml:"min_year"`
	ExtraPrograms []string `yaml:"extra_programs"`
}

// LoadConfig loads configuration from environment variables, then applies the
// optional YAML overlay file named by BOLETAS_CONFIG.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		OCR: OCRConfig{
			TesseractEnabled: getEnvAsBool("OCR_TESSERACT", true),
			PaddleEnabled:    getEnvAsBool("OCR_PADDLE", false),
			Primary:          getEnv("OCR_PRIMARY", "tesseract"),
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			Paddle:           getEnv("PADDLE_BIN", "paddleocr"),
			Pdftotext:        getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:         getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Languages:        getEnv("OCR_LANGUAGES", "spa+eng"),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			PSM:              getEnvAsInt("OCR_PSM", 0),
			OEM:              getEnvAsInt("OCR_OEM", 0),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			CallTimeout:      getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			ConfidenceFloor:  getEnvAsFloat32("OCR_CONFIDENCE_FLOOR", 0.30),
		},
		Extract: ExtractConfig{
			MinConfidence: getEnvAsFloat32("MIN_CONFIDENCE", 0.5),
			MinAmount:     getEnvAsInt64("MIN_AMOUNT", 1000),
			MaxAmount:     getEnvAsInt64("MAX_AMOUNT", 5000000),
			MinYear:       getEnvAsInt("MIN_YEAR", 2015),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvAsInt("WORKERS", runtime.NumCPU()),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
		Store: StoreConfig{
			DBPath: getEnv("DB_PATH", "boletas.db"),
		},
		Export: ExportConfig{
			OutputPath: getEnv("EXPORT_PATH", "boletas.xlsx"),
		},
	}

	if path := os.Getenv("BOLETAS_CONFIG"); path != "" {
		if err := cfg.applyOverlay(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) applyOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("read config file %q", path), err)
	}
	var o fileOverlay
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("parse config file %q", path), err)
	}
	if o.Languages != "" {
		c.OCR.Languages = o.Languages
	}
	if o.MinConfidence != nil {
		c.Extract.MinConfidence = *o.MinConfidence
	}
	if o.MinAmount != nil {
		c.Extract.MinAmount = *o.MinAmount
	}
	if o.MaxAmount != nil {
		c.Extract.MaxAmount = *o.MaxAmount
	}
	if o.MinYear != nil {
		c.Extract.MinYear = *o.MinYear
	}
	c.Extract.ExtraPrograms = append(c.Extract.ExtraPrograms, o.ExtraPrograms...)
	return nil
}

// Validate rejects configurations the engine must not run with.
func (c *Config) Validate() error {
	if c.Extract.MinAmount < 0 {
		return NewAppError("CONFIG_ERROR", "MIN_AMOUNT must be >= 0", ErrInvalidConfig)
	}
	if c.Extract.MaxAmount <= c.Extract.MinAmount {
		return NewAppError("CONFIG_ERROR", "MAX_AMOUNT must be greater than MIN_AMOUNT", ErrInvalidConfig)
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "MIN_CONFIDENCE must be within [0,1]", ErrInvalidConfig)
	}
	if c.Extract.MinYear < 1900 {
		return NewAppError("CONFIG_ERROR", "MIN_YEAR must be >= 1900", ErrInvalidConfig)
	}
	if c.OCR.Primary != "tesseract" && c.OCR.Primary != "paddleocr" {
		return NewAppError("CONFIG_ERROR", "OCR_PRIMARY must be tesseract or paddleocr", ErrInvalidConfig)
	}
	if c.OCR.CallTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be positive", ErrInvalidConfig)
	}
	return nil
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
		// plain number of seconds is also accepted
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
