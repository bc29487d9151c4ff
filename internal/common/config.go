package common

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/energy-bills/constants"
)

// Config holds all application configuration
type Config struct {
	Input       InputConfig       `yaml:"input" json:"input"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	TextExtract TextExtractConfig `yaml:"text_extract" json:"text_extract"`
	Archive     ArchiveConfig     `yaml:"archive" json:"archive"`
	Metrics     MetricsConfig     `yaml:"metrics" json:"metrics"`
	Log         LogConfig         `yaml:"log" json:"log"`
}

// InputConfig selects the documents of a batch run
type InputConfig struct {
	Folder    string   `yaml:"folder" json:"folder"`
	Extension string   `yaml:"extension" json:"extension"`
	Excluded  []string `yaml:"excluded" json:"excluded"`
}

// OutputConfig holds report destinations
type OutputConfig struct {
	SummaryCSV string `yaml:"summary_csv" json:"summary_csv"`
	RatesCSV   string `yaml:"rates_csv" json:"rates_csv"`
	XLSX       string `yaml:"xlsx" json:"xlsx"` // optional workbook with both reports
}

// TextExtractConfig holds pdftotext/tesseract settings
type TextExtractConfig struct {
	Pdftotext     string `yaml:"pdftotext" json:"pdftotext"`
	Pdftoppm      string `yaml:"pdftoppm" json:"pdftoppm"`
	Tesseract     string `yaml:"tesseract" json:"tesseract"`
	TesseractLang string `yaml:"tesseract_lang" json:"tesseract_lang"`
	TessdataDir   string `yaml:"tessdata_dir" json:"tessdata_dir"`
	Layout        bool   `yaml:"layout" json:"layout"`
	OCRFallback   bool   `yaml:"ocr_fallback" json:"ocr_fallback"`
	DPI           int    `yaml:"dpi" json:"dpi"`
	MinTextChars  int    `yaml:"min_text_chars" json:"min_text_chars"`

	CommandTimeout time.Duration `yaml:"command_timeout" json:"-"`
}

// ArchiveConfig holds the optional run archive database settings
type ArchiveConfig struct {
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxConns        int32         `yaml:"max_conns" json:"max_conns"`
	MinConns        int32         `yaml:"min_conns" json:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" json:"-"`
	DialTimeout     time.Duration `yaml:"dial_timeout" json:"-"`
}

// MetricsConfig holds the optional node-exporter textfile destination
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// LoadConfig loads configuration from environment variables, then overlays the
// YAML file named by BILLS_CONFIG if set.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Input: InputConfig{
			Folder:    getEnv("BILLS_FOLDER", constants.DefaultFolder),
			Extension: getEnv("BILLS_EXTENSION", constants.DocumentExt),
			Excluded:  getEnvAsList("BILLS_EXCLUDED", constants.ExcludedDocuments),
		},
		Output: OutputConfig{
			SummaryCSV: getEnv("BILLS_SUMMARY_CSV", constants.DefaultSummaryCSV),
			RatesCSV:   getEnv("BILLS_RATES_CSV", constants.DefaultRatesCSV),
			XLSX:       getEnv("BILLS_XLSX", ""),
		},
		TextExtract: TextExtractConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "fra"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Layout:        getEnvAsBool("PDFTOTEXT_LAYOUT", true),
			OCRFallback:   getEnvAsBool("OCR_FALLBACK", false),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MinTextChars:  getEnvAsInt("OCR_MIN_TEXT_CHARS", 40),

			CommandTimeout: getEnvAsDuration("TEXTEXTRACT_TIMEOUT", 2*time.Minute),
		},
		Archive: ArchiveConfig{
			DSN:             getEnv("ARCHIVE_DB_URL", ""),
			MaxConns:        getEnvAsInt32("ARCHIVE_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("ARCHIVE_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("ARCHIVE_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("ARCHIVE_DIAL_TIMEOUT", 3*time.Second),
		},
		Metrics: MetricsConfig{
			TextfilePath: getEnv("METRICS_TEXTFILE", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if path := os.Getenv("BILLS_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// overlayFile validates a YAML config file against ConfigSchema and merges it into c.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "read config file", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return NewAppError("CONFIG_ERROR", "parse config file", err)
	}
	if doc == nil {
		return nil
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "re-encode config file", err)
	}
	if err := ValidateAgainstSchema(ConfigSchema(), asJSON); err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("config file %s", path), fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return NewAppError("CONFIG_ERROR", "decode config file", err)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
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

// getEnvAsList splits a comma-separated value; blanks are dropped.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		out := make([]string, len(defaultValue))
		copy(out, defaultValue)
		return out
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("input.folder", c.Input.Folder, Required)
	v.Field("input.extension", c.Input.Extension, Required, DottedExtension)
	v.Field("output.summary_csv", c.Output.SummaryCSV, Required)
	v.Field("output.rates_csv", c.Output.RatesCSV, Required)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
