package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Template TemplateConfig
	ComPDF   ComPDFConfig
	Render   RenderConfig
	Cleanup  CleanupConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MetricsEnabled     bool
}

type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// TemplateConfig locates the fixed spreadsheet template and its layout
// coordinates. The coordinates are a contract with the template file,
// not logic: header labels are matched at HeaderRow, room data starts
// at DataStartRow, and the EA/DO/OD totals live in TotalsRow at the
// given columns.
type TemplateConfig struct {
	Path         string
	HeaderRow    int
	DataStartRow int
	TotalsRow    int
	EATotalCol   int
	DOTotalCol   int
	ODTotalCol   int
}

// ComPDFConfig carries the office-to-pdf conversion API credentials.
// Injected at construction time; nothing reads these globally.
type ComPDFConfig struct {
	BaseURL   string
	PublicKey string
}

type RenderConfig struct {
	Enabled bool
	DPI     int
}

type CleanupConfig struct {
	Schedule     string
	RetentionMin int
}

// DefaultTemplateConfig returns the stock house-status sheet layout.
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		Path:         "template.xlsx",
		HeaderRow:    4,
		DataStartRow: 5,
		TotalsRow:    38,
		EATotalCol:   7,
		DOTotalCol:   9,
		ODTotalCol:   11,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvAsInt("PORT", 8000),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			MetricsEnabled:     getEnvAsBool("METRICS_ENABLED", true),
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "./temp_uploads"),
			MaxSizeBytes: int64(getEnvAsInt("UPLOAD_MAX_SIZE_MB", 16)) << 20,
		},
		Template: TemplateConfig{
			Path:         getEnv("TEMPLATE_PATH", "template.xlsx"),
			HeaderRow:    getEnvAsInt("TEMPLATE_HEADER_ROW", 4),
			DataStartRow: getEnvAsInt("TEMPLATE_DATA_START_ROW", 5),
			TotalsRow:    getEnvAsInt("TEMPLATE_TOTALS_ROW", 38),
			EATotalCol:   getEnvAsInt("TEMPLATE_EA_TOTAL_COL", 7),
			DOTotalCol:   getEnvAsInt("TEMPLATE_DO_TOTAL_COL", 9),
			ODTotalCol:   getEnvAsInt("TEMPLATE_OD_TOTAL_COL", 11),
		},
		ComPDF: ComPDFConfig{
			BaseURL:   getEnv("COMPDF_BASE_URL", "https://api-server.compdf.com/server/v1"),
			PublicKey: getEnv("COMPDF_PUBLIC_KEY", ""),
		},
		Render: RenderConfig{
			Enabled: getEnvAsBool("RENDER_ENABLED", true),
			DPI:     getEnvAsInt("RENDER_DPI", 200),
		},
		Cleanup: CleanupConfig{
			Schedule:     getEnv("CLEANUP_SCHEDULE", "0 * * * *"),
			RetentionMin: getEnvAsInt("CLEANUP_RETENTION_MINUTES", 240),
		},
	}

	if cfg.Render.Enabled && cfg.ComPDF.PublicKey == "" {
		return nil, errors.New("COMPDF_PUBLIC_KEY is required when rendering is enabled")
	}

	return cfg, nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
