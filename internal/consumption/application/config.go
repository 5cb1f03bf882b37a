package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"energy-consumption/internal/consumption/domain"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Export formats written by the process stage.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// RawConfig locates the publisher workbook.
type RawConfig struct {
	FilePath string `yaml:"file_path"`
	BlobKey  string `yaml:"blob_key"`
	Sheet    string `yaml:"sheet"`
}

// SourceConfig locates the publisher page.
type SourceConfig struct {
	PageURL string `yaml:"page_url"`
	BaseURL string `yaml:"base_url"`
}

// StoreConfig selects where datasets live.
type StoreConfig struct {
	Backend         string `yaml:"backend"`
	Root            string `yaml:"root"`
	Bucket          string `yaml:"bucket"`
	Folder          string `yaml:"folder"`
	CredentialsJSON string `yaml:"credentials_json"`
}

// NotifyConfig configures the publish webhook.
type NotifyConfig struct {
	WebhookURL    string `yaml:"webhook_url"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// MetricsConfig configures the Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// Config defines pipeline configuration.
type Config struct {
	Stage         string        `yaml:"stage"`
	PeriodMonth   int           `yaml:"period_month"`
	PeriodYear    int           `yaml:"period_year"`
	ReferenceYear int           `yaml:"reference_year"`
	Raw           RawConfig     `yaml:"raw"`
	Source        SourceConfig  `yaml:"source"`
	Store         StoreConfig   `yaml:"store"`
	DatabaseURL   string        `yaml:"database_url"`
	OutputDir     string        `yaml:"output_dir"`
	ExportFormats []string      `yaml:"export_formats"`
	Notify        NotifyConfig  `yaml:"notify"`
	Metrics       MetricsConfig `yaml:"metrics"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Stage: string(domain.StageUpload),
		Raw: RawConfig{
			FilePath: filepath.FromSlash("data/raw/consumo.xls"),
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Root:    "data",
			Folder:  "energy_data",
		},
		OutputDir:     filepath.FromSlash("data/processed"),
		ExportFormats: []string{FormatCSV},
		Metrics: MetricsConfig{
			Job: "energy_consumption_pipeline",
		},
	}
}

// LoadConfig loads .env, the optional YAML file named by PIPELINE_CONFIG, then environment overrides.
func LoadConfig() (Config, error) {
	if err := loadDotenv(".env"); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if path := os.Getenv("PIPELINE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Stage = getenvDefault("PIPELINE_STAGE", cfg.Stage)
	cfg.PeriodMonth = getenvIntDefault("PERIOD_MONTH", cfg.PeriodMonth)
	cfg.PeriodYear = getenvIntDefault("PERIOD_YEAR", cfg.PeriodYear)
	cfg.ReferenceYear = getenvIntDefault("REFERENCE_YEAR", cfg.ReferenceYear)
	cfg.Raw.FilePath = getenvDefault("RAW_FILE_PATH", cfg.Raw.FilePath)
	cfg.Raw.BlobKey = getenvDefault("RAW_BLOB_KEY", cfg.Raw.BlobKey)
	cfg.Raw.Sheet = getenvDefault("RAW_SHEET", cfg.Raw.Sheet)
	cfg.Source.PageURL = getenvDefault("SOURCE_PAGE_URL", cfg.Source.PageURL)
	cfg.Source.BaseURL = getenvDefault("SOURCE_BASE_URL", cfg.Source.BaseURL)
	cfg.Store.Backend = getenvDefault("STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Root = getenvDefault("STORE_ROOT", cfg.Store.Root)
	cfg.Store.Bucket = getenvDefault("STORE_BUCKET", cfg.Store.Bucket)
	cfg.Store.Folder = getenvDefault("STORE_FOLDER", cfg.Store.Folder)
	cfg.Store.CredentialsJSON = getenvDefault("STORE_CREDENTIALS_JSON", cfg.Store.CredentialsJSON)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.OutputDir = getenvDefault("OUTPUT_DIR", cfg.OutputDir)
	if formats := splitCSV(os.Getenv("EXPORT_FORMATS")); len(formats) > 0 {
		cfg.ExportFormats = formats
	}
	cfg.Notify.WebhookURL = getenvDefault("NOTIFY_WEBHOOK_URL", cfg.Notify.WebhookURL)
	cfg.Notify.WebhookSecret = getenvDefault("NOTIFY_WEBHOOK_SECRET", cfg.Notify.WebhookSecret)
	cfg.Metrics.PushgatewayURL = getenvDefault("PUSHGATEWAY_URL", cfg.Metrics.PushgatewayURL)
	cfg.Metrics.Job = getenvDefault("METRICS_JOB", cfg.Metrics.Job)

	cfg.Stage = strings.ToLower(strings.TrimSpace(cfg.Stage))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	for i, format := range cfg.ExportFormats {
		cfg.ExportFormats[i] = strings.ToLower(strings.TrimSpace(format))
	}
	return cfg, cfg.Validate()
}

// Validate checks the options the selected stage and backend depend on.
func (c Config) Validate() error {
	if !domain.Stage(c.Stage).IsValid() {
		return fmt.Errorf("config: unknown stage %q", c.Stage)
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Root == "" {
			return errors.New("config: STORE_ROOT required for file backend")
		}
	case BackendS3:
		if c.Store.Bucket == "" {
			return errors.New("config: STORE_BUCKET required for s3 backend")
		}
		if c.Store.CredentialsJSON == "" {
			return errors.New("config: STORE_CREDENTIALS_JSON required for s3 backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL required for postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	for _, format := range c.ExportFormats {
		switch format {
		case FormatCSV, FormatXLSX, FormatPDF:
		default:
			return fmt.Errorf("config: unknown export format %q", format)
		}
	}
	if c.PeriodMonth != 0 || c.PeriodYear != 0 {
		if _, err := domain.NewPeriod(c.PeriodMonth, c.PeriodYear); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.ReferenceYear < 0 {
		return fmt.Errorf("config: invalid reference year %d", c.ReferenceYear)
	}
	return nil
}

// Period returns the configured period, falling back to the month containing now.
func (c Config) Period(now time.Time) (domain.Period, error) {
	if c.PeriodMonth == 0 && c.PeriodYear == 0 {
		return domain.PeriodOf(now), nil
	}
	return domain.NewPeriod(c.PeriodMonth, c.PeriodYear)
}

// ReferenceYearFor returns the year seeding year assignment for period.
func (c Config) ReferenceYearFor(period domain.Period) int {
	if c.ReferenceYear > 0 {
		return c.ReferenceYear
	}
	return period.Year
}

func loadDotenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
