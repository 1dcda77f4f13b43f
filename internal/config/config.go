package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Finance   FinanceConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// Messaging is disabled when AccessToken is empty.
type WhatsAppConfig struct {
	AccessToken     string
	PhoneNumberID   string
	VerifyToken     string
	BaseURL         string
	APIVersion      string
	ReportRecipient string
}

// Enabled reports whether WhatsApp messaging is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the nutritionist sheet export is configured.
func (c SheetsConfig) Enabled() bool { return c.SpreadsheetID != "" }

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// FinanceConfig holds break-even multipliers, ADG defaults and the cost
// assumptions applied to every animal.
type FinanceConfig struct {
	TargetMultiplier    float64
	BestCaseMultiplier  float64
	WorstCaseMultiplier float64
	DefaultADG          float64
	TargetADG           float64

	TransportationCost float64
	CommissionFees     float64
	LaborCostPerDay    float64
	FacilityCostPerDay float64
	AnnualInterestRate float64
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "ranch"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:     os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipient: os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_NUTRITION_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Chicago"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	var err error
	f := &cfg.Finance
	for _, p := range []struct {
		key      string
		fallback float64
		dst      *float64
	}{
		{"BREAKEVEN_TARGET_MULTIPLIER", 1.10, &f.TargetMultiplier},
		{"BREAKEVEN_BEST_MULTIPLIER", 1.20, &f.BestCaseMultiplier},
		{"BREAKEVEN_WORST_MULTIPLIER", 0.90, &f.WorstCaseMultiplier},
		{"DEFAULT_ADG", 2.5, &f.DefaultADG},
		{"TARGET_ADG", 2.5, &f.TargetADG},
		{"TRANSPORTATION_COST", 0, &f.TransportationCost},
		{"COMMISSION_FEES", 0, &f.CommissionFees},
		{"LABOR_COST_PER_DAY", 0, &f.LaborCostPerDay},
		{"FACILITY_COST_PER_DAY", 0, &f.FacilityCostPerDay},
		{"ANNUAL_INTEREST_RATE", 0, &f.AnnualInterestRate},
	} {
		if *p.dst, err = getenvFloat(p.key, p.fallback); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided with GOOGLE_SHEET_NUTRITION_ID")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	f := c.Finance
	if f.TargetMultiplier <= 0 || f.BestCaseMultiplier <= 0 || f.WorstCaseMultiplier <= 0 {
		return errors.New("break-even multipliers must be positive")
	}
	if f.DefaultADG <= 0 || f.TargetADG <= 0 {
		return errors.New("DEFAULT_ADG and TARGET_ADG must be positive")
	}
	if f.TransportationCost < 0 || f.CommissionFees < 0 || f.LaborCostPerDay < 0 || f.FacilityCostPerDay < 0 || f.AnnualInterestRate < 0 {
		return errors.New("cost assumptions must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}
