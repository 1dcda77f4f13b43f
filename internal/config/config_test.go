package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("GOOGLE_SHEET_NUTRITION_ID", "")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 20 * * 5", cfg.Reporting.CronSchedule)
	assert.Equal(t, 1.10, cfg.Finance.TargetMultiplier)
	assert.Equal(t, 0.90, cfg.Finance.WorstCaseMultiplier)
	assert.Equal(t, 2.5, cfg.Finance.DefaultADG)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"WHATSAPP_TOKEN=tok\n"+
			"WHATSAPP_PHONE_NUMBER_ID=123\n"+
			"META_VERIFY_TOKEN=verify\n"+
			"LABOR_COST_PER_DAY=0.45\n"+
			"ANNUAL_INTEREST_RATE=0.07\n"), 0o600))

	for _, k := range []string{"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "LABOR_COST_PER_DAY", "ANNUAL_INTEREST_RATE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.WhatsApp.Enabled())
	assert.Equal(t, "123", cfg.WhatsApp.PhoneNumberID)
	assert.Equal(t, 0.45, cfg.Finance.LaborCostPerDay)
	assert.Equal(t, 0.07, cfg.Finance.AnnualInterestRate)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("DEFAULT_ADG", "fast")
	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_ADG")
}

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: "8080"},
		MongoDB:   MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "ranch"},
		Reporting: ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
		Finance: FinanceConfig{
			TargetMultiplier: 1.1, BestCaseMultiplier: 1.2, WorstCaseMultiplier: 0.9,
			DefaultADG: 2.5, TargetADG: 2.5,
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"no mongo uri", func(c *Config) { c.MongoDB.URI = "" }, "MONGODB_URI"},
		{"whatsapp without phone id", func(c *Config) { c.WhatsApp.AccessToken = "tok" }, "WHATSAPP_PHONE_NUMBER_ID"},
		{"sheets without credentials", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"zero multiplier", func(c *Config) { c.Finance.BestCaseMultiplier = 0 }, "multipliers"},
		{"negative assumption", func(c *Config) { c.Finance.LaborCostPerDay = -1 }, "negative"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
