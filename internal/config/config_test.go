package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "LOG_LEVEL", "STORAGE_DRIVER", "SQLITE_DSN", "DRAFT_DIR", "TIMEZONE", "REPORT_CRON_SCHEDULE",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "WHATSAPP_OPERATOR_ID",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "ANTHROPIC_API_KEY",
	"MONGODB_URI", "MONGODB_DB_NAME",
}

// clearEnv blanks every managed key for the test and removes it entirely so
// LookupEnv based defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnvFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "./data/drafts", cfg.Storage.DraftDir)
	assert.Equal(t, "Asia/Kolkata", cfg.Reporting.Timezone)
	assert.Equal(t, "0 21 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "APP_PORT=9090\nSTORAGE_DRIVER=memory\nDRAFT_DIR=\nWHATSAPP_TOKEN=tok\nWHATSAPP_PHONE_NUMBER_ID=123\nMETA_VERIFY_TOKEN=verify\nTIMEZONE=UTC\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.DraftDir)
	assert.True(t, cfg.WhatsApp.Enabled())

	loc, err := cfg.Reporting.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestValidateRejections(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: DriverMemory},
			WhatsApp:  WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
			Reporting: ReportingConfig{CronSchedule: "0 21 * * *", Timezone: "UTC"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.Storage.Driver = DriverSQLite }},
		{name: "whatsapp without phone id", mutate: func(c *Config) { c.WhatsApp.AccessToken = "tok" }},
		{name: "sheets half configured", mutate: func(c *Config) { c.Sheets.CredentialsPath = "creds.json" }},
		{name: "bad timezone", mutate: func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }},
		{name: "empty cron", mutate: func(c *Config) { c.Reporting.CronSchedule = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
