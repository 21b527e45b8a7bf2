package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "LOG_LEVEL", "MAX_BODY_BYTES",
	"LEDGER_BACKEND", "LEDGER_FILE", "LEDGER_SHEET", "LEDGER_STRICT_LOAD", "LEDGER_ALLOW_RESTAMP",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID",
	"ATTACHMENT_DRIVER", "ATTACHMENT_DIR", "ATTACHMENT_S3_BUCKET", "ATTACHMENT_S3_REGION",
	"ATTACHMENT_S3_ENDPOINT", "ATTACHMENT_S3_PATH_STYLE",
	"MONGODB_URI", "MONGODB_DB_NAME", "ADMIN_USERNAME", "ADMIN_PASSWORD",
	"NOTIFY_WEBHOOK_URL", "DIGEST_CRON", "TIMEZONE",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("# empty\n"), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(16<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendXLSX, cfg.Ledger.Backend)
	assert.Equal(t, "data/inventory.xlsx", cfg.Ledger.File)
	assert.Equal(t, "Inventory", cfg.Ledger.Sheet)
	assert.True(t, cfg.Ledger.StrictLoad)
	assert.False(t, cfg.Ledger.AllowRestamp)
	assert.Equal(t, DriverFS, cfg.Attachments.Driver)
	assert.Equal(t, "", cfg.MongoDB.URI)
	assert.Equal(t, "stockledger", cfg.MongoDB.DBName)
	assert.Equal(t, "0 8 * * 1-5", cfg.Digest.CronSchedule)
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, key := range []string{"LEDGER_BACKEND", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "LEDGER_STRICT_LOAD", "ATTACHMENT_DRIVER", "ATTACHMENT_S3_BUCKET"} {
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "LEDGER_BACKEND=sheets\n" +
		"GOOGLE_SHEETS_CREDENTIALS_PATH=/secrets/sa.json\n" +
		"GOOGLE_SHEET_DATABASE_ID=abc123\n" +
		"LEDGER_STRICT_LOAD=false\n" +
		"ATTACHMENT_DRIVER=S3\n" +
		"ATTACHMENT_S3_BUCKET=ledger-files\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSheets, cfg.Ledger.Backend)
	assert.Equal(t, "abc123", cfg.Sheets.SpreadsheetID)
	assert.False(t, cfg.Ledger.StrictLoad)
	assert.Equal(t, DriverS3, cfg.Attachments.Driver)
	assert.Equal(t, "ledger-files", cfg.Attachments.S3Bucket)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad bool":          {"LEDGER_STRICT_LOAD": "sometimes"},
		"bad size":          {"MAX_BODY_BYTES": "lots"},
		"unknown backend":   {"LEDGER_BACKEND": "csv"},
		"sheets without id": {"LEDGER_BACKEND": "sheets", "GOOGLE_SHEETS_CREDENTIALS_PATH": "/sa.json"},
		"s3 without bucket": {"ATTACHMENT_DRIVER": "s3"},
		"half admin":        {"ADMIN_USERNAME": "root"},
		"bad timezone":      {"TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(emptyEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestValidate_NilConfig(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}
