package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ledger table backends.
const (
	BackendXLSX   = "xlsx"
	BackendSheets = "sheets"
)

// Attachment archive drivers.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Ledger      LedgerConfig
	Sheets      SheetsConfig
	Attachments AttachmentConfig
	MongoDB     MongoDBConfig
	Admin       AdminConfig
	Digest      DigestConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port         string
	MaxBodyBytes int64
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// LedgerConfig selects and tunes the inventory table.
type LedgerConfig struct {
	Backend      string
	File         string
	Sheet        string
	StrictLoad   bool
	AllowRestamp bool
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// AttachmentConfig selects where uploaded files are archived.
type AttachmentConfig struct {
	Driver      string
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// MongoDBConfig holds settings for MongoDB. An empty URI keeps users and
// audit events in memory.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AdminConfig bootstraps the first approver account.
type AdminConfig struct {
	Username string
	Password string
}

// DigestConfig holds scheduler-related settings.
type DigestConfig struct {
	WebhookURL   string
	CronSchedule string
	Timezone     string
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

	maxBody, err := getenvInt64("MAX_BODY_BYTES", 16<<20)
	if err != nil {
		return nil, err
	}
	strict, err := getenvBool("LEDGER_STRICT_LOAD", true)
	if err != nil {
		return nil, err
	}
	restamp, err := getenvBool("LEDGER_ALLOW_RESTAMP", false)
	if err != nil {
		return nil, err
	}
	pathStyle, err := getenvBool("ATTACHMENT_S3_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getenvWithDefault("APP_PORT", "8080"),
			MaxBodyBytes: maxBody,
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Ledger: LedgerConfig{
			Backend:      strings.ToLower(getenvWithDefault("LEDGER_BACKEND", BackendXLSX)),
			File:         getenvWithDefault("LEDGER_FILE", "data/inventory.xlsx"),
			Sheet:        getenvWithDefault("LEDGER_SHEET", "Inventory"),
			StrictLoad:   strict,
			AllowRestamp: restamp,
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Attachments: AttachmentConfig{
			Driver:      strings.ToLower(getenvWithDefault("ATTACHMENT_DRIVER", DriverFS)),
			Dir:         getenvWithDefault("ATTACHMENT_DIR", "data/attachments"),
			S3Bucket:    os.Getenv("ATTACHMENT_S3_BUCKET"),
			S3Region:    os.Getenv("ATTACHMENT_S3_REGION"),
			S3Endpoint:  os.Getenv("ATTACHMENT_S3_ENDPOINT"),
			S3PathStyle: pathStyle,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockledger"),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Digest: DigestConfig{
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
			CronSchedule: getenvWithDefault("DIGEST_CRON", "0 8 * * 1-5"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
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
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}

	switch c.Ledger.Backend {
	case BackendXLSX:
		if c.Ledger.File == "" {
			return errors.New("LEDGER_FILE must be provided")
		}
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("LEDGER_BACKEND must be %q or %q, got %q", BackendXLSX, BackendSheets, c.Ledger.Backend)
	}

	switch c.Attachments.Driver {
	case DriverFS:
		if c.Attachments.Dir == "" {
			return errors.New("ATTACHMENT_DIR must be provided")
		}
	case DriverS3:
		if c.Attachments.S3Bucket == "" {
			return errors.New("ATTACHMENT_S3_BUCKET must be provided")
		}
	default:
		return fmt.Errorf("ATTACHMENT_DRIVER must be %q or %q, got %q", DriverFS, DriverS3, c.Attachments.Driver)
	}

	if (c.Admin.Username == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be provided together")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON must be provided")
	}

	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Digest.Timezone, err)
	}

	return nil
}

// Location resolves the configured timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Digest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getenvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
