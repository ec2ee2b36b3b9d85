package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Search tuning
	DefaultLimit        int
	DefaultMinScore     int
	CandidateLimit      int
	OverfetchMultiplier int

	// HTTP tuning
	ExportRateLimitPerMinute int

	// AMQP (optional, empty URL disables reload events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets import source
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	CompiledSheetName        string
	DetailsSheetName         string

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/unitrates.db"),

		DefaultLimit:        getEnvInt("SEARCH_DEFAULT_LIMIT", 100),
		DefaultMinScore:     getEnvInt("SEARCH_DEFAULT_MIN_SCORE", 70),
		CandidateLimit:      getEnvInt("SEARCH_CANDIDATE_LIMIT", 10000),
		OverfetchMultiplier: getEnvInt("SEARCH_OVERFETCH_MULTIPLIER", 10),

		ExportRateLimitPerMinute: getEnvInt("EXPORT_RATE_LIMIT_PER_MINUTE", 30),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "unitrates"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_reload"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		CompiledSheetName:        getEnv("COMPILED_SHEET_NAME", "Compiled Data"),
		DetailsSheetName:         getEnv("DETAILS_SHEET_NAME", "File Details"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DefaultLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid default limit %d: must be at least 1", c.DefaultLimit))
	}
	if c.DefaultMinScore < 0 || c.DefaultMinScore > 100 {
		errors = append(errors, fmt.Sprintf("invalid default minimum score %d: must be between 0 and 100", c.DefaultMinScore))
	}
	if c.CandidateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid candidate limit %d: must be at least 1", c.CandidateLimit))
	}
	if c.OverfetchMultiplier < 1 {
		errors = append(errors, fmt.Sprintf("invalid overfetch multiplier %d: must be at least 1", c.OverfetchMultiplier))
	}
	if c.ExportRateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid export rate limit %d: must be at least 1", c.ExportRateLimitPerMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateImport checks the settings the import step needs on top of
// the base validation.
func (c *Config) ValidateImport() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errors []string

	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the import step")
	}
	if c.CompiledSheetName == "" {
		errors = append(errors, "compiled sheet name cannot be empty")
	}
	if c.DetailsSheetName == "" {
		errors = append(errors, "details sheet name cannot be empty")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("import configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
