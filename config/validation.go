package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its
// environment. All problems are reported at once.
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		add("SERVER_PORT", "must be numeric")
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
		if cfg.Environment == Production || cfg.Environment == CI {
			if cfg.DBPassword == "" {
				add("DB_PASSWORD", "is required (db_password secret or DB_PASSWORD)")
			}
		}
	case DriverSQLite:
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not allowed in production")
		}
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.DBMaxOpenConns < 1 {
		add("DB_MAX_OPEN_CONNS", "must be at least 1")
	}
	if cfg.RateLimitPerHour < 0 {
		add("RATE_LIMIT_PER_HOUR", "must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
