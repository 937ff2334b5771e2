package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int
	DBAutoMigrate  bool

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisURL      string
	RedisDB       int

	// Write requests allowed per client per hour. Zero disables limiting.
	RateLimitPerHour int

	CORSAllowedOrigins []string

	// Catalog export
	S3BucketName string
	AWSRegion    string
}

// LoadConfig creates a new Config instance from environment variables.
// Docker secrets under SECRETS_DIR override db_password and redis_password.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	cfg := &Config{
		Environment: env,
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "recipes"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "recipes.db"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisDB:       0,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		S3BucketName: getEnv("S3_BUCKET_NAME", "recipe-catalog-exports"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerHour, err = getEnvInt("RATE_LIMIT_PER_HOUR", 100); err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate, err = getEnvBool("DB_AUTO_MIGRATE", env != Production); err != nil {
		return nil, err
	}

	// CI passes credentials through TEST_ prefixed variables.
	if env == CI {
		if cfg.DBPassword == "" {
			cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
		}
		if cfg.RedisPassword == "" {
			cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
		}
	}

	if secret := readSecret("db_password"); secret != "" {
		cfg.DBPassword = secret
	}
	if secret := readSecret("redis_password"); secret != "" {
		cfg.RedisPassword = secret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN is the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr is host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", raw)}
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, ValidationError{Field: key, Message: fmt.Sprintf("must be a boolean, got %q", raw)}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
