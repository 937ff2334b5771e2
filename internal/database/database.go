package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/pageza/recipe-catalog/backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the configured database, applies the pool settings and checks
// the connection. Postgres connections go through lib/pq. On error the pool
// is closed before returning.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		log.Info("connecting to database", "driver", cfg.DBDriver, "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)

		var sqlDB *sql.DB
		sqlDB, err = sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			sqlDB.Close()
		}
	case config.DriverSQLite:
		log.Info("connecting to database", "driver", cfg.DBDriver, "path", cfg.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil && db != nil {
			_ = Close(db)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configure(ctx, db, cfg); err != nil {
		return nil, err
	}

	log.Info("successfully connected to database")
	return db, nil
}

// configure applies the pool settings and pings. It closes the pool when
// the ping fails.
func configure(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("error getting database handle: %w", err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := HealthCheck(ctx, db); err != nil {
		sqlDB.Close()
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	return nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
