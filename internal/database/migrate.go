package database

import (
	"log/slog"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"gorm.io/gorm"
)

// Bootstrap creates the recipe tables when DB_AUTO_MIGRATE is enabled. It is
// a convenience for sqlite and local postgres, not a migration system.
func Bootstrap(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	if !cfg.DBAutoMigrate {
		log.Info("schema bootstrap disabled")
		return nil
	}
	log.Info("bootstrapping recipe schema", "dialect", db.Dialector.Name())
	return store.EnsureSchema(db)
}
