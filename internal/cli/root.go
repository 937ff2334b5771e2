// Package cli implements recipectl, the catalog admin command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the recipectl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recipectl",
		Short: "Recipe catalog administration",
		Long:  "Create, seed and export the recipe catalog. Connection settings come from the same environment variables as the API.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// catalog is an open recipe service plus the handle it runs on.
type catalog struct {
	cfg     *config.Config
	db      *gorm.DB
	service *service.RecipeService
}

func (c *catalog) Close() error {
	return database.Close(c.db)
}

func openCatalog(ctx context.Context, log *slog.Logger) (*catalog, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Bootstrap(db, cfg, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	gw := store.NewGateway(db,
		store.WithNutritionTable(store.NutritionRow{}.TableName()),
		store.WithLogger(log),
	)
	return &catalog{cfg: cfg, db: db, service: service.NewRecipeService(gw)}, nil
}
