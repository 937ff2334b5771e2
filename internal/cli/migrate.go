package cli

import (
	"fmt"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the recipe tables",
		Long: `Create the recipes, ingredients and nutrition tables if they are missing.

Runs regardless of DB_AUTO_MIGRATE. Existing tables are only extended, never
dropped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rootOpts.logger(cmd.ErrOrStderr())

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := database.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := store.EnsureSchema(db); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", db.Dialector.Name())
			return nil
		},
	}
}
