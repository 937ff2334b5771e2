package cli

import (
	"fmt"

	"github.com/pageza/recipe-catalog/backend/internal/seed"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load recipes from a YAML file",
		Long: `Create every recipe listed in a YAML seed file.

Recipes whose name already exists are skipped, so the command can be re-run.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := rootOpts.logger(cmd.ErrOrStderr())

			recipes, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			cat, err := openCatalog(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer cat.Close()

			res, err := seed.Run(cmd.Context(), cat.service, recipes, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the YAML seed file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
