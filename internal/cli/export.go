package cli

import (
	"fmt"
	"time"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		key     string
		linkTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the whole catalog to S3 as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := rootOpts.logger(cmd.ErrOrStderr())

			cat, err := openCatalog(ctx, log)
			if err != nil {
				return err
			}
			defer cat.Close()

			s3cfg, err := config.NewS3Config(ctx, cat.cfg)
			if err != nil {
				return err
			}

			n, err := export.NewExporter(cat.service, s3cfg, log).Export(ctx, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d recipes to s3://%s/%s\n", n, cat.cfg.S3BucketName, key)

			if linkTTL > 0 {
				url, err := s3cfg.GeneratePresignedURL(ctx, key, linkTTL)
				if err != nil {
					return fmt.Errorf("failed to presign download link: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "catalog.json", "object key to write")
	cmd.Flags().DurationVar(&linkTTL, "link-ttl", 0, "also print a presigned download link valid for this long (0 disables)")

	return cmd
}
