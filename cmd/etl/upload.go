package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ETL/internal/storage"
)

func newUploadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload [dir]",
		Short: "Upload local raw files to the raw prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "data"
			if len(args) == 1 {
				dir = args[0]
			}

			ctx := cmd.Context()
			app, err := c.app(ctx)
			if err != nil {
				return err
			}

			report, err := storage.NewUploader(app.Store).UploadDir(ctx, dir, c.cfg.Storage.RawPrefix)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d files failed to upload", len(report.Failed))
			}
			return nil
		},
	}
}
