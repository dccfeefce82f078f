package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/ETL/internal/pipeline"
)

// manifest is the YAML form of a run result.
type manifest struct {
	RunID    string                    `yaml:"run_id"`
	Status   string                    `yaml:"status"`
	Started  string                    `yaml:"started"`
	Duration string                    `yaml:"duration"`
	Tables   []string                  `yaml:"tables"`
	Entities map[string]manifestEntity `yaml:"entities"`
}

type manifestEntity struct {
	Rows    int    `yaml:"rows"`
	Written bool   `yaml:"written"`
	Error   string `yaml:"error,omitempty"`
	Code    string `yaml:"code,omitempty"`
}

func newManifest(res pipeline.Result) manifest {
	m := manifest{
		RunID:    res.RunID,
		Status:   res.Status,
		Started:  res.Started.UTC().Format("2006-01-02T15:04:05Z"),
		Duration: res.Duration.String(),
		Tables:   res.Tables,
		Entities: make(map[string]manifestEntity, len(res.Entities)),
	}
	for name, st := range res.Entities {
		m.Entities[name] = manifestEntity{Rows: st.Rows, Written: st.Written, Error: st.Error, Code: st.Code}
	}
	return m
}

func newTransformCmd(c *cli) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run one batch from the raw prefix to the transformed prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := c.app(ctx)
			if err != nil {
				return err
			}

			res, err := app.Driver.Run(ctx, pipeline.Trigger{Source: "cli"})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}

			if manifestPath != "" {
				if err := writeManifest(manifestPath, res); err != nil {
					return err
				}
			}

			var failed []string
			for name, st := range res.Entities {
				if st.Error != "" {
					failed = append(failed, name)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d entities failed to write: %v", len(failed), failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "also write the run manifest as YAML to this path")
	return cmd
}

func writeManifest(path string, res pipeline.Result) error {
	data, err := yaml.Marshal(newManifest(res))
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
