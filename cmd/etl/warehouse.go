package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ETL/internal/core"
	"github.com/JonMunkholm/ETL/internal/warehouse"
)

func newWarehouseCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warehouse",
		Short: "Create staging tables, load them, and build the final tables",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "staging",
			Short: "Run the staging DDL script in one transaction",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withWarehouse(cmd, func(w *warehouse.Warehouse) error {
					return w.ExecFile(cmd.Context(), c.cfg.Warehouse.StagingSQLPath)
				})
			},
		},
		newLoadCmd(c),
		&cobra.Command{
			Use:   "final",
			Short: "Run the final tables script",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withWarehouse(cmd, func(w *warehouse.Warehouse) error {
					return w.ExecScript(cmd.Context(), c.cfg.Warehouse.FinalSQLPath)
				})
			},
		},
	)
	return cmd
}

func newLoadCmd(c *cli) *cobra.Command {
	var (
		runID  string
		tables []string
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "COPY each transformed Parquet object into its staging table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(tables) == 0 {
				tables = core.Keys()
			}
			for _, t := range tables {
				if _, ok := core.Get(t); !ok {
					return fmt.Errorf("unknown entity %q", t)
				}
			}

			return c.withWarehouse(cmd, func(w *warehouse.Warehouse) error {
				app, err := c.app(cmd.Context())
				if err != nil {
					return err
				}
				results := w.LoadAll(cmd.Context(), app.LoadSource(runID), tables)

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}

				failed := 0
				for _, r := range results {
					if !r.Loaded {
						failed++
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d tables failed to load", failed, len(results))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "load the objects of this run (SINK_PER_RUN layouts)")
	cmd.Flags().StringSliceVar(&tables, "tables", nil, "entities to load (default: all)")
	return cmd
}

// withWarehouse opens the warehouse pool for the duration of fn.
func (c *cli) withWarehouse(cmd *cobra.Command, fn func(*warehouse.Warehouse) error) error {
	if err := c.cfg.ValidateWarehouse(); err != nil {
		return err
	}

	pool, err := warehouse.Open(cmd.Context(), c.cfg.Warehouse)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(warehouse.New(pool))
}
