// Command etl runs the batch pipeline and its supporting steps from the
// command line:
//
//	etl upload [dir]                       copy local raw files to the raw prefix
//	etl transform [--manifest out.yaml]    run one batch
//	etl warehouse staging|load|final       prepare and load the warehouse
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ETL/internal/application"
	"github.com/JonMunkholm/ETL/internal/config"
	"github.com/JonMunkholm/ETL/internal/logging"
)

// cli carries state shared by subcommands after the root pre-run.
type cli struct {
	envFile string
	cfg     *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "etl",
		Short:         "Retail batch ETL: raw files to Parquet to warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded over the environment if present")

	root.AddCommand(
		newUploadCmd(c),
		newTransformCmd(c),
		newWarehouseCmd(c),
	)
	return root
}

// setup loads the env file, configuration and logging.
func (c *cli) setup() error {
	if _, err := os.Stat(c.envFile); err == nil {
		if err := godotenv.Overload(c.envFile); err != nil {
			return fmt.Errorf("load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	c.cfg = cfg

	slog.Debug("configuration loaded", "config", cfg.String())
	return nil
}

func (c *cli) app(ctx context.Context) (*application.App, error) {
	return application.New(ctx, c.cfg)
}
