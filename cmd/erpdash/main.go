// Command erpdash serves the ERP admin dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/erpdash/internal/config"
	"github.com/JonMunkholm/erpdash/internal/logging"
)

var (
	envFiles []string
	seedFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "erpdash",
	Short:         "ERP admin dashboard server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadEnvFiles(envFiles...)
		if err != nil {
			return err
		}

		c, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			c.Seed.File = seedFile
		}
		cfg = c

		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		if loaded {
			slog.Debug("loaded env files", "files", envFiles)
		}
		return nil
	},
	// Running the bare binary serves.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "env files to load; existing variables win")
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "TOML seed file (overrides SEED_FILE)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCheckCmd, seedInitCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
