package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/erpdash/internal/seed"
)

var seedCheckCmd = &cobra.Command{
	Use:   "seed-check [file]",
	Short: "Validate a seed file and print a summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Seed.File
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no seed file given (pass a path, --seed or SEED_FILE)")
		}

		data, err := seed.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s)\n", path, data.Summary())
		return nil
	},
}

var seedInitForce bool

var seedInitCmd = &cobra.Command{
	Use:   "seed-init <file>",
	Short: "Write the built-in seed data as a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if seedInitForce {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		f, err := os.OpenFile(args[0], flags, 0o644)
		if err != nil {
			return err
		}

		if err := seed.Encode(f, seed.Default()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

func init() {
	seedInitCmd.Flags().BoolVarP(&seedInitForce, "force", "f", false, "overwrite an existing file")
}
