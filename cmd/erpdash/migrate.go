package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending project store migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Database.Enabled() {
			return errors.New("DATABASE_URL is not set")
		}
		store, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		version, err := store.Migrate()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}
