package initdb

import (
	"fmt"

	"github.com/spf13/cobra"

	"media2text/cmd/m2t/cmd/flags"
	"media2text/internal/app"
)

// Cmd represents the init-db command
var Cmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database schema if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.LoadConfig(cmd)
		if err != nil {
			return err
		}

		// InitializeStore applies the schema on open.
		_, cleanup, err := app.InitializeStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		cleanup()

		fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Database.Driver)
		return nil
	},
}
