// Package flags holds the flag helpers shared by m2t subcommands.
package flags

import (
	"time"

	"github.com/spf13/cobra"

	"media2text/internal/app"
	appconfig "media2text/internal/app/config"
	"media2text/internal/app/errors"
)

// Persistent flag names defined on the root command.
const (
	Config  = "config"
	Verbose = "verbose"
)

const dateLayout = "2006-01-02"

// LoadConfig reads the persistent --config and --verbose flags.
func LoadConfig(cmd *cobra.Command) (*appconfig.Config, error) {
	path, _ := cmd.Flags().GetString(Config)
	verbose, _ := cmd.Flags().GetBool(Verbose)
	return app.LoadConfig(path, verbose)
}

// ParseDate parses a YYYY-MM-DD flag value; empty gives nil.
func ParseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, errors.Kind(errors.ErrInvalidInput, err, "date %q must be YYYY-MM-DD", value)
	}
	return &t, nil
}
