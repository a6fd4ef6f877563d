package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/config"
)

var (
	cliOpts   config.CliOnlyOptions
	quietFlag bool
	dbPath    string

	// RootCmd is the root command for envlink
	RootCmd = &cobra.Command{
		Use:   "envlink",
		Short: "Keep a stable ./venv link to your project's Poetry environment",
		Long: `envlink points a well-known symlink in the project directory (./venv by
default) at the virtual environment Poetry manages for the project, so editors
and scripts can find the interpreter without asking Poetry.

The environment can be given explicitly or discovered automatically from
'poetry env list --full-path' (requires Poetry 1.0.0b2 or newer).

Examples:
  # Link the environment Poetry has activated
  envlink link --env automatic

  # Link an explicit environment directory
  envlink link --env ~/.cache/pypoetry/virtualenvs/demo-AbC123xY-py3.12

  # Check the current link
  envlink status

  # Relink whenever Poetry switches environments
  envlink watch

  # Go back to the previous environment
  envlink undo`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&cliOpts.ConfigPath, "config", "c", "", "application config file")
	flags.CountVarP(&cliOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "suppress all logging output")
	flags.StringVar(&dbPath, "db", "", "link history database path (default: $XDG_DATA_HOME/envlink/history.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
