package cli

import (
	"github.com/spf13/cobra"
)

func newResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the persisted session state",
		Long: `Delete the persisted session state file, returning the workflow
to step 1. Resetting an absent session is a no-op.

Example:
  papertok reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.Reset(); err != nil {
				app.Printer.Error("papertok: %v", err)
				return NewExitError(1)
			}
			app.Printer.Info("State reset. Run 'papertok' to start fresh.")
			return nil
		},
	}
}
