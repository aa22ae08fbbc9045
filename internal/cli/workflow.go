package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"papertok/internal/workflow"
)

func newWorkflowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "workflow",
		Short: "Print the loaded workflow plan",
		Long: `Parse the configured workflow document and print its step plan:
step ordinals, names, and the actions each step performs.

Example:
  papertok workflow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := workflow.ParseFile(app.Config.WorkflowPath)
			if err != nil {
				app.Printer.Error("papertok: %v", err)
				return NewExitError(1)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Workflow: %s (%d steps)\n\n", app.Config.WorkflowPath, len(steps))
			for _, step := range steps {
				fmt.Fprintf(out, "%3d. %s\n", step.Number, step.Name)
				if step.Description != "" {
					fmt.Fprintf(out, "     %s\n", step.Description)
				}
				for _, action := range step.Actions {
					marker := "llm"
					if action.Tool != "" {
						marker = "tool " + action.Tool
					}
					fmt.Fprintf(out, "     - %s [%s]\n", action.Name, marker)
				}
			}
			return nil
		},
	}
}
