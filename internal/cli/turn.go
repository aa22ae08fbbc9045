package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"papertok/internal/tools"
	"papertok/internal/turn"
	"papertok/internal/workflow"
)

// runTurn processes one protocol turn: parse the workflow document, read an
// optional message from stdin, run the processor, print the context line.
//
// Workflow load failures and persistence failures are fatal (non-zero exit);
// protocol and tool errors are reported in-band inside the context message
// and exit 0.
func runTurn(app *App, cmd *cobra.Command) error {
	steps, err := workflow.ParseFile(app.Config.WorkflowPath)
	if err != nil {
		app.Printer.Error("papertok: %v", err)
		return NewExitError(1)
	}

	input, err := readStdinInput()
	if err != nil {
		app.Printer.Error("papertok: failed to read stdin: %v", err)
		return NewExitError(1)
	}

	registry := tools.NewRegistry(app.toolOptions())
	processor := turn.NewProcessor(app.Store, registry, steps, app.Printer)

	contextLine, err := processor.ProcessTurn(cmd.Context(), input)
	if err != nil {
		app.Printer.Error("papertok: %v", err)
		return NewExitError(1)
	}

	fmt.Fprintln(cmd.OutOrStdout(), contextLine)
	return nil
}

// readStdinInput returns piped stdin content, or "" when stdin is a
// terminal (interactive first turn).
func readStdinInput() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
