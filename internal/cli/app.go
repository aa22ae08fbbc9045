// Package cli wires the papertok command tree.
//
// The root command processes exactly one protocol turn: it reads an optional
// JSON message from stdin, runs the turn processor, and writes the context
// message to stdout. Subcommands cover session reset and workflow
// inspection. Commands signal failure through [ExitError] so exit codes stay
// testable without os.Exit scattered through the tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"papertok/internal/config"
	"papertok/internal/output"
	"papertok/internal/state"
	"papertok/internal/tools"
)

// App holds the dependencies shared by all commands.
type App struct {
	Config  *config.Config
	Store   *state.Store
	Printer *output.Printer
}

// NewApp builds an [App] from loaded configuration.
func NewApp(cfg *config.Config) *App {
	return &App{
		Config:  cfg,
		Store:   state.NewStore(state.ResolvePath("", cfg.StatePath)),
		Printer: output.NewPrinter(),
	}
}

// toolOptions maps the configuration onto the tool environment.
func (a *App) toolOptions() tools.Options {
	return tools.Options{
		ResourcesRoot:      a.Config.Tools.ResourcesRoot,
		FFmpegPath:         a.Config.Tools.FFmpegPath,
		WordsPerSecond:     a.Config.Tools.WordsPerSecond,
		ImageAPIURL:        a.Config.Tools.ImageAPIURL,
		ImageAPIKey:        a.Config.Tools.ImageAPIKey,
		HTTPTimeoutSeconds: a.Config.Tools.HTTPTimeoutSeconds,
	}
}

// Execute loads configuration, builds the command tree, and runs it,
// terminating the process with the appropriate exit code.
func Execute() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "papertok: %v\n", err)
		os.Exit(1)
	}

	app := NewApp(cfg)
	root := NewRootCommand(app)

	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			os.Exit(code)
		}
		os.Exit(1)
	}
}

// NewRootCommand builds the papertok command tree over the given [App].
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "papertok",
		Short: "Turn-based adapter for LLM-driven paper-to-video workflows",
		Long: `papertok drives a multi-step content-creation workflow one turn at a time.

Each invocation processes exactly one turn: it loads the persisted session,
applies at most one JSON message from stdin, and prints a context message
describing the current step, available tools, and accumulated state.

  papertok                 First turn (outputs step 1 context)
  echo '{...}' | papertok  Process one turn with piped JSON input
  papertok reset           Reset session state and start fresh
  papertok workflow        Print the loaded workflow plan`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTurn(app, cmd)
		},
	}

	root.AddCommand(newResetCommand(app))
	root.AddCommand(newWorkflowCommand(app))
	return root
}
