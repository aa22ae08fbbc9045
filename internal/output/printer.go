// Package output formats operator-facing terminal output.
//
// The adapter's stdout carries exactly one protocol JSON line per turn, so
// everything meant for human eyes goes through a [Printer] writing to stderr.
// Styling uses lipgloss and degrades gracefully on dumb terminals.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	agentBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	agentTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// Printer writes operator-facing messages.
//
// Use [NewPrinter] for stderr output or [NewPrinterWithWriter] to capture
// output in tests.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a [Printer] writing to stderr.
func NewPrinter() *Printer {
	return &Printer{w: os.Stderr}
}

// NewPrinterWithWriter creates a [Printer] writing to the given writer.
func NewPrinterWithWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NotifyUser displays a message the LLM addressed to the human operator.
func (p *Printer) NotifyUser(message string) {
	box := agentBoxStyle.Render(agentTitleStyle.Render("AGENT MESSAGE") + "\n" + message)
	fmt.Fprintf(p.w, "\n%s\n\n", box)
}

// Info prints a low-key status line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, infoStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, errorStyle.Render(fmt.Sprintf(format, args...)))
}
