// Package output handles the user-facing console surface of a backup run.
// All messages, including per-file errors, go to standard output; only the
// fatal configuration error changes the process exit status.
package output

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Reporter receives the user-facing events of a backup run.
type Reporter interface {
	// Copied reports that a file was copied into the backup tree.
	Copied(relPath string)
	// BinarySkipped reports a binary file that was copied without diff/logging.
	BinarySkipped(relPath string)
	// FileError reports a per-file failure; the run continues.
	FileError(relPath string, err error)
	// Info reports a general progress message.
	Info(format string, args ...interface{})
	// Error reports a non-fatal pipeline failure.
	Error(format string, args ...interface{})
}

// Console is the pterm-backed Reporter used by the CLI. Styling is disabled
// when stdout is not a terminal.
type Console struct{}

// NewConsole creates a Console reporter, turning pterm styling off for
// non-terminal stdout.
func NewConsole() *Console {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableStyling()
	}
	return &Console{}
}

func (c *Console) Copied(relPath string) {
	fmt.Printf("Copied: %s\n", relPath)
}

func (c *Console) BinarySkipped(relPath string) {
	fmt.Printf("(Binary file, skipped diff/log): %s\n", relPath)
}

func (c *Console) FileError(relPath string, err error) {
	pterm.Warning.Printfln("Error processing file %s: %v", relPath, err)
}

func (c *Console) Info(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

func (c *Console) Error(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Discard is a Reporter that drops everything. Tests use it.
type Discard struct{}

func (Discard) Copied(string) {}

func (Discard) BinarySkipped(string) {}

func (Discard) FileError(string, error) {}

func (Discard) Info(string, ...interface{}) {}

func (Discard) Error(string, ...interface{}) {}

// Recording is a Reporter that captures events for assertions.
type Recording struct {
	CopiedFiles  []string
	BinaryFiles  []string
	FailedFiles  []string
	InfoMessages []string
	Errors       []string
}

func (r *Recording) Copied(relPath string) {
	r.CopiedFiles = append(r.CopiedFiles, relPath)
}

func (r *Recording) BinarySkipped(relPath string) {
	r.BinaryFiles = append(r.BinaryFiles, relPath)
}

func (r *Recording) FileError(relPath string, err error) {
	r.FailedFiles = append(r.FailedFiles, relPath)
}
func (r *Recording) Info(format string, args ...interface{}) {
	r.InfoMessages = append(r.InfoMessages, fmt.Sprintf(format, args...))
}
func (r *Recording) Error(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
