package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Messages written by the shell.
const (
	msgLongLine          = "warning: ignoring long command exceeding %d characters\n"
	msgRedirectionFormat = "Redirection misformatted.\n"
	msgCannotWrite       = "Cannot write to file %s.\n"
	msgCommandNotFound   = "%s: Command not found.\n"
)

// Color modes accepted in the configuration.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// Diagnostics writes the shell's user facing warnings and errors.
type Diagnostics struct {
	stdout io.Writer
	stderr io.Writer

	warning *color.Color
	failure *color.Color
}

// NewDiagnostics creates a diagnostic printer. mode is one of ColorAlways,
// ColorAuto or ColorNever, auto colors if isTerminal is true.
func NewDiagnostics(stdout, stderr io.Writer, mode string, isTerminal bool) *Diagnostics {
	d := &Diagnostics{
		stdout:  stdout,
		stderr:  stderr,
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.Bold),
	}

	if mode == ColorAlways || (mode == ColorAuto && isTerminal) {
		d.warning.EnableColor()
		d.failure.EnableColor()
	} else {
		d.warning.DisableColor()
		d.failure.DisableColor()
	}
	return d
}

// LongLine warns that a line was dropped for exceeding MaxLineLength.
func (d *Diagnostics) LongLine() {
	d.print(d.stdout, d.warning, msgLongLine, MaxLineLength)
}

// MisformattedRedirection reports a dropped line with a bad '>'.
func (d *Diagnostics) MisformattedRedirection() {
	d.print(d.stdout, d.warning, msgRedirectionFormat)
}

// CannotWrite reports a redirection target that couldn't be opened.
func (d *Diagnostics) CannotWrite(name string) {
	d.print(d.stdout, d.failure, msgCannotWrite, name)
}

// CommandNotFound reports a command that couldn't be run or failed.
func (d *Diagnostics) CommandNotFound(name string) {
	d.print(d.stderr, d.failure, msgCommandNotFound, name)
}

// print colors the message but not its trailing newline so terminals don't
// carry the color onto the next line.
func (d *Diagnostics) print(w io.Writer, c *color.Color, format string, a ...interface{}) {
	msg := strings.TrimSuffix(fmt.Sprintf(format, a...), "\n")
	fmt.Fprintln(w, c.Sprint(msg))
}
