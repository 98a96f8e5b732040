// Package present provides colorized CLI output for search results and
// status reports, with a plain-text fallback for non-interactive output.
package present

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette for the CLI.
const (
	colorAccent = "42"  // green
	colorDim    = "245" // gray
	colorError  = "196" // red
	colorWarn   = "220" // yellow
)

// Styles holds the lipgloss styles used by a Writer.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// ColorStyles returns the colorized style set.
func ColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarn)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorDim)),
	}
}

// PlainStyles returns a style set that applies no coloring.
func PlainStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// Writer formats CLI output, switching between color and plain styles
// based on whether out is an interactive terminal.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New builds a Writer, auto-detecting terminal support via isatty and
// the NO_COLOR convention.
func New(out io.Writer) *Writer {
	styles := PlainStyles()
	if IsTTY(out) && !DetectNoColor() {
		styles = ColorStyles()
	}
	return &Writer{out: out, styles: styles}
}

// IsTTY reports whether out is an interactive terminal file.
func IsTTY(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DetectNoColor reports whether the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// Header prints a bold section heading.
func (w *Writer) Header(msg string) {
	fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// Success prints a success line.
func (w *Writer) Success(msg string) {
	fmt.Fprintln(w.out, w.styles.Success.Render(msg))
}

// Warning prints a warning line.
func (w *Writer) Warning(msg string) {
	fmt.Fprintln(w.out, w.styles.Warning.Render(msg))
}

// Error prints an error line.
func (w *Writer) Error(msg string) {
	fmt.Fprintln(w.out, w.styles.Error.Render(msg))
}

// Dim prints a dimmed supporting line.
func (w *Writer) Dim(msg string) {
	fmt.Fprintln(w.out, w.styles.Dim.Render(msg))
}

// Line prints a plain, unstyled line.
func (w *Writer) Line(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	fmt.Fprintln(w.out)
}
