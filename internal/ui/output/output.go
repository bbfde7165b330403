// Package output paints report text for terminals and plain logs.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/ivpm/internal/ui/style"
)

// Profile returns the colour profile for human-readable output. NO_COLOR and
// TERM=dumb disable colour even when color is true.
func Profile(color bool) termenv.Profile {
	if !color || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// Painter styles fragments of a report by role. With the Ascii profile every
// method returns its input unchanged.
type Painter struct {
	out *termenv.Output
}

// New creates a Painter for w. A nil w paints for stderr.
func New(w io.Writer, color bool) *Painter {
	if w == nil {
		w = os.Stderr
	}
	return &Painter{out: termenv.NewOutput(w, termenv.WithProfile(Profile(color)), termenv.WithTTY(true))}
}

// Output returns the underlying termenv output.
func (p *Painter) Output() *termenv.Output {
	return p.out
}

// Color reports whether the painter emits escape sequences.
func (p *Painter) Color() bool {
	return p.out.Profile != termenv.Ascii
}

// OK paints a successful state.
func (p *Painter) OK(s string) string { return p.fg(s, style.Success) }

// Warn paints a state that needs attention.
func (p *Painter) Warn(s string) string { return p.fg(s, style.Warning) }

// Fail paints a failed state.
func (p *Painter) Fail(s string) string { return p.fg(s, style.Failure) }

// Accent paints references such as branch names.
func (p *Painter) Accent(s string) string { return p.fg(s, style.Accent) }

// Muted paints secondary detail.
func (p *Painter) Muted(s string) string { return p.fg(s, style.Muted) }

// Faint dims s without changing its colour.
func (p *Painter) Faint(s string) string {
	return p.out.String(s).Faint().String()
}

// Bold emphasizes s.
func (p *Painter) Bold(s string) string {
	return p.out.String(s).Bold().String()
}

func (p *Painter) fg(s string, c lipgloss.Color) string {
	return p.out.String(s).Foreground(p.out.Color(string(c))).String()
}
