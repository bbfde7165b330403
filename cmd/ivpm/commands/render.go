package commands

import (
	"fmt"
	"io"
	"os"

	"go.trai.ch/ivpm/internal/ui/output"
	"golang.org/x/term"
)

// printer writes styled report lines to a command's output.
type printer struct {
	*output.Painter
	w io.Writer
}

// newPrinter paints only when w is a terminal.
func newPrinter(w io.Writer) *printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
	}
	return &printer{Painter: output.New(w, color), w: w}
}

func (p *printer) linef(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}
