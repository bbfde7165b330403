package events

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize/english"
	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/ui/output"
	"go.trai.ch/ivpm/internal/ui/style"
)

// Linear renders events as chronological, name-prefixed lines. It suits CI
// logs as well as terminals.
type Linear struct {
	mu    sync.Mutex
	w     io.Writer
	paint *output.Painter
}

// NewLinear creates a Linear listener writing to w. Colour is used when
// color is true and NO_COLOR is unset.
func NewLinear(w io.Writer, color bool) *Linear {
	if w == nil {
		w = os.Stderr
	}
	return &Linear{w: w, paint: output.New(w, color)}
}

// SetColor switches colour on or off for subsequent lines.
func (l *Linear) SetColor(color bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paint = output.New(l.w, color)
}

// OnEvent implements ports.EventListener.
func (l *Linear) OnEvent(ev domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Kind {
	case domain.EventPackageStart:
		l.printf(ev.Name, "Loading %s %s", ev.SrcType, ev.SrcDesc)
	case domain.EventPackageComplete:
		detail := ""
		if ev.CacheHit {
			detail = " (cache hit)"
		}
		l.printf(ev.Name, "%s Loaded%s in %s", l.ok(), detail, round(ev.Duration))
	case domain.EventPackageError:
		l.printf(ev.Name, "%s Failed after %s: %s", l.fail(), round(ev.Duration), ev.Message)
	case domain.EventVenvStart:
		l.printf(ev.Name, "Creating python environment")
	case domain.EventVenvComplete:
		l.printf(ev.Name, "%s Python environment ready in %s", l.ok(), round(ev.Duration))
	case domain.EventVenvError:
		l.printf(ev.Name, "%s Python environment failed: %s", l.fail(), ev.Message)
	case domain.EventUpdateComplete:
		l.summary(ev.Summary)
	}
}

func (l *Linear) summary(s domain.UpdateSummary) {
	_, _ = fmt.Fprintf(l.w, "Updated %s in %s: %d cached (%d hits, %d misses), %d editable, %s\n",
		english.Plural(s.Total, "package", ""),
		round(s.Duration),
		s.Cacheable, s.CacheHits, s.CacheMisses,
		s.Editable,
		english.Plural(s.Errors, "error", ""),
	)
}

func (l *Linear) ok() string {
	return l.paint.OK(style.Check)
}

func (l *Linear) fail() string {
	return l.paint.Fail(style.Cross)
}

// printf writes one line prefixed with [name]. Must be called with l.mu held.
func (l *Linear) printf(name, format string, args ...any) {
	prefix := l.paint.Faint(fmt.Sprintf("[%s]", name))
	_, _ = fmt.Fprintf(l.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// LineWriter returns a writer that prints complete lines of subprocess output
// prefixed with [name]. Close flushes a trailing partial line.
func (l *Linear) LineWriter(name string) io.WriteCloser {
	return &lineWriter{l: l, name: name}
}

type lineWriter struct {
	l    *Linear
	name string
	buf  bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := w.buf.Next(i + 1)
		w.emit(line)
	}
	return len(p), nil
}

func (w *lineWriter) Close() error {
	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
	return nil
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	_, _ = fmt.Fprintf(w.l.w, "[%s] %s\n", w.name, line)
}

func round(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(100 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Millisecond)
	default:
		return d
	}
}
