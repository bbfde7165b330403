package logger

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/ivpm/internal/ui/output"
	"go.trai.ch/ivpm/internal/ui/style"
)

// PrettyHandler is a slog.Handler for terminals. Warnings and errors carry a
// glyph and attributes are rendered as key=value pairs after the message.
type PrettyHandler struct {
	w     io.Writer
	paint *output.Painter
	level slog.Leveler
	attrs []string
	group string
}

// NewPrettyHandler creates a PrettyHandler writing to w. A nil level means info.
func NewPrettyHandler(w io.Writer, level slog.Leveler, color bool) *PrettyHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	p := output.New(w, color)
	return &PrettyHandler{w: p.Output(), paint: p, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line string
	switch {
	case r.Level >= slog.LevelError:
		line = h.paint.Fail(style.Cross + " " + r.Message)
	case r.Level >= slog.LevelWarn:
		line = h.paint.Warn(style.Bang + " " + r.Message)
	case r.Level >= slog.LevelInfo:
		line = r.Message
	default:
		line = h.paint.Muted(style.Package + " " + r.Message)
	}

	attrs := slices.Clip(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, formatAttr(h.group, a))
		return true
	})
	if len(attrs) > 0 {
		line += " " + h.paint.Faint(strings.Join(attrs, " "))
	}

	_, err := io.WriteString(h.w, line+"\n")
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]string, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, formatAttr(h.group, a))
	}
	return &next
}

// WithGroup returns a new Handler that prefixes later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}

// formatAttr renders key=value, quoting values that contain spaces.
func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	v := a.Value.Resolve().String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	return key + "=" + v
}
