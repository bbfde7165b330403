// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/ivpm/internal/core/ports"
)

// messager describes an error that can report its own message without the chain.
// zerr.Error provides it.
type messager interface {
	Message() string
}

// metadataer describes an error that carries key/value metadata.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one level of an error chain prepared for display.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	color    bool
	output   io.Writer
	level    *slog.LevelVar
}

// New creates a new Logger instance writing uncoloured pretty output to stderr.
func New() ports.Logger {
	return newLogger(false)
}

func newLogger(color bool) *Logger {
	l := &Logger{
		output: os.Stderr,
		level:  &slog.LevelVar{},
		color:  color,
	}
	l.level.Set(slog.LevelInfo)
	l.rebuildLocked()
	return l
}

// rebuildLocked recreates the slog handler from the current settings.
// Must be called with l.mu held or before the logger is shared.
func (l *Logger) rebuildLocked() {
	w := l.output
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l.level})
	} else {
		handler = NewPrettyHandler(w, l.level, l.color)
	}
	l.logger = slog.New(handler)
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.output = w
	l.rebuildLocked()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuildLocked()
}

// SetColor switches colour on or off for pretty output.
func (l *Logger) SetColor(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.color = enable
	l.rebuildLocked()
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// ParseLevel maps a --log-level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error message with its cause chain.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// collectErrorEntries walks a zerr chain. A standard error ends the walk and
// contributes its full Error() text. Entries with an empty message fold their
// metadata into the next entry. Joined errors contribute the entries of each
// of their members in order.
func collectErrorEntries(err error) []ErrorEntry {
	return collectInto(nil, err, nil)
}

func collectInto(entries []ErrorEntry, err error, carried map[string]any) []ErrorEntry {
	for current := err; current != nil; {
		if j, ok := current.(interface{ Unwrap() []error }); ok {
			for _, member := range j.Unwrap() {
				entries = collectInto(entries, member, carried)
				carried = nil
			}
			return entries
		}

		m, ok := current.(messager)
		if !ok {
			return append(entries, ErrorEntry{Message: current.Error(), Metadata: carried})
		}

		var meta map[string]any
		if md, ok := current.(metadataer); ok {
			meta = md.Metadata()
		}
		if carried != nil {
			if meta == nil {
				meta = make(map[string]any, len(carried))
			}
			maps.Copy(meta, carried)
			carried = nil
		}

		if m.Message() == "" {
			carried = meta
		} else {
			entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: meta})
		}
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders entries as a main error followed by causes.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		var head, indent string
		if i == 0 {
			head, indent = "Error: ", "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			head, indent = "    → ", "      "
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}
