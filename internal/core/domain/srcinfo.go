// Package domain contains the core types of the package manager.
package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// SrcInfo locates a value in the manifest it was parsed from.
type SrcInfo struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether no location was recorded.
func (s SrcInfo) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String renders the location as file:line:column.
func (s SrcInfo) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Annotate attaches the location to err as file, line and column metadata.
// Sentinels are wrapped first so errors.Is still matches them.
func (s SrcInfo) Annotate(err error) error {
	if err == nil || s.IsZero() {
		return err
	}
	err = zerr.Wrap(err, "")
	err = zerr.With(err, "file", s.File)
	err = zerr.With(err, "line", s.Line)
	return zerr.With(err, "column", s.Column)
}
