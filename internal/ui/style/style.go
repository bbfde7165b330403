// Package style defines the colours and glyphs ivpm uses in its reports.
package style

import "github.com/charmbracelet/lipgloss"

// Colours by role.
var (
	Success = lipgloss.Color("#22A06B")
	Warning = lipgloss.Color("#F59E0B")
	Failure = lipgloss.Color("#D93025")
	Accent  = lipgloss.Color("#8B5CF6")
	Muted   = lipgloss.Color("#667085")
)

// Glyphs.
const (
	Check    = "✓"
	Cross    = "✗"
	Bang     = "!"
	Modified = "~"
	Package  = "●"
	Skipped  = "○"
	Arrow    = "→"
)
