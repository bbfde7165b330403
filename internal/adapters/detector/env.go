// Package detector inspects the process environment to choose how output is
// rendered and how subprocesses are attached.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is the rendering mode for progress and subprocess output.
type OutputMode int

const (
	// ModeAuto picks a mode from the environment.
	ModeAuto OutputMode = iota
	// ModeInteractive colours output and runs installers on a pseudo-terminal.
	ModeInteractive
	// ModePlain writes uncoloured lines and pipes subprocess output.
	ModePlain
)

// String implements fmt.Stringer.
func (m OutputMode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModePlain:
		return "plain"
	default:
		return "auto"
	}
}

// Environment is what was detected about the current process.
type Environment struct {
	TTY bool
	CI  bool
}

// Mode returns the output mode the environment calls for.
func (e Environment) Mode() OutputMode {
	if !e.TTY || e.CI {
		return ModePlain
	}
	return ModeInteractive
}

// DetectEnvironment checks whether stdout is a terminal and whether a CI
// variable is set.
func DetectEnvironment() Environment {
	return Environment{
		TTY: term.IsTerminal(int(os.Stdout.Fd())),
		CI:  isCI(os.Getenv("CI")),
	}
}

func isCI(v string) bool {
	return v == "true" || v == "1"
}

// ResolveMode applies a user override to the detected environment.
// userFlag is one of auto, interactive, tty, plain, ci or empty.
func ResolveMode(env Environment, userFlag string) OutputMode {
	switch userFlag {
	case "interactive", "tty":
		return ModeInteractive
	case "plain", "ci":
		return ModePlain
	default:
		return env.Mode()
	}
}
