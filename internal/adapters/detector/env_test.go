package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ivpm/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	tests := []struct {
		name    string
		ciValue string
		wantCI  bool
	}{
		{name: "CI=true", ciValue: "true", wantCI: true},
		{name: "CI=1", ciValue: "1", wantCI: true},
		{name: "CI=false", ciValue: "false", wantCI: false},
		{name: "unset", ciValue: "", wantCI: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CI", tt.ciValue)

			env := detector.DetectEnvironment()
			assert.Equal(t, tt.wantCI, env.CI)
			if tt.wantCI {
				assert.Equal(t, detector.ModePlain, env.Mode())
			}
		})
	}
}

func TestEnvironment_Mode(t *testing.T) {
	assert.Equal(t, detector.ModeInteractive, detector.Environment{TTY: true}.Mode())
	assert.Equal(t, detector.ModePlain, detector.Environment{TTY: true, CI: true}.Mode())
	assert.Equal(t, detector.ModePlain, detector.Environment{}.Mode())
}

func TestResolveMode(t *testing.T) {
	tty := detector.Environment{TTY: true}
	pipe := detector.Environment{}

	tests := []struct {
		name string
		env  detector.Environment
		flag string
		want detector.OutputMode
	}{
		{name: "empty follows tty", env: tty, flag: "", want: detector.ModeInteractive},
		{name: "auto follows pipe", env: pipe, flag: "auto", want: detector.ModePlain},
		{name: "interactive override", env: pipe, flag: "interactive", want: detector.ModeInteractive},
		{name: "tty alias", env: pipe, flag: "tty", want: detector.ModeInteractive},
		{name: "plain override", env: tty, flag: "plain", want: detector.ModePlain},
		{name: "ci alias", env: tty, flag: "ci", want: detector.ModePlain},
		{name: "unknown falls back", env: tty, flag: "fancy", want: detector.ModeInteractive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.env, tt.flag))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "interactive", detector.ModeInteractive.String())
	assert.Equal(t, "plain", detector.ModePlain.String())
}
