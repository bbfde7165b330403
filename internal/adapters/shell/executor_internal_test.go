package shell

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	sep := string(os.PathListSeparator)

	tests := []struct {
		name      string
		sysEnv    []string
		overrides []string
		expected  []string
	}{
		{
			name:     "inherits everything",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HTTPS_PROXY=http://proxy:3128"},
			expected: []string{"USER=test", "PATH=/bin", "HTTPS_PROXY=http://proxy:3128"},
		},
		{
			name:      "override replaces in place",
			sysEnv:    []string{"USER=test", "PIP_CACHE_DIR=/old"},
			overrides: []string{"PIP_CACHE_DIR=/cache/.pip-cache"},
			expected:  []string{"USER=test", "PIP_CACHE_DIR=/cache/.pip-cache"},
		},
		{
			name:      "new keys are appended",
			sysEnv:    []string{"USER=test"},
			overrides: []string{"VIRTUAL_ENV=/ws/packages/python"},
			expected:  []string{"USER=test", "VIRTUAL_ENV=/ws/packages/python"},
		},
		{
			name:      "PATH replaced",
			sysEnv:    []string{"PATH=/bin"},
			overrides: []string{"PATH=/venv/bin"},
			expected:  []string{"PATH=/venv/bin"},
		},
		{
			name:      "PATH prepended",
			sysEnv:    []string{"PATH=/bin"},
			overrides: []string{"PATH=/venv/bin" + sep},
			expected:  []string{"PATH=/venv/bin" + sep + "/bin"},
		},
		{
			name:      "PATH prepend without inherited PATH",
			overrides: []string{"PATH=/venv/bin" + sep},
			expected:  []string{"PATH=/venv/bin"},
		},
		{
			name:      "malformed entries ignored",
			sysEnv:    []string{"NOEQUALS", "A=1"},
			overrides: []string{"ALSO"},
			expected:  []string{"A=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.overrides))
		})
	}
}

func TestLookPath_EmptyPATH(t *testing.T) {
	_, err := lookPath("echo", []string{"USER=test"})
	assert.Error(t, err)
}

func TestLookPath_ExecutableNotFound(t *testing.T) {
	_, err := lookPath("nonexistent-command", []string{"PATH=/nonexistent/dir"})
	assert.Error(t, err)
}

func TestLookPath_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := lookPath("nonexistent", []string{"PATH=:" + tmpDir})
	assert.Error(t, err)
}

func TestFindExecutable_NonExistent(t *testing.T) {
	assert.Error(t, findExecutable("/nonexistent/file"))
}

func TestFindExecutable_Directory(t *testing.T) {
	assert.Error(t, findExecutable(t.TempDir()))
}
