package ports

import "context"

// GitRunner runs git as a subprocess.
//
//go:generate mockgen -source=git.go -destination=mocks/mock_git.go -package=mocks
type GitRunner interface {
	// Run executes git with args inside dir and returns stdout with trailing
	// whitespace trimmed. A non-zero exit returns a *domain.GitError.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}
