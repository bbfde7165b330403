// Package commands implements the CLI commands for ivpm.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.trai.ch/ivpm/internal/adapters/logger"
	"go.trai.ch/ivpm/internal/app"
	"go.trai.ch/ivpm/internal/build"
	"go.trai.ch/ivpm/internal/core/domain"
)

// CLI represents the command line interface for ivpm.
type CLI struct {
	app     Application
	logs    LogConfig
	rootCmd *cobra.Command

	logLevel   string
	jsonLogs   bool
	trace      bool
	projectDir string
}

// Application represents the application logic interface.
type Application interface {
	Update(ctx context.Context, opts app.UpdateOptions) error
	Sync(ctx context.Context, opts app.SyncOptions) ([]domain.PkgSyncResult, error)
	Status(ctx context.Context, opts app.StatusOptions) ([]domain.PkgStatus, error)
	CacheInit(dir string) (string, error)
	CacheInfo(dir string) (*app.CacheReport, error)
	CacheClean(dir string, days int) ([]domain.CacheEntry, error)
	Clone(ctx context.Context, opts app.CloneOptions) error
}

// LogConfig is the part of the logger the global flags adjust.
type LogConfig interface {
	SetLevel(level slog.Level)
	SetJSON(enable bool)
}

// New creates a new CLI instance with the given app. logs may be nil.
func New(a Application, logs LogConfig) *CLI {
	rootCmd := &cobra.Command{
		Use:           "ivpm",
		Short:         "A project-local package manager for mixed-language source trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		logs:    logs,
		rootCmd: rootCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.BoolVar(&c.jsonLogs, "json-logs", false, "Write logs and progress as JSON lines")
	pf.BoolVar(&c.trace, "trace", false, "Log a timing span for every package operation at debug level")
	pf.StringVarP(&c.projectDir, "project-dir", "p", "", "Project directory (default: current directory)")
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return c.configureLogs()
	}

	rootCmd.AddCommand(c.newUpdateCmd())
	rootCmd.AddCommand(c.newSyncCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newCloneCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configureLogs() error {
	level, err := logger.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	if c.logs != nil {
		c.logs.SetLevel(level)
		c.logs.SetJSON(c.jsonLogs)
	}
	return nil
}

// runOptions collects the global flags shared by the package commands.
func (c *CLI) runOptions(cmd *cobra.Command) app.RunOptions {
	jobs := 0
	if f := cmd.Flags().Lookup("jobs"); f != nil {
		jobs, _ = cmd.Flags().GetInt("jobs")
	}
	return app.RunOptions{
		ProjectDir: c.projectDir,
		Jobs:       jobs,
		Trace:      c.trace,
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
