// Package cli provides the themescope command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/core/ports/driving"
	"github.com/custodia-labs/themescope/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// RunConfig holds the per-invocation inputs that shape run-scoped services.
type RunConfig struct {
	// HistoryPath overrides the configured history database.
	HistoryPath string

	// Offline skips AI provider setup.
	Offline bool
}

// Run bundles the services for a single analysis or export.
type Run struct {
	History   driven.HistoryReader
	Analyzer  driving.AnalyzeService
	Hierarchy driving.HierarchyService
	Subthemes driving.SubthemeService

	// Warnings describes optional collaborators that could not be set up.
	Warnings []string

	// Close releases provider resources. May be nil.
	Close func()
}

// App is what the commands need from the composition root.
type App struct {
	Settings driving.SettingsService
	NewRun   func(ctx context.Context, cfg RunConfig) (*Run, error)
}

// Wiring builds the App once the config directory is known.
type Wiring func(configDir string) (*App, error)

var (
	wiring Wiring
	app    *App
)

var rootCmd = &cobra.Command{
	Use:   "themescope",
	Short: "Discover recurring interests in your browsing history",
	Long: `themescope reads a local browser history database and summarises it into
themes, subthemes and representative sources.

It runs fully offline with the built-in topic model. Configure an LLM or
embedding provider with 'themescope settings set' for richer labels.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.themescope)")
}

// SetWiring registers the function that builds services for commands.
func SetWiring(w Wiring) {
	wiring = w
	app = nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentApp builds the App on first use so --config-dir is honoured.
func currentApp() (*App, error) {
	if app != nil {
		return app, nil
	}
	if wiring == nil {
		return nil, errors.New("services not configured")
	}
	built, err := wiring(configDir)
	if err != nil {
		return nil, fmt.Errorf("initialise: %w", err)
	}
	app = built
	return app, nil
}

// startRun builds run-scoped services and reports setup warnings.
func startRun(cmd *cobra.Command, cfg RunConfig) (*Run, error) {
	a, err := currentApp()
	if err != nil {
		return nil, err
	}
	if a.NewRun == nil {
		return nil, errors.New("analysis services not configured")
	}
	run, err := a.NewRun(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range run.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return run, nil
}

func (r *Run) close() {
	if r != nil && r.Close != nil {
		r.Close()
	}
}
