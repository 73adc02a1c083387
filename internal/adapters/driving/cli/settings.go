package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the default history database and runtime limits.

Settings are stored in config.toml inside the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a group of settings",
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider used for relevance filtering and clustering.

Without --provider the command asks interactively. API keys are always read
from the terminal without echo.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long: `Configure the LLM used for persona extraction, theme titles and subtheme grouping.

Without --provider the command asks interactively. API keys are always read
from the terminal without echo.`,
	RunE: runSettingsLLM,
}

var settingsHistoryCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Set the default browser history database",
	Long:  `Set the default history database. An empty path restores auto-detection.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsHistory,
}

var settingsRuntimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Set worker and request-rate limits",
	RunE:  runSettingsRuntime,
}

var (
	providerFlag        string
	modelFlag           string
	skipValidateFlag    bool
	includeArchivedFlag bool
	workersFlag         int
	rpsFlag             float64
)

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&providerFlag, "provider", "", "provider name (ollama, openai, anthropic)")
		c.Flags().StringVar(&modelFlag, "model", "", "model name (default depends on provider)")
		c.Flags().BoolVar(&skipValidateFlag, "no-validate", false, "skip the connectivity check")
	}
	settingsHistoryCmd.Flags().BoolVar(&includeArchivedFlag, "include-archived", true, "read the archived history database by default")
	settingsRuntimeCmd.Flags().IntVar(&workersFlag, "workers", domain.DefaultWorkers, "themes expanded concurrently")
	settingsRuntimeCmd.Flags().Float64Var(&rpsFlag, "requests-per-second", 2, "AI provider request rate, 0 for unlimited")

	settingsSetCmd.AddCommand(settingsEmbeddingCmd)
	settingsSetCmd.AddCommand(settingsLLMCmd)
	settingsSetCmd.AddCommand(settingsHistoryCmd)
	settingsSetCmd.AddCommand(settingsRuntimeCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsService() (driving.SettingsService, error) {
	a, err := currentApp()
	if err != nil {
		return nil, err
	}
	if a.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return a.Settings, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[History]")
	if settings.History.Path != "" {
		cmd.Printf("  Path: %s\n", settings.History.Path)
	} else {
		cmd.Printf("  Path: (auto-detect)\n")
	}
	cmd.Printf("  Include archived: %t\n", settings.History.IncludeArchived)
	cmd.Println()

	cmd.Println("[Embedding]")
	showProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	showProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Runtime]")
	cmd.Printf("  Workers: %d\n", settings.Runtime.Workers)
	if settings.Runtime.RequestsPerSecond > 0 {
		cmd.Printf("  Requests per second: %g\n", settings.Runtime.RequestsPerSecond)
	} else {
		cmd.Printf("  Requests per second: unlimited\n")
	}
	return nil
}

func showProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Printf("  Provider: (none)\n")
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

// providerChoice describes one of the two configurable AI roles.
type providerChoice struct {
	name      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	return configureProvider(cmd, providerChoice{
		name:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       svc.SetEmbeddingProvider,
		validate:  svc.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	return configureProvider(cmd, providerChoice{
		name:      "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       svc.SetLLMProvider,
		validate:  svc.ValidateLLMConfig,
	})
}

func configureProvider(cmd *cobra.Command, choice providerChoice) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	var selected domain.AIProvider
	if providerFlag != "" {
		p, err := domain.ParseAIProvider(providerFlag)
		if err != nil {
			return err
		}
		selected = p
		if !slices.Contains(choice.providers, selected) {
			return fmt.Errorf("%w: %q is not a supported %s provider", domain.ErrConfiguration, providerFlag, choice.name)
		}
	} else {
		cmd.Printf("Select %s Provider\n", choice.name)
		for i, p := range choice.providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		idx := parseChoice(readLine(reader), len(choice.providers), 1)
		selected = choice.providers[idx-1]
	}

	model := modelFlag
	if model == "" {
		defaultModel := choice.defaults[selected]
		if providerFlag != "" {
			model = defaultModel
		} else {
			cmd.Printf("Enter model name [%s]: ", defaultModel)
			if model = readLine(reader); model == "" {
				model = defaultModel
			}
		}
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := choice.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", choice.name, err)
	}

	if !skipValidateFlag {
		cmd.Print("Validating configuration... ")
		if err := choice.validate(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("%s configuration validation failed: %w", choice.name, err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("%s provider configured: %s (%s)\n", choice.name, selected.Description(), model)
	return nil
}

func runSettingsHistory(cmd *cobra.Command, args []string) error {
	svc, err := settingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	path := ""
	if len(args) == 1 {
		path = strings.TrimSpace(args[0])
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: history database %s: %w", domain.ErrConfiguration, path, err)
		}
	}
	settings.History.Path = path
	if cmd.Flags().Changed("include-archived") {
		settings.History.IncludeArchived = includeArchivedFlag
	}
	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if path == "" {
		cmd.Println("History path reset to auto-detect.")
	} else {
		cmd.Printf("History path set to: %s\n", path)
	}
	return nil
}

func runSettingsRuntime(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("workers") && !cmd.Flags().Changed("requests-per-second") {
		return errors.New("nothing to change: pass --workers or --requests-per-second")
	}
	if workersFlag < 1 {
		return fmt.Errorf("%w: --workers must be at least 1", domain.ErrConfiguration)
	}
	if rpsFlag < 0 {
		return fmt.Errorf("%w: --requests-per-second must not be negative", domain.ErrConfiguration)
	}

	svc, err := settingsService()
	if err != nil {
		return err
	}
	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if cmd.Flags().Changed("workers") {
		settings.Runtime.Workers = workersFlag
	}
	if cmd.Flags().Changed("requests-per-second") {
		settings.Runtime.RequestsPerSecond = rpsFlag
	}
	if err := svc.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Runtime settings saved: %d workers, %g requests/s\n",
		settings.Runtime.Workers, settings.Runtime.RequestsPerSecond)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, otherwise a line
// from reader.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
