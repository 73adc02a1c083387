package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	saveErr     error
	validateErr error
	saved       int

	embeddingProvider domain.AIProvider
	embeddingModel    string
	llmProvider       domain.AIProvider
	llmModel          string
	apiKey            string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.embeddingProvider, m.embeddingModel, m.apiKey = p, model, apiKey
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.apiKey = p, model, apiKey
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetHistoryPath(path string) error {
	m.settings.History.Path = path
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.validateErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.validateErr }

type mockAnalyzeService struct {
	result *domain.AnalysisResult
	err    error
	opts   domain.AnalyzeOptions
	calls  int
}

func (m *mockAnalyzeService) Analyze(_ context.Context, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error) {
	m.calls++
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockHierarchyService struct {
	result *domain.ThemeHierarchy
	err    error
	opts   domain.ExportOptions
	calls  int
}

func (m *mockHierarchyService) Export(_ context.Context, opts domain.ExportOptions) (*domain.ThemeHierarchy, error) {
	m.calls++
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockSubthemeService struct {
	result []domain.AggregatedSubtheme
	err    error
	label  string
	visits []domain.Visit
	opts   domain.SubthemeOptions
}

func (m *mockSubthemeService) Subthemes(
	_ context.Context, label string, visits []domain.Visit, opts domain.SubthemeOptions,
) ([]domain.AggregatedSubtheme, error) {
	m.label, m.visits, m.opts = label, visits, opts
	return m.result, m.err
}

type mockHistoryReader struct {
	visits []domain.Visit
	err    error
	query  domain.HistoryQuery
}

func (m *mockHistoryReader) Load(_ context.Context, q domain.HistoryQuery) ([]domain.Visit, error) {
	m.query = q
	return m.visits, m.err
}

// testApp wires mocks into the package-level App and records run configs.
type testApp struct {
	settings  *mockSettingsService
	analyzer  *mockAnalyzeService
	hierarchy *mockHierarchyService
	subthemes *mockSubthemeService
	history   *mockHistoryReader
	runs      []RunConfig
	closed    int
	warnings  []string
}

func installTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		settings:  newMockSettingsService(),
		analyzer:  &mockAnalyzeService{result: &domain.AnalysisResult{RunID: "run-1"}},
		hierarchy: &mockHierarchyService{result: &domain.ThemeHierarchy{}},
		subthemes: &mockSubthemeService{},
		history:   &mockHistoryReader{},
	}
	SetWiring(func(string) (*App, error) {
		return &App{
			Settings: ta.settings,
			NewRun: func(_ context.Context, cfg RunConfig) (*Run, error) {
				ta.runs = append(ta.runs, cfg)
				return &Run{
					History:   ta.history,
					Analyzer:  ta.analyzer,
					Hierarchy: ta.hierarchy,
					Subthemes: ta.subthemes,
					Warnings:  ta.warnings,
					Close:     func() { ta.closed++ },
				}, nil
			},
		}, nil
	})
	t.Cleanup(func() { SetWiring(nil) })
	return ta
}

// execute runs the root command with args and fresh flag values.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
