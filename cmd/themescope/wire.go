package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/themescope/internal/adapters/driven/ai"
	"github.com/custodia-labs/themescope/internal/adapters/driven/cluster/kmeans"
	"github.com/custodia-labs/themescope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/themescope/internal/adapters/driven/history/chrome"
	"github.com/custodia-labs/themescope/internal/adapters/driven/topicmodel/nmf"
	"github.com/custodia-labs/themescope/internal/adapters/driving/cli"
	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/core/services"
	"github.com/custodia-labs/themescope/internal/logger"
)

// wire builds the application for a configuration directory. An empty
// directory means ~/.themescope.
func wire(configDir string) (*cli.App, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}
	settings := services.NewSettingsService(store, ai.NewConfigValidator())

	return &cli.App{
		Settings: settings,
		NewRun: func(ctx context.Context, cfg cli.RunConfig) (*cli.Run, error) {
			current, err := settings.Get()
			if err != nil {
				return nil, fmt.Errorf("read settings: %w", err)
			}
			return newRun(ctx, cfg, current, prompts), nil
		},
	}, nil
}

// newRun assembles the run-scoped services. AI providers that cannot be
// reached are left out and reported as warnings.
func newRun(
	ctx context.Context,
	cfg cli.RunConfig,
	settings *domain.AppSettings,
	prompts driven.PromptStore,
) *cli.Run {
	path := cfg.HistoryPath
	if path == "" {
		path = settings.History.Path
	}
	history := chrome.NewReader(path)
	logger.Debug("History database: %s", history.Path())

	aiServices := &ai.InitResult{}
	if !cfg.Offline {
		aiServices = ai.Init(ctx, settings)
	}

	topics := nmf.New(nmf.DefaultOptions())
	analyzer := services.NewAnalyzeService(history, topics)
	subthemes := services.NewSubthemeService(
		topics,
		kmeans.New(kmeans.DefaultSeed, kmeans.DefaultMaxIterations),
		aiServices.LLMService,
		aiServices.EmbeddingService,
		prompts,
	)
	hierarchy := services.NewHierarchyService(history, analyzer, subthemes, aiServices.LLMService, prompts)

	return &cli.Run{
		History:   history,
		Analyzer:  analyzer,
		Hierarchy: hierarchy,
		Subthemes: subthemes,
		Warnings:  aiServices.Warnings,
		Close:     aiServices.Close,
	}
}
