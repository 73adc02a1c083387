package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

var (
	analyzeHistory  historyFlags
	analyzeSampling samplingFlags
	analyzeFormat   string
	analyzeOutput   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Find the main themes in browsing history",
	Long: `Samples browsing history across months and domains, fits a topic model and
keeps a diverse set of themes. Each theme lists its keywords, visit count,
how evenly it spreads over time, and a few representative pages.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeHistory.bind(analyzeCmd, false)
	analyzeSampling.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "json", "report format: json, yaml or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "report file or directory (default stdout)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	settings := settingsOrDefaults(a)

	opts := domain.DefaultAnalyzeOptions()
	if opts.History, err = analyzeHistory.query(cmd, settings); err != nil {
		return err
	}
	opts.Prefer = analyzeHistory.prefer()
	analyzeSampling.apply(&opts)
	if err := opts.Validate(); err != nil {
		return err
	}

	run, err := startRun(cmd, RunConfig{HistoryPath: analyzeHistory.path, Offline: true})
	if err != nil {
		return err
	}
	defer run.close()
	if run.Analyzer == nil {
		return errors.New("analysis service not configured")
	}

	result, err := run.Analyzer.Analyze(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	path, err := writeReport(cmd, analyzeFormat, analyzeOutput, "themes",
		func(w driven.ReportWriter, out io.Writer) error { return w.WriteAnalysis(out, result) })
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	if len(result.Themes) == 0 {
		cmd.Println("No themes found in the selected range.")
	} else {
		printTable(cmd, []string{"ID", "Keywords", "Visits", "Consistency", "Category"}, themeRows(result.Themes))
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
