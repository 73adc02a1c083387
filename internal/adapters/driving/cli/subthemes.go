package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

var (
	subthemesHistory       historyFlags
	subthemesFormat        string
	subthemesOutput        string
	subthemesRelevanceTopN int
	subthemesDiversity     float64
	subthemesMaxRows       int
)

var subthemesCmd = &cobra.Command{
	Use:   "subthemes [theme]",
	Short: "Group history related to a theme into subthemes",
	Long: `Finds the visits most relevant to a theme or free-form prompt and groups them
into subthemes with example sources.

Relevance uses the configured embedding provider, or word overlap without one.
Grouping uses the LLM when configured, then embedding clusters, then the
built-in topic model over a diversity-sampled slice of the relevant visits.`,
	Example: `  themescope subthemes "machine learning"
  themescope subthemes cooking --since 2024-01-01 -f markdown -o out/`,
	Args: cobra.ExactArgs(1),
	RunE: runSubthemes,
}

func init() {
	subthemesHistory.bind(subthemesCmd, false)
	subthemesCmd.Flags().StringVarP(&subthemesFormat, "format", "f", "json", "report format: json, yaml or markdown")
	subthemesCmd.Flags().StringVarP(&subthemesOutput, "output", "o", "", "report file or directory (default stdout)")
	subthemesCmd.Flags().IntVar(&subthemesRelevanceTopN, "relevance-top-n", domain.DefaultRelevanceTopN, "relevant items kept before grouping")
	subthemesCmd.Flags().Float64Var(&subthemesDiversity, "diversity", domain.DefaultDiversity, "0..1, higher favours cross-month and cross-domain spread")
	subthemesCmd.Flags().IntVar(&subthemesMaxRows, "max-rows", domain.DefaultMaxRows, "maximum relevant items handed to the topic model")
	rootCmd.AddCommand(subthemesCmd)
}

func runSubthemes(cmd *cobra.Command, args []string) error {
	label := strings.TrimSpace(args[0])
	if label == "" {
		return fmt.Errorf("%w: theme must not be empty", domain.ErrConfiguration)
	}
	opts := domain.SubthemeOptions{
		RelevanceTopN: subthemesRelevanceTopN,
		Sampling:      domain.DefaultAnalyzeOptions().Sampling,
		Prefer:        subthemesHistory.prefer(),
	}
	opts.Sampling.Diversity = subthemesDiversity
	opts.Sampling.MaxRows = subthemesMaxRows
	if err := opts.Validate(); err != nil {
		return err
	}

	a, err := currentApp()
	if err != nil {
		return err
	}
	query, err := subthemesHistory.query(cmd, settingsOrDefaults(a))
	if err != nil {
		return err
	}
	if query.Since != nil && query.Until != nil && query.Since.After(*query.Until) {
		return fmt.Errorf("%w: --since is after --until", domain.ErrConfiguration)
	}

	run, err := startRun(cmd, RunConfig{HistoryPath: subthemesHistory.path})
	if err != nil {
		return err
	}
	defer run.close()
	if run.History == nil || run.Subthemes == nil {
		return errors.New("subtheme service not configured")
	}

	visits, err := run.History.Load(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	subs, err := run.Subthemes.Subthemes(cmd.Context(), label, visits, opts)
	if err != nil {
		return fmt.Errorf("subthemes failed: %w", err)
	}

	hierarchy := &domain.ThemeHierarchy{Themes: []domain.AggregatedTheme{{Label: label, Subthemes: subs}}}
	path, err := writeReport(cmd, subthemesFormat, subthemesOutput, "subthemes",
		func(w driven.ReportWriter, out io.Writer) error { return w.WriteHierarchy(out, hierarchy) })
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	if len(subs) == 0 {
		cmd.Printf("No history related to %q.\n", label)
	} else {
		rows := make([][]string, len(subs))
		for i, s := range subs {
			rows[i] = []string{s.Label, fmt.Sprint(len(s.Sources))}
		}
		printTable(cmd, []string{"Subtheme", "Sources"}, rows)
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
