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
	exportHistory  historyFlags
	exportSampling samplingFlags
	exportFormat   string
	exportOutput   string
	exportMethod   string
	exportBounds   struct {
		themesMin, themesMax   int
		subsMin, subsMax       int
		sourcesMin, sourcesMax int
	}
	exportRelevanceTopN int
	exportWorkers       int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a theme, subtheme and source map",
	Long: `Builds a three-level interest map: themes, subthemes under each theme, and
source pages under each. Theme discovery falls back from the chosen method to
LLM title clustering and finally to frequent title terms, so the export succeeds
without any AI provider configured.

Each level is clamped to its --*-min/--*-max bounds.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportHistory.bind(exportCmd, true)
	exportSampling.bind(exportCmd)
	fs := exportCmd.Flags()
	fs.StringVarP(&exportFormat, "format", "f", "json", "report format: json, yaml or markdown")
	fs.StringVarP(&exportOutput, "output", "o", "", "report file or directory (default stdout)")
	fs.StringVar(&exportMethod, "method", string(domain.MethodNMF), "primary theme method: nmf or llm")
	fs.IntVar(&exportBounds.themesMin, "themes-min", domain.DefaultThemesMin, "minimum number of themes")
	fs.IntVar(&exportBounds.themesMax, "themes-max", domain.DefaultThemesMax, "maximum number of themes")
	fs.IntVar(&exportBounds.subsMin, "subs-min", domain.DefaultSubthemesMin, "minimum subthemes per theme")
	fs.IntVar(&exportBounds.subsMax, "subs-max", domain.DefaultSubthemesMax, "maximum subthemes per theme")
	fs.IntVar(&exportBounds.sourcesMin, "sources-min", domain.DefaultSourcesMin, "minimum sources per theme and subtheme")
	fs.IntVar(&exportBounds.sourcesMax, "sources-max", domain.DefaultSourcesMax, "maximum sources per theme and subtheme")
	fs.IntVar(&exportRelevanceTopN, "relevance-top-n", domain.DefaultRelevanceTopN, "items kept per theme before grouping into subthemes")
	fs.IntVar(&exportWorkers, "workers", domain.DefaultWorkers, "themes expanded concurrently (default from settings)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := currentApp()
	if err != nil {
		return err
	}
	settings := settingsOrDefaults(a)

	opts, err := exportOptions(cmd, settings)
	if err != nil {
		return err
	}

	run, err := startRun(cmd, RunConfig{HistoryPath: exportHistory.path})
	if err != nil {
		return err
	}
	defer run.close()
	if run.Hierarchy == nil {
		return errors.New("hierarchy service not configured")
	}

	hierarchy, err := run.Hierarchy.Export(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	path, err := writeReport(cmd, exportFormat, exportOutput, "themescope",
		func(w driven.ReportWriter, out io.Writer) error { return w.WriteHierarchy(out, hierarchy) })
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}

	if len(hierarchy.Themes) == 0 {
		cmd.Println("No themes found.")
	} else {
		printTable(cmd, []string{"Theme", "Subthemes", "Sources"}, hierarchyRows(hierarchy))
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

// exportOptions maps flags onto export options and validates them.
func exportOptions(cmd *cobra.Command, settings *domain.AppSettings) (domain.ExportOptions, error) {
	opts := domain.DefaultExportOptions()
	var err error
	if opts.Analyze.History, err = exportHistory.query(cmd, settings); err != nil {
		return opts, err
	}
	opts.Analyze.Prefer = exportHistory.prefer()
	exportSampling.apply(&opts.Analyze)

	opts.Method = domain.Method(exportMethod)
	opts.Themes = domain.Bounds{Min: exportBounds.themesMin, Max: exportBounds.themesMax}
	opts.Subthemes = domain.Bounds{Min: exportBounds.subsMin, Max: exportBounds.subsMax}
	opts.Sources = domain.Bounds{Min: exportBounds.sourcesMin, Max: exportBounds.sourcesMax}
	opts.RelevanceTopN = exportRelevanceTopN
	opts.Workers = exportWorkers
	if !cmd.Flags().Changed("workers") && settings.Runtime.Workers > 0 {
		opts.Workers = settings.Runtime.Workers
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
