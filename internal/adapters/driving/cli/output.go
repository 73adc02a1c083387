package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/themescope/internal/adapters/driven/report"
	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

var (
	primaryColour = lipgloss.Color("#7C3AED")
	borderColour  = lipgloss.Color("#45475A")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColour).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(borderColour)
)

// writeReport renders with the named format to path. An empty path or "-"
// writes to the command's output; an existing directory receives
// <baseName><ext>. It returns where the report went.
func writeReport(
	cmd *cobra.Command,
	format, path, baseName string,
	render func(driven.ReportWriter, io.Writer) error,
) (string, error) {
	w, err := report.ForFormat(format)
	if err != nil {
		return "", err
	}
	if path == "" || path == "-" {
		return "", render(w, cmd.OutOrStdout())
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, baseName+w.Extension())
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(w, f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printTable writes a bordered table on terminals and pipe-separated rows
// otherwise.
func printTable(cmd *cobra.Command, headers []string, rows [][]string) {
	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		cmd.Println(strings.Join(headers, " | "))
		for _, r := range rows {
			cmd.Println(strings.Join(r, " | "))
		}
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	cmd.Println(t.Render())
}

func themeRows(themes []domain.ThemeRecord) [][]string {
	rows := make([][]string, len(themes))
	for i, th := range themes {
		rows[i] = []string{
			strconv.Itoa(th.ID),
			strings.Join(th.Keywords[:min(6, len(th.Keywords))], ", "),
			strconv.Itoa(th.ItemCount),
			strconv.FormatFloat(th.TimeConsistency, 'f', 2, 64),
			th.Category,
		}
	}
	return rows
}

func hierarchyRows(h *domain.ThemeHierarchy) [][]string {
	rows := make([][]string, 0, len(h.Themes))
	for _, th := range h.Themes {
		subs := make([]string, len(th.Subthemes))
		for i, s := range th.Subthemes {
			subs[i] = s.Label
		}
		rows = append(rows, []string{th.Label, strings.Join(subs, ", "), strconv.Itoa(len(th.Sources))})
	}
	return rows
}
