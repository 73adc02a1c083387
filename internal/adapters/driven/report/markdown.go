package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure MarkdownWriter implements the interface.
var _ driven.ReportWriter = (*MarkdownWriter)(nil)

// MarkdownWriter writes human-readable reports.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Format returns "markdown".
func (w *MarkdownWriter) Format() string { return FormatMarkdown }

// Extension returns ".md".
func (w *MarkdownWriter) Extension() string { return ".md" }

// WriteAnalysis renders a summary table followed by one section per theme.
func (w *MarkdownWriter) WriteAnalysis(out io.Writer, result *domain.AnalysisResult) error {
	md := markdown.NewMarkdown(out)
	md.H1("Browsing themes")
	md.PlainText("")
	md.PlainTextf("Run `%s`, generated %s.", result.RunID, result.GeneratedAt.Format("2006-01-02 15:04 MST"))
	md.PlainText("")

	if len(result.Themes) == 0 {
		md.PlainText("No themes found.")
		return md.Build()
	}

	rows := make([][]string, len(result.Themes))
	for i, th := range result.Themes {
		rows[i] = []string{
			strconv.Itoa(th.ID),
			strings.Join(th.Keywords[:min(5, len(th.Keywords))], ", "),
			strconv.Itoa(th.ItemCount),
			strconv.FormatFloat(th.TimeConsistency, 'f', 3, 64),
			th.Category,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Theme", "Keywords", "Visits", "Consistency", "Category"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, th := range result.Themes {
		md.H2(fmt.Sprintf("Theme %d: %s", th.ID, strings.Join(th.Keywords[:min(3, len(th.Keywords))], " ")))
		md.PlainText("")
		if len(th.Representatives) > 0 {
			items := make([]string, len(th.Representatives))
			for i, v := range th.Representatives {
				items[i] = link(v.Title, v.URL)
			}
			md.BulletList(items...)
			md.PlainText("")
		}
	}
	return md.Build()
}

// WriteHierarchy renders themes as H2, subthemes as H3 and sources as lists.
func (w *MarkdownWriter) WriteHierarchy(out io.Writer, hierarchy *domain.ThemeHierarchy) error {
	h := normalised(hierarchy)
	md := markdown.NewMarkdown(out)
	md.H1("Interest map")
	md.PlainText("")

	if len(h.Themes) == 0 {
		md.PlainText("No themes found.")
		return md.Build()
	}

	for _, th := range h.Themes {
		md.H2(th.Label)
		md.PlainText("")
		if th.Rationale != "" {
			md.PlainText(th.Rationale)
			md.PlainText("")
		}
		writeSources(md, th.Sources)
		for _, sub := range th.Subthemes {
			md.H3(sub.Label)
			md.PlainText("")
			if sub.Rationale != "" {
				md.PlainText(sub.Rationale)
				md.PlainText("")
			}
			writeSources(md, sub.Sources)
		}
	}
	return md.Build()
}

func writeSources(md *markdown.Markdown, sources []domain.Source) {
	if len(sources) == 0 {
		return
	}
	items := make([]string, len(sources))
	for i, s := range sources {
		items[i] = link(s.Title, s.URL)
	}
	md.BulletList(items...)
	md.PlainText("")
}

// link renders a Markdown link, or plain text when either part is missing.
func link(title, url string) string {
	title = strings.NewReplacer("[", "\\[", "]", "\\]").Replace(strings.TrimSpace(title))
	switch {
	case url == "":
		return title
	case title == "":
		return "<" + url + ">"
	default:
		return "[" + title + "](" + url + ")"
	}
}
