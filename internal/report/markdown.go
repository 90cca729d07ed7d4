package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/userclean/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing, e.g. as a CI job
// summary.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	if !summary.IsEmpty() {
		w.writeRecords(md, summary)
		w.writeRanking(md, "Top Email Domains", "Domain", summary.TopDomains)
		w.writePieChart(md, summary.TopDomains)
		if summary.ShowCities() {
			w.writeRanking(md, "Top Cities", "City", summary.TopCities)
		}
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run property table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("userclean Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Mode", string(summary.Mode)},
			{"Input", "`" + escapeCell(summary.InputPath) + "`"},
			{"Output", "`" + escapeCell(summary.OutputPath) + "`"},
			{"Chunks", strconv.Itoa(summary.Chunks) + " x " + strconv.Itoa(summary.ChunkSize)},
			{"Status", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on summary state.
func (w *MarkdownWriter) getStatusText(summary *model.Summary) string {
	if summary.Error != "" {
		return "❌ Error - " + escapeCell(summary.Error)
	}
	return "✅ Complete"
}

// writeAlert writes one alert describing the overall outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.Error != "":
		md.Cautionf("The run failed: %s", summary.Error)
	case summary.IsEmpty():
		md.Note(EmptyInputMessage)
	case summary.RejectedShare() > alertThreshold:
		md.Warningf(
			"More than half of the input was rejected (%d of %d records).",
			summary.Rejected, summary.Input,
		)
	case summary.Rejected > 0:
		md.Importantf("%d of %d records were rejected.", summary.Rejected, summary.Input)
	default:
		md.Tip("All records passed validation.")
	}
	md.PlainText("")
}

// writeRecords writes the record count table.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Records")
	md.PlainText("")

	rows := [][]string{
		{"Input", strconv.Itoa(summary.Input)},
		{"Accepted", strconv.Itoa(summary.Accepted)},
		{"**Rejected**", "**" + strconv.Itoa(summary.Rejected) + "**"},
	}
	for _, reason := range model.RejectReasons {
		if n := summary.Rejections.Get(reason); n > 0 {
			rows = append(rows, []string{"↳ " + reason.String(), strconv.Itoa(n)})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRanking writes a ranked table.
func (w *MarkdownWriter) writeRanking(md *markdown.Markdown, title, column string, entries []model.RankedEntry) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(i + 1), escapeCell(e.Key), strconv.Itoa(e.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", column, "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the ranked domains.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, entries []model.RankedEntry) {
	if len(entries) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Email Domain Distribution"),
		piechart.WithShowData(true),
	)
	for _, e := range entries {
		chart.LabelAndIntValue(e.Key, uint64(e.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Summary generated by userclean*")
}

// escapeCell escapes characters that would break a Markdown table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
