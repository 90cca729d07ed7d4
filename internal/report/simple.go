package report

import (
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/userclean/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// Counts are formatted with locale-aware digit grouping (1,234,567).
type SimpleWriter struct {
	baseWriter

	// printer formats numbers for the configured language.
	printer *message.Printer

	// verbose adds timing and digest details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithLanguage sets the language used for number formatting.
// Default is English.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	if summary.IsEmpty() && summary.Error == "" {
		sb.WriteString(EmptyInputMessage)
		sb.WriteString("\n\n")
	} else {
		w.writeRecords(&sb, summary)
		w.writeRanking(&sb, "Top Email Domains", summary.TopDomains)
		if summary.ShowCities() {
			w.writeRanking(&sb, "Top Cities", summary.TopCities)
		}
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         USERCLEAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	w.printer.Fprintf(sb, "Run ID:  %s\n", summary.RunID)
	w.printer.Fprintf(sb, "Mode:    %s\n", summary.Mode)
	w.printer.Fprintf(sb, "Input:   %s\n", summary.InputPath)
	w.printer.Fprintf(sb, "Output:  %s\n", summary.OutputPath)
	w.printer.Fprintf(sb, "Status:  %s\n", statusText(summary))
	if w.verbose {
		w.printer.Fprintf(sb, "Started: %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
		w.printer.Fprintf(sb, "Elapsed: %s\n", summary.Elapsed)
	}
	sb.WriteString("\n")
}

// writeRecords writes the record counts and rejection breakdown.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nRECORDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	w.printer.Fprintf(sb, "  Input:    %d\n", summary.Input)
	w.printer.Fprintf(sb, "  Accepted: %d\n", summary.Accepted)
	w.printer.Fprintf(sb, "  Rejected: %d\n", summary.Rejected)
	for _, reason := range model.RejectReasons {
		if n := summary.Rejections.Get(reason); n > 0 {
			w.printer.Fprintf(sb, "    %-20s %d\n", reason.String()+":", n)
		}
	}
	w.printer.Fprintf(sb, "  Chunks:   %d (size %d, workers %d)\n", summary.Chunks, summary.ChunkSize, summary.Workers)
	if w.verbose && summary.Digest != "" {
		w.printer.Fprintf(sb, "  SHA3-256: %s\n", summary.Digest)
	}
	sb.WriteString("\n")

	if summary.RejectedShare() > alertThreshold {
		sb.WriteString("  [!] More than half of the input was rejected.\n\n")
	}
}

// writeRanking writes one ranked table as "key: count" lines.
func (w *SimpleWriter) writeRanking(sb *strings.Builder, title string, entries []model.RankedEntry) {
	sb.WriteString(title)
	sb.WriteString("\n")
	if len(entries) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}
	for _, e := range entries {
		w.printer.Fprintf(sb, "  %s: %d\n", e.Key, e.Count)
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
