// Package report renders the summary of a userclean run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with tables, alerts and a
//     mermaid pie chart of the email domains
//
// The summary only ever contains aggregate data (counts, domains, cities);
// individual records are never rendered.
package report
