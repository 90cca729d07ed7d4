package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/userclean/internal/config"
	"github.com/nao1215/userclean/internal/dataset"
	"github.com/nao1215/userclean/internal/model"
	"github.com/nao1215/userclean/internal/record"
	"github.com/nao1215/userclean/internal/report"
)

// CheckResult is the outcome of validating an input file without writing
// any output.
type CheckResult struct {
	Input      string                `json:"input"`
	Mode       model.Mode            `json:"mode"`
	Records    int                   `json:"records"`
	Accepted   int                   `json:"accepted"`
	Rejected   int                   `json:"rejected"`
	Rejections model.RejectionCounts `json:"rejections"`
}

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [input]",
		Short: "Validate an input file without writing output",
		Long: `Check runs the record validator over an input file and reports how many
records would be accepted and why the others would be rejected.

No output file is written.

Examples:
  # Check data.json
  userclean check

  # Check a file as the minimal mode would see it
  userclean check --mode minimal users.json

  # Machine-readable result
  userclean check --json users.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP(config.FlagMode, "m", string(model.ModeDefault),
		"Processing mode: default or minimal")
	cmd.Flags().Bool(config.FlagJSON, false, "Print the result as JSON")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	input := config.DefaultInputPath
	if len(args) > 0 {
		input = args[0]
	}

	modeName, err := cmd.Flags().GetString(config.FlagMode)
	if err != nil {
		return err
	}
	mode, ok := model.ParseMode(modeName)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown mode %q, using %s\n", modeName, model.ModeDefault)
	}

	asJSON, err := cmd.Flags().GetBool(config.FlagJSON)
	if err != nil {
		return err
	}

	result, err := checkInput(cmd.Context(), dataset.NewOSStore(), input, mode)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := dataset.EncodeJSON(result)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	writeCheckResult(cmd.OutOrStdout(), result)
	return nil
}

// checkInput loads input from store and runs every record through the
// processor for mode.
func checkInput(ctx context.Context, store *dataset.Store, input string, mode model.Mode) (*CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := store.Load(ctx, input)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		Input:   input,
		Mode:    mode,
		Records: len(records),
	}
	process := record.Processor(mode)
	for _, raw := range records {
		outcome := process(raw)
		if outcome.IsAccepted() {
			result.Accepted++
			continue
		}
		result.Rejections.Add(outcome.Reason)
	}
	result.Rejected = result.Rejections.Total()
	return result, nil
}

// writeCheckResult prints result in human-readable form.
func writeCheckResult(w io.Writer, result *CheckResult) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Input:    %s (%s mode)\n", result.Input, result.Mode)
	if result.Records == 0 {
		fmt.Fprintln(w, report.EmptyInputMessage)
		return
	}
	p.Fprintf(w, "Records:  %d\n", result.Records)
	p.Fprintf(w, "Accepted: %d\n", result.Accepted)
	p.Fprintf(w, "Rejected: %d\n", result.Rejected)
	for _, reason := range model.RejectReasons {
		p.Fprintf(w, "  %-20s %d\n", reason.String()+":", result.Rejections.Get(reason))
	}
}
