package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/userclean/internal/config"
	"github.com/nao1215/userclean/internal/database"
	"github.com/nao1215/userclean/internal/dataset"
	securelog "github.com/nao1215/userclean/internal/log"
	"github.com/nao1215/userclean/internal/metrics"
	"github.com/nao1215/userclean/internal/metrics/prompush"
	"github.com/nao1215/userclean/internal/model"
	"github.com/nao1215/userclean/internal/pipeline"
	"github.com/nao1215/userclean/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Clean a user record dataset and report top domains and cities",
		Long: `Run reads a JSON array of user records and writes the cleaned dataset.

Each record needs a name, an email and an address. Records are rejected when:
- a field is missing or empty
- the email is not a valid address
- the name has fewer than two words
- the address has fewer than three comma-separated parts

Accepted records are normalized and counted by email domain and city.
The minimal mode keeps only the email and counts domains only.

Examples:
  # Clean data.json into transformed.json
  userclean run

  # Clean a specific file in minimal mode
  userclean run --mode minimal users.json

  # Write a SQLite database instead of JSON
  userclean run -o users.db users.json

  # Process four chunks at a time and print a Markdown summary
  userclean run -w 4 --markdown users.json

  # Group summary numbers the German way and log as JSON
  userclean run --locale de --log-format json users.json

  # Use a profile from the configuration file
  userclean run --profile ci`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	cmd.Flags().StringP(config.FlagMode, "m", string(model.ModeDefault),
		"Processing mode: default or minimal")
	cmd.Flags().IntP(config.FlagChunkSize, "c", config.DefaultChunkSize,
		"Number of records per chunk")
	cmd.Flags().IntP(config.FlagTop, "n", config.DefaultTopN,
		"Number of entries per ranking")
	cmd.Flags().IntP(config.FlagWorkers, "w", config.DefaultWorkers,
		"Number of chunks processed concurrently")
	cmd.Flags().StringP(config.FlagOutput, "o", config.DefaultOutputPath,
		"Output file (.json, or .db/.sqlite/.sqlite3 for SQLite)")

	// Summary flags
	cmd.Flags().Bool(config.FlagJSON, false,
		"Print the summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().Bool(config.FlagMarkdown, false,
		"Print the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP(config.FlagReport, "r", "",
		"Write the summary to the specified file instead of stdout")
	cmd.Flags().String(config.FlagLocale, config.DefaultLocale,
		"Locale for number formatting in the text summary (e.g. en, de, fr-CH)")

	// Logging
	cmd.Flags().String(config.FlagLogFormat, config.LogFormatText,
		"Log format on stderr: text or json")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .userclean in current or home directory)")
	cmd.Flags().String("profile", "",
		"Configuration file profile to apply")

	// Metrics
	cmd.Flags().String(config.FlagPushgatewayURL, "",
		"Push run metrics to this Prometheus Pushgateway (default: $"+config.EnvPushgatewayURL+")")
	cmd.Flags().String(config.FlagJob, config.DefaultJobName,
		"Pushgateway job name")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args, os.LookupEnv)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err = executeRun(ctx, cfg, dataset.NewOSStore(), cmd.OutOrStdout(), logger)
	return err
}

// newLogger returns a secure logger writing format to w.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	switch format {
	case config.LogFormatText:
		return securelog.NewSecureLogger(w, verbose), nil
	case config.LogFormatJSON:
		return securelog.NewSecureJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrInvalidLogFormat, format)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, the configuration
// file and the environment. Explicit flags win over everything else.
func buildConfig(cmd *cobra.Command, args []string, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if len(args) > 0 {
		cfg.InputPath = args[0]
	}
	if cfg.Mode, err = flags.GetString(config.FlagMode); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = flags.GetInt(config.FlagChunkSize); err != nil {
		return nil, err
	}
	if cfg.TopN, err = flags.GetInt(config.FlagTop); err != nil {
		return nil, err
	}
	if cfg.Workers, err = flags.GetInt(config.FlagWorkers); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = flags.GetString(config.FlagOutput); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool(config.FlagJSON); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool(config.FlagMarkdown); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString(config.FlagReport); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Profile, err = flags.GetString("profile"); err != nil {
		return nil, err
	}
	if cfg.PushgatewayURL, err = flags.GetString(config.FlagPushgatewayURL); err != nil {
		return nil, err
	}
	if cfg.JobName, err = flags.GetString(config.FlagJob); err != nil {
		return nil, err
	}
	if cfg.Locale, err = flags.GetString(config.FlagLocale); err != nil {
		return nil, err
	}
	if cfg.LogFormat, err = flags.GetString(config.FlagLogFormat); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	isSet := func(name string) bool {
		if name == config.FlagInput {
			return len(args) > 0
		}
		return flags.Changed(name)
	}

	// If the user explicitly specified a config file path, error if not found.
	// Otherwise silently run without one.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		profile, err := cf.GetProfile(cfg.Profile)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyProfile(profile, isSet); err != nil {
			return nil, err
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	case cfg.Profile != "":
		return nil, fmt.Errorf("%w: %s (no configuration file found)", config.ErrProfileNotFound, cfg.Profile)
	}

	cfg.ApplyEnv(lookupEnv, isSet)

	return cfg, nil
}

// executeRun runs the pipeline described by cfg against store and writes
// the summary to out or to the report file.
func executeRun(ctx context.Context, cfg *config.Config, store *dataset.Store, out io.Writer, logger *slog.Logger) (*model.Run, error) {
	exists, err := store.Exists(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", dataset.ErrInputNotFound, cfg.InputPath)
	}

	mode, ok := cfg.ResolveMode()
	if !ok {
		logger.Warn("unknown mode, using default",
			"mode", cfg.Mode,
			"fallback", model.ModeDefault,
		)
	}

	run := model.NewRun(uuid.NewString(), mode, cfg.InputPath, cfg.OutputPath)
	run.ChunkSize = cfg.ChunkSize
	run.Workers = cfg.Workers
	run.TopN = cfg.TopN

	logger.Info("starting run",
		"run_id", run.ID,
		"input", run.InputPath,
		"output", run.OutputPath,
		"mode", run.Mode,
		"chunkSize", run.ChunkSize,
		"workers", run.Workers,
	)

	recorder := newRecorder(cfg, logger)

	p := pipeline.DefaultPipeline(
		store,
		selectSink(cfg.OutputPath, store),
		[]pipeline.Option{
			pipeline.WithLogger(logger),
			pipeline.WithStepObserver(recorder.RecordStep),
		},
		pipeline.WithPipelineStepLogger(logger),
		pipeline.WithPipelineChunkCallback(func(index, size int) {
			logger.Debug("chunk processed", "chunk", index, "records", size)
		}),
	)

	execErr := p.Execute(ctx, run)

	if run.Result != nil {
		recorder.RecordResult(run.Result, run.Chunks)
	}
	if err := recorder.Flush(); err != nil {
		logger.Warn("failed to push metrics", "job", recorder.Job(), "error", err)
	}

	if execErr != nil {
		// A report file is kept as a record of the failed run.
		if cfg.ReportFile != "" {
			if err := writeSummary(ctx, cfg, store, out, run); err != nil {
				logger.Error("failed to write summary", "error", err)
			}
		}
		if errors.Is(execErr, dataset.ErrInputShape) {
			return run, execErr
		}
		return run, fmt.Errorf("run failed: %w", execErr)
	}

	if err := writeSummary(ctx, cfg, store, out, run); err != nil {
		return run, fmt.Errorf("failed to write summary: %w", err)
	}
	return run, nil
}

// selectSink returns the sink matching the output path extension.
func selectSink(outputPath string, store *dataset.Store) pipeline.Sink {
	if database.IsSQLitePath(outputPath) {
		return database.NewSink(database.DefaultOptions())
	}
	return dataset.NewFileSink(store)
}

// newRecorder returns a Pushgateway-backed recorder when a gateway URL is
// configured and a no-op recorder otherwise.
func newRecorder(cfg *config.Config, logger *slog.Logger) *metrics.Recorder {
	if cfg.PushgatewayURL == "" {
		return metrics.NewRecorder(nil, cfg.JobName)
	}
	backend, err := prompush.NewBackend(cfg.JobName, cfg.PushgatewayURL)
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
		return metrics.NewRecorder(nil, cfg.JobName)
	}
	logger.Debug("metrics enabled", "gateway", cfg.PushgatewayURL, "job", backend.JobName())
	return metrics.NewRecorder(backend, cfg.JobName)
}

// newSummaryWriter returns the summary writer for the configured format.
func newSummaryWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w,
			report.WithVerbose(cfg.Verbose),
			report.WithLanguage(cfg.LanguageTag()),
		)
	}
}

// writeSummary renders the run summary to out, or to cfg.ReportFile when set.
func writeSummary(ctx context.Context, cfg *config.Config, store *dataset.Store, out io.Writer, run *model.Run) error {
	summary := model.NewSummary(run)

	if cfg.ReportFile == "" {
		_, err := newSummaryWriter(cfg, out).Write(summary)
		return err
	}

	var buf bytes.Buffer
	if _, err := newSummaryWriter(cfg, &buf).Write(summary); err != nil {
		return err
	}
	if err := store.WriteFile(ctx, cfg.ReportFile, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary written to %s\n", cfg.ReportFile)
	return nil
}
