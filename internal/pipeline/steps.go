package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/userclean/internal/dataset"
	"github.com/nao1215/userclean/internal/model"
	"github.com/nao1215/userclean/internal/rank"
)

// Source loads the raw records of a run.
type Source interface {
	Load(ctx context.Context, path string) ([]model.RawRecord, error)
}

// Sink persists the cleaned dataset of a run. encoded is the canonical JSON
// form of the output; sinks that store another representation may ignore it.
type Sink interface {
	Write(ctx context.Context, run *model.Run, encoded []byte) error
}

// ErrNoResult is returned by steps that need an aggregation result when
// none is present on the run.
var ErrNoResult = errors.New("no aggregation result: aggregate step has not run")

// LoadStep reads the input file and stores the decoded records on the run.
type LoadStep struct {
	source Source
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a load step reading from source.
func NewLoadStep(source Source, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, run *model.Run) error {
	records, err := s.source.Load(ctx, run.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", run.InputPath, err)
	}
	run.Records = records

	if len(records) == 0 {
		s.logger.Info("no data to process", "input", run.InputPath)
		return nil
	}
	s.logger.Debug("input loaded",
		"input", run.InputPath,
		"records", len(records),
		"chunks", ChunkCount(len(records), run.ChunkSize),
	)
	return nil
}

// AggregateStep validates, transforms and counts the loaded records.
type AggregateStep struct {
	logger  *slog.Logger
	onChunk func(index, size int)
}

// AggregateStepOption configures an AggregateStep.
type AggregateStepOption func(*AggregateStep)

// WithAggregateLogger sets a custom logger for the aggregate step.
func WithAggregateLogger(logger *slog.Logger) AggregateStepOption {
	return func(s *AggregateStep) {
		s.logger = logger
	}
}

// WithAggregateChunkCallback registers fn to be called after each chunk.
func WithAggregateChunkCallback(fn func(index, size int)) AggregateStepOption {
	return func(s *AggregateStep) {
		s.onChunk = fn
	}
}

// NewAggregateStep creates a new aggregate step.
func NewAggregateStep(opts ...AggregateStepOption) *AggregateStep {
	s := &AggregateStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregate step. The raw records are released afterwards.
func (s *AggregateStep) Do(ctx context.Context, run *model.Run) error {
	processor := NewChunkProcessor(
		WithChunkSize(run.ChunkSize),
		WithConcurrency(run.Workers),
		WithBatchLogger(s.logger),
		WithChunkCallback(s.onChunk),
	)

	result, chunks, err := processor.Process(ctx, run.Mode, run.Records)
	if err != nil {
		return err
	}

	run.Result = result
	run.Chunks = chunks
	run.Records = nil

	s.logger.Info("records aggregated",
		"run_id", run.ID,
		"mode", run.Mode,
		"input", result.Input,
		"accepted", result.Accepted(),
		"rejected", result.Rejections.Total(),
		"chunks", chunks,
	)
	return nil
}

// RankStep derives the top-N domain and city lists from the result.
type RankStep struct{}

// NewRankStep creates a new rank step.
func NewRankStep() *RankStep {
	return &RankStep{}
}

// Name returns the step name.
func (s *RankStep) Name() string {
	return "rank"
}

// Do executes the rank step. The city list stays empty in minimal mode.
func (s *RankStep) Do(_ context.Context, run *model.Run) error {
	if run.Result == nil {
		return ErrNoResult
	}
	run.TopDomains = rank.TopN(run.Result.Domains, run.TopN)
	run.TopCities = make([]model.RankedEntry, 0)
	if run.Mode != model.ModeMinimal {
		run.TopCities = rank.TopN(run.Result.Cities, run.TopN)
	}
	return nil
}

// WriteStep encodes the cleaned dataset, records its digest on the run and
// hands it to the sink.
type WriteStep struct {
	sink   Sink
	logger *slog.Logger
}

// WriteStepOption configures a WriteStep.
type WriteStepOption func(*WriteStep)

// WithWriteLogger sets a custom logger for the write step.
func WithWriteLogger(logger *slog.Logger) WriteStepOption {
	return func(s *WriteStep) {
		s.logger = logger
	}
}

// NewWriteStep creates a write step persisting to sink.
func NewWriteStep(sink Sink, opts ...WriteStepOption) *WriteStep {
	s := &WriteStep{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do executes the write step.
func (s *WriteStep) Do(ctx context.Context, run *model.Run) error {
	if run.Result == nil {
		return ErrNoResult
	}

	encoded, err := dataset.EncodeJSON(run.Result.Output())
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	run.Digest = dataset.Digest(encoded)

	if err := s.sink.Write(ctx, run, encoded); err != nil {
		return fmt.Errorf("failed to write %s: %w", run.OutputPath, err)
	}

	s.logger.Info("output written",
		"output", run.OutputPath,
		"records", run.Result.Accepted(),
		"digest", run.Digest,
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Logger is shared by all steps. nil means slog.Default().
	Logger *slog.Logger

	// OnChunk is forwarded to the aggregate step.
	OnChunk func(index, size int)
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineStepLogger sets the logger handed to every step.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// WithPipelineChunkCallback sets the per-chunk callback of the aggregate step.
func WithPipelineChunkCallback(fn func(index, size int)) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OnChunk = fn
	}
}

// DefaultPipeline creates the standard load, aggregate, rank, write pipeline.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts step config options (WithPipelineStepLogger, etc).
func DefaultPipeline(source Source, sink Sink, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p.AddSteps(
		NewLoadStep(source, WithLoadLogger(logger)),
		NewAggregateStep(
			WithAggregateLogger(logger),
			WithAggregateChunkCallback(cfg.OnChunk),
		),
		NewRankStep(),
		NewWriteStep(sink, WithWriteLogger(logger)),
	)
	return p
}
