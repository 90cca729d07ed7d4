package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/userclean/internal/model"
	"golang.org/x/sync/errgroup"
)

// ChunkProcessor aggregates records chunk by chunk, optionally with several
// chunks in flight at once. It uses errgroup to manage goroutines and
// respect the concurrency limit.
//
// Every chunk is processed into its own accumulator. Once all chunks are
// done the accumulators are merged in chunk order, so the result does not
// depend on concurrency or on which goroutine finished first.
type ChunkProcessor struct {
	// chunkSize is the number of records per chunk.
	chunkSize int

	// concurrency is the maximum number of chunks processed at once.
	concurrency int

	// logger is used for chunk-level logging.
	logger *slog.Logger

	// onChunk is called after each chunk finishes. It may be called
	// from several goroutines at once.
	onChunk func(index, size int)
}

// ChunkOption configures a ChunkProcessor.
type ChunkOption func(*ChunkProcessor)

// WithBatchLogger sets a custom logger for chunk processing.
func WithBatchLogger(logger *slog.Logger) ChunkOption {
	return func(c *ChunkProcessor) {
		c.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrently processed chunks.
// Values below 1 are ignored. Default is 1 (sequential).
func WithConcurrency(n int) ChunkOption {
	return func(c *ChunkProcessor) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithChunkSize sets the number of records per chunk.
// Default is DefaultChunkSize.
func WithChunkSize(n int) ChunkOption {
	return func(c *ChunkProcessor) {
		c.chunkSize = n
	}
}

// WithChunkCallback registers fn to be called after each chunk completes.
// fn must be safe for concurrent use.
func WithChunkCallback(fn func(index, size int)) ChunkOption {
	return func(c *ChunkProcessor) {
		c.onChunk = fn
	}
}

// NewChunkProcessor creates a new ChunkProcessor.
func NewChunkProcessor(opts ...ChunkOption) *ChunkProcessor {
	cp := &ChunkProcessor{
		chunkSize:   DefaultChunkSize,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(cp)
	}

	if cp.logger == nil {
		cp.logger = slog.Default()
	}

	return cp
}

// Process aggregates records in mode and returns the result together with
// the number of chunks the input was split into.
//
// Returns ErrInvalidChunkSize for a non-positive chunk size and ctx.Err()
// when the context is cancelled before all chunks are processed.
func (cp *ChunkProcessor) Process(ctx context.Context, mode model.Mode, records []model.RawRecord) (*model.PipelineResult, int, error) {
	if cp.chunkSize <= 0 {
		return nil, 0, ErrInvalidChunkSize
	}

	chunks := Chunks(records, cp.chunkSize)
	cp.logger.Debug("starting chunk processing",
		"records", len(records),
		"chunks", len(chunks),
		"chunk_size", cp.chunkSize,
		"concurrency", cp.concurrency,
	)
	startTime := time.Now()

	// Pre-allocate so each goroutine writes only its own slot.
	partials := make([]*accumulator, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cp.concurrency)

	for i, chunk := range chunks {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			acc := newAccumulator(mode, len(chunk))
			acc.addChunk(chunk)
			partials[i] = acc

			if cp.onChunk != nil {
				cp.onChunk(i, len(chunk))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		cp.logger.Warn("chunk processing interrupted", "error", err)
		return nil, 0, err
	}

	total := newAccumulator(mode, len(records))
	for _, acc := range partials {
		total.merge(acc)
	}

	cp.logger.Debug("chunk processing completed",
		"chunks", len(chunks),
		"accepted", len(total.records),
		"duration", time.Since(startTime),
	)

	return total.result(), len(chunks), nil
}
