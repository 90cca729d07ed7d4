// Package pipeline provides the chunked aggregation engine and the step
// pipeline that drives one userclean run.
//
// The aggregation engine (Aggregate, AggregateMinimal and ChunkProcessor)
// walks the raw input in contiguous chunks, validates and transforms every
// record, and accumulates cleaned records plus the domain and city frequency
// tables. Chunking bounds the working set of each unit of work; it never
// changes the content or order of the result.
//
// The driver side is a Pipeline of Steps (load, aggregate, rank, write)
// executed in sequence over a model.Run.
//
// The aggregation core performs no I/O; loading and writing are steps.
//
// Chunks may be processed concurrently with errgroup. Each worker owns a
// private accumulator and the accumulators are merged in chunk order, so the
// parallel result is identical to the sequential one.
package pipeline
