package pipeline

import (
	"errors"

	"github.com/nao1215/userclean/internal/model"
	"github.com/nao1215/userclean/internal/record"
)

// DefaultChunkSize is the number of records processed as one unit when no
// chunk size is configured.
const DefaultChunkSize = 1000

// ErrInvalidChunkSize is returned when the chunk size is not positive.
var ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

// Chunks splits records into contiguous sub-slices of at most size records.
// The last chunk may be shorter. The sub-slices share the backing array of
// records. size must be positive.
func Chunks(records []model.RawRecord, size int) [][]model.RawRecord {
	if size <= 0 || len(records) == 0 {
		return nil
	}
	out := make([][]model.RawRecord, 0, ChunkCount(len(records), size))
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}

// ChunkCount returns the number of chunks n records split into.
func ChunkCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// accumulator collects the output of one or more chunks.
// It is never shared between goroutines.
type accumulator struct {
	mode       model.Mode
	process    func(model.RawRecord) model.Outcome
	records    []model.CleanRecord
	domains    *model.FrequencyTable
	cities     *model.FrequencyTable
	input      int
	rejections model.RejectionCounts
}

// newAccumulator creates an empty accumulator for mode.
func newAccumulator(mode model.Mode, capacity int) *accumulator {
	return &accumulator{
		mode:    mode,
		process: record.Processor(mode),
		records: make([]model.CleanRecord, 0, capacity),
		domains: model.NewFrequencyTable(),
		cities:  model.NewFrequencyTable(),
	}
}

// add processes one raw record. Rejected records only bump the rejection
// tally; they never reach the output structures.
func (a *accumulator) add(raw model.RawRecord) {
	a.input++
	out := a.process(raw)
	if !out.IsAccepted() {
		a.rejections.Add(out.Reason)
		return
	}
	a.records = append(a.records, out.Record)
	a.domains.Inc(out.Record.Domain())
	if a.mode != model.ModeMinimal {
		a.cities.Inc(out.Record.City)
	}
}

// addChunk processes every record of chunk in order.
func (a *accumulator) addChunk(chunk []model.RawRecord) {
	for _, raw := range chunk {
		a.add(raw)
	}
}

// merge appends other after a. Callers merge in chunk order.
func (a *accumulator) merge(other *accumulator) {
	a.records = append(a.records, other.records...)
	a.domains.Merge(other.domains)
	a.cities.Merge(other.cities)
	a.input += other.input
	a.rejections.Merge(other.rejections)
}

// result freezes the accumulator into a PipelineResult.
func (a *accumulator) result() *model.PipelineResult {
	return &model.PipelineResult{
		Mode:       a.mode,
		Records:    a.records,
		Domains:    a.domains,
		Cities:     a.cities,
		Input:      a.input,
		Rejections: a.rejections,
	}
}

// Aggregate runs the default pipeline over records in chunks of chunkSize.
// Valid records are kept in input order and counted in the domain and city
// tables; invalid records are skipped. Empty input yields an empty result.
func Aggregate(records []model.RawRecord, chunkSize int) (*model.PipelineResult, error) {
	return AggregateMode(model.ModeDefault, records, chunkSize)
}

// AggregateMinimal runs the minimal pipeline: only emails are validated,
// records carry only Email, and the city table stays empty.
func AggregateMinimal(records []model.RawRecord, chunkSize int) (*model.PipelineResult, error) {
	return AggregateMode(model.ModeMinimal, records, chunkSize)
}

// AggregateMode runs the pipeline for mode sequentially, one chunk at a
// time. Each chunk is accumulated on its own and then folded into the total.
func AggregateMode(mode model.Mode, records []model.RawRecord, chunkSize int) (*model.PipelineResult, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}

	total := newAccumulator(mode, len(records))
	for _, chunk := range Chunks(records, chunkSize) {
		acc := newAccumulator(mode, len(chunk))
		acc.addChunk(chunk)
		total.merge(acc)
	}
	return total.result(), nil
}
