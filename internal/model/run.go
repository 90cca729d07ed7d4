package model

import "time"

// Run carries the state of one pipeline invocation from input to report.
// Pipeline steps read the settings and fill in the remaining fields.
// Fields set by steps that already ran stay valid when a later step fails.
type Run struct {
	// === Settings ===

	// ID uniquely identifies the run in logs, reports and metrics.
	ID string `json:"id"`

	// Mode selects the default or minimal transformation.
	Mode Mode `json:"mode"`

	// InputPath is the JSON file the raw records were read from.
	InputPath string `json:"input_path"`

	// OutputPath is the file the cleaned dataset is written to.
	OutputPath string `json:"output_path"`

	// ChunkSize bounds the number of records processed as one unit.
	ChunkSize int `json:"chunk_size"`

	// Workers is the number of chunks processed concurrently.
	// 1 means sequential processing.
	Workers int `json:"workers"`

	// TopN is the number of ranked entries reported per table.
	TopN int `json:"top_n"`

	// === Data ===

	// Records holds the decoded input. It is released once aggregation
	// completes.
	Records []RawRecord `json:"-"`

	// Result is the aggregation output.
	Result *PipelineResult `json:"-"`

	// TopDomains is the ranked domain table.
	TopDomains []RankedEntry `json:"top_domains"`

	// TopCities is the ranked city table. Empty in minimal mode.
	TopCities []RankedEntry `json:"top_cities"`

	// Chunks is the number of chunks the input was split into.
	Chunks int `json:"chunks"`

	// Digest is the hex SHA3-256 of the canonical JSON output.
	Digest string `json:"digest,omitempty"`

	// === Bookkeeping ===

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall time of the pipeline steps.
	Elapsed time.Duration `json:"elapsed"`

	// PerformedSteps lists the names of completed steps in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a run with the given identifier and settings.
func NewRun(id string, mode Mode, inputPath, outputPath string) *Run {
	return &Run{
		ID:             id,
		Mode:           mode,
		InputPath:      inputPath,
		OutputPath:     outputPath,
		ChunkSize:      1000,
		Workers:        1,
		TopN:           10,
		TopDomains:     make([]RankedEntry, 0),
		TopCities:      make([]RankedEntry, 0),
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}
