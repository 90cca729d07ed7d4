package model

import "time"

// Summary is a condensed, serializable view of a finished run.
// Report writers render it; it is also what the JSON report contains.
type Summary struct {
	RunID      string          `json:"run_id"`
	Mode       Mode            `json:"mode"`
	InputPath  string          `json:"input_path"`
	OutputPath string          `json:"output_path"`
	Input      int             `json:"input"`
	Accepted   int             `json:"accepted"`
	Rejected   int             `json:"rejected"`
	Rejections RejectionCounts `json:"rejections"`
	TopDomains []RankedEntry   `json:"top_domains"`
	TopCities  []RankedEntry   `json:"top_cities,omitempty"`
	Chunks     int             `json:"chunks"`
	ChunkSize  int             `json:"chunk_size"`
	Workers    int             `json:"workers"`
	Digest     string          `json:"digest,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	Elapsed    time.Duration   `json:"elapsed"`
	Error      string          `json:"error,omitempty"`
}

// NewSummary builds a Summary from run.
func NewSummary(run *Run) *Summary {
	s := &Summary{
		RunID:      run.ID,
		Mode:       run.Mode,
		InputPath:  run.InputPath,
		OutputPath: run.OutputPath,
		TopDomains: run.TopDomains,
		Chunks:     run.Chunks,
		ChunkSize:  run.ChunkSize,
		Workers:    run.Workers,
		Digest:     run.Digest,
		StartedAt:  run.StartedAt,
		Elapsed:    run.Elapsed,
		Error:      run.ErrorMessage,
	}
	if s.TopDomains == nil {
		s.TopDomains = make([]RankedEntry, 0)
	}
	if run.Mode != ModeMinimal {
		s.TopCities = run.TopCities
	}
	if run.Result != nil {
		s.Input = run.Result.Input
		s.Accepted = run.Result.Accepted()
		s.Rejections = run.Result.Rejections
		s.Rejected = s.Input - s.Accepted
	}
	return s
}

// IsEmpty reports whether the run had no input records.
func (s *Summary) IsEmpty() bool {
	return s.Input == 0
}

// ShowCities reports whether the city ranking belongs in the report.
func (s *Summary) ShowCities() bool {
	return s.Mode != ModeMinimal
}

// RejectedShare returns the fraction of input records that were rejected.
func (s *Summary) RejectedShare() float64 {
	if s.Input == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(s.Input)
}
