package model

import "strings"

// Mode selects which transformation the pipeline applies.
type Mode string

const (
	// ModeDefault validates every field and produces full CleanRecords,
	// a domain table and a city table.
	ModeDefault Mode = "default"

	// ModeMinimal validates only the email and produces email-only records
	// and a domain table. The city table stays empty.
	ModeMinimal Mode = "minimal"
)

// ParseMode maps a user supplied mode name to a Mode.
// The second return value is false when the name was not recognized,
// in which case ModeDefault is returned.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDefault:
		return ModeDefault, true
	case ModeMinimal:
		return ModeMinimal, true
	default:
		return ModeDefault, false
	}
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// RankedEntry is one row of a top-N list.
type RankedEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PipelineResult is produced once per aggregation pass and is read-only
// afterwards.
type PipelineResult struct {
	// Mode is the mode the result was produced in.
	Mode Mode `json:"mode"`

	// Records holds accepted records in original input order.
	// In minimal mode only Email is set.
	Records []CleanRecord `json:"transformed"`

	// Domains counts email domains of accepted records.
	Domains *FrequencyTable `json:"domainCounts"`

	// Cities counts cities of accepted records. Empty in minimal mode.
	Cities *FrequencyTable `json:"cityCounts"`

	// Input is the number of raw records examined.
	Input int `json:"input"`

	// Rejections tallies the records that were skipped.
	Rejections RejectionCounts `json:"rejections"`
}

// NewPipelineResult creates an empty result for mode.
func NewPipelineResult(mode Mode) *PipelineResult {
	return &PipelineResult{
		Mode:    mode,
		Records: make([]CleanRecord, 0),
		Domains: NewFrequencyTable(),
		Cities:  NewFrequencyTable(),
	}
}

// Accepted returns the number of records kept.
func (r *PipelineResult) Accepted() int {
	return len(r.Records)
}

// Output returns the value serialized as the cleaned dataset:
// []CleanRecord in default mode and []MinimalRecord in minimal mode.
func (r *PipelineResult) Output() any {
	if r.Mode != ModeMinimal {
		return r.Records
	}
	out := make([]MinimalRecord, len(r.Records))
	for i, rec := range r.Records {
		out[i] = MinimalRecord{Email: rec.Email}
	}
	return out
}
