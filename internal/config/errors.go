package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrNoInput is returned when the input path is empty.
	ErrNoInput = errors.New("no input specified: provide an input JSON file")

	// ErrNoOutput is returned when the output path is empty.
	ErrNoOutput = errors.New("no output specified: --output must not be empty")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

	// ErrInvalidTopN is returned when the ranking size is negative.
	ErrInvalidTopN = errors.New("invalid top: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLocale is returned when the locale is not a BCP 47 tag.
	ErrInvalidLocale = errors.New("invalid locale: must be a language tag such as en or de-CH")

	// ErrInvalidLogFormat is returned when the log format is not text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrProfileNotFound is returned when the requested profile is not
	// defined in the config file.
	ErrProfileNotFound = errors.New("profile not found in configuration file")
)
