package config

import (
	"fmt"
	"strings"
)

// Flag names shared by the CLI and ApplyProfile. A profile value is only
// applied when the corresponding flag was not set explicitly.
const (
	FlagInput          = "input"
	FlagOutput         = "output"
	FlagMode           = "mode"
	FlagChunkSize      = "chunk-size"
	FlagTop            = "top"
	FlagWorkers        = "workers"
	FlagJSON           = "json"
	FlagMarkdown       = "markdown"
	FlagReport         = "report"
	FlagPushgatewayURL = "pushgateway-url"
	FlagJob            = "job"
	FlagLocale         = "locale"
	FlagLogFormat      = "log-format"
)

// Report format names accepted in the config file.
const (
	FormatSimple   = "simple"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Profile holds a set of run settings from the config file.
// Zero values mean "not set".
type Profile struct {
	// Input is the input JSON file.
	Input string `yaml:"input,omitempty"`

	// Output is the output file (.json, .db or .sqlite).
	Output string `yaml:"output,omitempty"`

	// Mode is "default" or "minimal".
	Mode string `yaml:"mode,omitempty"`

	// ChunkSize is the number of records per chunk.
	ChunkSize int `yaml:"chunkSize,omitempty"`

	// Top is the number of ranked entries per table.
	Top int `yaml:"top,omitempty"`

	// Workers is the number of concurrently processed chunks.
	Workers int `yaml:"workers,omitempty"`

	// Format is the summary format: simple, json or markdown.
	Format string `yaml:"format,omitempty"`

	// Report is the file the summary is written to.
	Report string `yaml:"report,omitempty"`

	// PushgatewayURL enables metrics push.
	PushgatewayURL string `yaml:"pushgatewayUrl,omitempty"`

	// Job is the Pushgateway job name.
	Job string `yaml:"job,omitempty"`

	// Locale is the number formatting locale of the text summary.
	Locale string `yaml:"locale,omitempty"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat,omitempty"`
}

// File represents the structure of the .userclean configuration file.
type File struct {
	// Defaults apply to every run.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles are named settings selected with --profile. A profile is
	// merged over Defaults.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// GetProfile returns the settings for the named profile merged over the
// defaults section. An empty name returns the defaults alone.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return result.merge(p), nil
}

// merge returns p with every set field of override applied.
func (p Profile) merge(override Profile) Profile {
	if override.Input != "" {
		p.Input = override.Input
	}
	if override.Output != "" {
		p.Output = override.Output
	}
	if override.Mode != "" {
		p.Mode = override.Mode
	}
	if override.ChunkSize != 0 {
		p.ChunkSize = override.ChunkSize
	}
	if override.Top != 0 {
		p.Top = override.Top
	}
	if override.Workers != 0 {
		p.Workers = override.Workers
	}
	if override.Format != "" {
		p.Format = override.Format
	}
	if override.Report != "" {
		p.Report = override.Report
	}
	if override.PushgatewayURL != "" {
		p.PushgatewayURL = override.PushgatewayURL
	}
	if override.Job != "" {
		p.Job = override.Job
	}
	if override.Locale != "" {
		p.Locale = override.Locale
	}
	if override.LogFormat != "" {
		p.LogFormat = override.LogFormat
	}
	return p
}

// ApplyProfile copies the set fields of p into c, skipping every setting
// whose flag isSet reports as explicitly given on the command line.
// A nil isSet treats every flag as unset.
func (c *Config) ApplyProfile(p Profile, isSet func(flag string) bool) error {
	if isSet == nil {
		isSet = func(string) bool { return false }
	}
	apply := func(flag string, set bool, fn func()) {
		if set && !isSet(flag) {
			fn()
		}
	}

	apply(FlagInput, p.Input != "", func() { c.InputPath = p.Input })
	apply(FlagOutput, p.Output != "", func() { c.OutputPath = p.Output })
	apply(FlagMode, p.Mode != "", func() { c.Mode = p.Mode })
	apply(FlagChunkSize, p.ChunkSize != 0, func() { c.ChunkSize = p.ChunkSize })
	apply(FlagTop, p.Top != 0, func() { c.TopN = p.Top })
	apply(FlagWorkers, p.Workers != 0, func() { c.Workers = p.Workers })
	apply(FlagReport, p.Report != "", func() { c.ReportFile = p.Report })
	apply(FlagPushgatewayURL, p.PushgatewayURL != "", func() { c.PushgatewayURL = p.PushgatewayURL })
	apply(FlagJob, p.Job != "", func() { c.JobName = p.Job })
	apply(FlagLocale, p.Locale != "", func() { c.Locale = p.Locale })
	apply(FlagLogFormat, p.LogFormat != "", func() { c.LogFormat = p.LogFormat })

	if p.Format != "" && !isSet(FlagJSON) && !isSet(FlagMarkdown) {
		switch strings.ToLower(p.Format) {
		case FormatSimple:
			c.JSONReport, c.MarkdownReport = false, false
		case FormatJSON:
			c.JSONReport, c.MarkdownReport = true, false
		case FormatMarkdown:
			c.JSONReport, c.MarkdownReport = false, true
		default:
			return fmt.Errorf("unknown report format %q in configuration file", p.Format)
		}
	}
	return nil
}

// ApplyEnv fills settings from the environment that were not given as
// flags. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool), isSet func(flag string) bool) {
	if isSet != nil && isSet(FlagPushgatewayURL) {
		return
	}
	if v, ok := lookup(EnvPushgatewayURL); ok && v != "" {
		c.PushgatewayURL = v
	}
}
