package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/userclean/internal/model"
)

// Default configuration values.
const (
	// DefaultInputPath is read when no input file is given.
	DefaultInputPath = "data.json"

	// DefaultOutputPath receives the cleaned dataset.
	DefaultOutputPath = "transformed.json"

	// DefaultChunkSize bounds the number of records processed as one unit.
	DefaultChunkSize = 1000

	// DefaultTopN is the number of entries shown per ranking.
	DefaultTopN = 10

	// DefaultWorkers of 1 processes chunks sequentially.
	DefaultWorkers = 1

	// DefaultJobName is the Pushgateway job name.
	DefaultJobName = "userclean"

	// DefaultLocale selects the number formatting of the text summary.
	DefaultLocale = "en"

	// AppName is the application name used for XDG directory paths.
	AppName = "userclean"

	// EnvPushgatewayURL is consulted when --pushgateway-url is not given.
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
)

// Config holds all configuration options for a userclean run.
// It is populated from built-in defaults, the config file, environment and
// CLI flags, and passed down explicitly rather than kept in global state.
type Config struct {
	// InputPath is the JSON file holding the raw user records.
	InputPath string

	// OutputPath is where the cleaned dataset is written. Paths ending in
	// .db, .sqlite or .sqlite3 are written as SQLite, everything else as JSON.
	OutputPath string

	// Mode is the requested mode name. Unknown names fall back to the
	// default mode; see ResolveMode.
	Mode string

	// ChunkSize is the number of records per chunk. Must be positive.
	ChunkSize int

	// TopN is the number of ranked entries reported per table.
	TopN int

	// Workers is the number of chunks processed concurrently.
	Workers int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// Profile names the config file profile to apply. Empty means only the
	// defaults section is applied.
	Profile string

	// JSONReport prints the run summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run summary as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the file the summary is written to instead of stdout.
	ReportFile string

	// PushgatewayURL enables pushing run metrics to a Prometheus Pushgateway.
	PushgatewayURL string

	// JobName is the Pushgateway job grouping key.
	JobName string

	// Locale is a BCP 47 tag for number formatting in the text summary.
	Locale string

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string
}

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputPath:  DefaultInputPath,
		OutputPath: DefaultOutputPath,
		Mode:       string(model.ModeDefault),
		ChunkSize:  DefaultChunkSize,
		TopN:       DefaultTopN,
		Workers:    DefaultWorkers,
		JobName:    DefaultJobName,
		Locale:     DefaultLocale,
		LogFormat:  LogFormatText,
	}
}

// ResolveMode maps the configured mode name to a model.Mode.
// The second return value is false when the name was not recognized and
// the default mode was substituted.
func (c *Config) ResolveMode() (model.Mode, bool) {
	return model.ParseMode(c.Mode)
}

// LanguageTag returns the parsed Locale, or English when it does not parse.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// XDGConfigDir returns the XDG config directory for userclean.
// On Linux: ~/.config/userclean
// On macOS: ~/Library/Application Support/userclean
// On Windows: %APPDATA%\userclean
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the config file path inside XDGConfigDir.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), "config.yaml")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ErrNoInput
	}

	if c.OutputPath == "" {
		return ErrNoOutput
	}

	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	// TopN of zero is allowed and yields empty rankings
	if c.TopN < 0 {
		return ErrInvalidTopN
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return ErrInvalidLocale
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}
