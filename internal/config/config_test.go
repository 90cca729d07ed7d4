package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/nao1215/userclean/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail otherwise.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default input is data.json", func(t *testing.T) {
		t.Parallel()
		if cfg.InputPath != "data.json" {
			t.Errorf("expected InputPath to be 'data.json', got '%s'", cfg.InputPath)
		}
	})

	t.Run("default output is transformed.json", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputPath != "transformed.json" {
			t.Errorf("expected OutputPath to be 'transformed.json', got '%s'", cfg.OutputPath)
		}
	})

	t.Run("default mode is default", func(t *testing.T) {
		t.Parallel()
		if mode, ok := cfg.ResolveMode(); mode != model.ModeDefault || !ok {
			t.Errorf("expected default mode, got %s (%v)", mode, ok)
		}
	})

	t.Run("default chunk size is 1000", func(t *testing.T) {
		t.Parallel()
		if cfg.ChunkSize != 1000 {
			t.Errorf("expected ChunkSize to be 1000, got %d", cfg.ChunkSize)
		}
	})

	t.Run("default top is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.TopN != 10 {
			t.Errorf("expected TopN to be 10, got %d", cfg.TopN)
		}
	})

	t.Run("default workers is 1", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 1 {
			t.Errorf("expected Workers to be 1, got %d", cfg.Workers)
		}
	})

	t.Run("default job name is userclean", func(t *testing.T) {
		t.Parallel()
		if cfg.JobName != "userclean" {
			t.Errorf("expected JobName to be 'userclean', got '%s'", cfg.JobName)
		}
	})

	t.Run("default Verbose is false", func(t *testing.T) {
		t.Parallel()
		if cfg.Verbose {
			t.Error("expected Verbose to be false")
		}
	})

	t.Run("default configuration is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid defaults, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "empty input", mutate: func(c *Config) { c.InputPath = "" }, wantErr: ErrNoInput},
		{name: "empty output", mutate: func(c *Config) { c.OutputPath = "" }, wantErr: ErrNoOutput},
		{name: "zero chunk size", mutate: func(c *Config) { c.ChunkSize = 0 }, wantErr: ErrInvalidChunkSize},
		{name: "negative chunk size", mutate: func(c *Config) { c.ChunkSize = -5 }, wantErr: ErrInvalidChunkSize},
		{name: "negative top", mutate: func(c *Config) { c.TopN = -1 }, wantErr: ErrInvalidTopN},
		{name: "zero top is allowed", mutate: func(c *Config) { c.TopN = 0 }, wantErr: nil},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "malformed locale", mutate: func(c *Config) { c.Locale = "not a tag!" }, wantErr: ErrInvalidLocale},
		{name: "regional locale", mutate: func(c *Config) { c.Locale = "de-CH" }, wantErr: nil},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: ErrInvalidLogFormat},
		{name: "json log format", mutate: func(c *Config) { c.LogFormat = LogFormatJSON }, wantErr: nil},
		{
			name: "json and markdown together",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{name: "unknown mode is not an error", mutate: func(c *Config) { c.Mode = "turbo" }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestResolveMode tests mode name resolution.
func TestResolveMode(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Mode = " Minimal "
	if mode, ok := cfg.ResolveMode(); mode != model.ModeMinimal || !ok {
		t.Errorf("expected minimal, got %s (%v)", mode, ok)
	}

	cfg.Mode = "fast"
	if mode, ok := cfg.ResolveMode(); mode != model.ModeDefault || ok {
		t.Errorf("expected default fallback, got %s (%v)", mode, ok)
	}
}

// TestFileGetProfile tests profile merging.
func TestFileGetProfile(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: Profile{ChunkSize: 500, Top: 5, Output: "clean.json"},
		Profiles: map[string]Profile{
			"fast": {Mode: "minimal", Workers: 4, Top: 3},
		},
	}

	t.Run("empty name returns defaults", func(t *testing.T) {
		t.Parallel()

		p, err := file.GetProfile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize != 500 || p.Top != 5 || p.Mode != "" {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})

	t.Run("profile overrides defaults", func(t *testing.T) {
		t.Parallel()

		p, err := file.GetProfile("fast")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Mode != "minimal" || p.Workers != 4 || p.Top != 3 {
			t.Errorf("profile values not applied: %+v", p)
		}
		if p.ChunkSize != 500 || p.Output != "clean.json" {
			t.Errorf("defaults not kept: %+v", p)
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		t.Parallel()

		if _, err := file.GetProfile("slow"); !errors.Is(err, ErrProfileNotFound) {
			t.Errorf("expected ErrProfileNotFound, got %v", err)
		}
	})
}

// TestApplyProfile tests precedence between flags and profile values.
func TestConfigLanguageTag(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if got := cfg.LanguageTag(); got != language.English {
		t.Errorf("default tag = %v, want en", got)
	}
	cfg.Locale = "de"
	if got := cfg.LanguageTag(); got != language.German {
		t.Errorf("tag = %v, want de", got)
	}
	cfg.Locale = "not a tag!"
	if got := cfg.LanguageTag(); got != language.English {
		t.Errorf("malformed locale should fall back to en, got %v", got)
	}
}

func TestApplyProfile(t *testing.T) {
	t.Parallel()

	profile := Profile{
		Input:          "users.json",
		Mode:           "minimal",
		ChunkSize:      250,
		Top:            3,
		Workers:        2,
		Format:         "markdown",
		PushgatewayURL: "http://gw:9091",
		Job:            "nightly",
		Locale:         "de",
		LogFormat:      "json",
	}

	t.Run("applies every set field when no flag is set", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ApplyProfile(profile, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.InputPath != "users.json" || cfg.Mode != "minimal" || cfg.ChunkSize != 250 {
			t.Errorf("profile not applied: %+v", cfg)
		}
		if cfg.TopN != 3 || cfg.Workers != 2 || !cfg.MarkdownReport || cfg.JSONReport {
			t.Errorf("profile not applied: %+v", cfg)
		}
		if cfg.PushgatewayURL != "http://gw:9091" || cfg.JobName != "nightly" {
			t.Errorf("metrics settings not applied: %+v", cfg)
		}
		if cfg.Locale != "de" || cfg.LogFormat != LogFormatJSON {
			t.Errorf("locale or log format not applied: %+v", cfg)
		}
		if cfg.OutputPath != DefaultOutputPath {
			t.Errorf("unset field should keep default, got %q", cfg.OutputPath)
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ChunkSize = 42
		cfg.JSONReport = true
		explicit := map[string]bool{FlagChunkSize: true, FlagJSON: true}

		if err := cfg.ApplyProfile(profile, func(f string) bool { return explicit[f] }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ChunkSize != 42 {
			t.Errorf("expected flag chunk size 42, got %d", cfg.ChunkSize)
		}
		if !cfg.JSONReport || cfg.MarkdownReport {
			t.Errorf("expected flag format to win, got json=%v markdown=%v", cfg.JSONReport, cfg.MarkdownReport)
		}
		if cfg.Workers != 2 {
			t.Errorf("expected profile workers 2, got %d", cfg.Workers)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		err := NewConfig().ApplyProfile(Profile{Format: "pdf"}, nil)
		if err == nil || !strings.Contains(err.Error(), "pdf") {
			t.Errorf("expected unknown format error, got %v", err)
		}
	})
}

// TestApplyEnv tests environment fallbacks.
func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(key string) (string, bool) {
		if key == EnvPushgatewayURL {
			return "http://env:9091", true
		}
		return "", false
	}

	cfg := NewConfig()
	cfg.PushgatewayURL = "http://profile:9091"
	cfg.ApplyEnv(env, nil)
	if cfg.PushgatewayURL != "http://env:9091" {
		t.Errorf("expected env to override profile, got %q", cfg.PushgatewayURL)
	}

	cfg = NewConfig()
	cfg.PushgatewayURL = "http://flag:9091"
	cfg.ApplyEnv(env, func(f string) bool { return f == FlagPushgatewayURL })
	if cfg.PushgatewayURL != "http://flag:9091" {
		t.Errorf("expected flag to win, got %q", cfg.PushgatewayURL)
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.userclean")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".userclean")
		content := `defaults:
  chunkSize: 500
  output: clean.json
profiles:
  nightly:
    mode: minimal
    workers: 8
    format: json
    pushgatewayUrl: http://gw:9091
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.ChunkSize != 500 || cf.Defaults.Output != "clean.json" {
			t.Errorf("unexpected defaults: %+v", cf.Defaults)
		}
		nightly, ok := cf.Profiles["nightly"]
		if !ok {
			t.Fatal("expected nightly profile")
		}
		if nightly.Mode != "minimal" || nightly.Workers != 8 || nightly.Format != "json" {
			t.Errorf("unexpected profile: %+v", nightly)
		}
		if nightly.PushgatewayURL != "http://gw:9091" {
			t.Errorf("unexpected pushgateway url: %q", nightly.PushgatewayURL)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".userclean")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Profiles map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".userclean")
		if err := os.WriteFile(configPath, []byte("defaults:\n  top: 3\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Profiles == nil {
			t.Error("expected Profiles map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("expected XDGConfigDir to end with %q, got %q", AppName, dir)
	}
	if file := XDGConfigFile(); filepath.Base(file) != "config.yaml" {
		t.Errorf("expected config.yaml, got %q", file)
	}
}
