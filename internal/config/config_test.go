package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("expected exists=false for missing file")
	}
	if cfg.Matcher.ConfidenceThreshold != 0.80 {
		t.Errorf("ConfidenceThreshold = %v, want 0.80", cfg.Matcher.ConfidenceThreshold)
	}
	if cfg.Matcher.SampleBudgetSeconds != 900 {
		t.Errorf("SampleBudgetSeconds = %v, want 900", cfg.Matcher.SampleBudgetSeconds)
	}
	if len(cfg.ASR.Backends) != 1 || cfg.ASR.Backends[0] != "whisperx" {
		t.Errorf("ASR.Backends = %v, want [whisperx]", cfg.ASR.Backends)
	}
	if !filepath.IsAbs(cfg.Paths.CacheDir) {
		t.Errorf("CacheDir not expanded: %q", cfg.Paths.CacheDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[matcher]
confidence_threshold = 0.9
workers = 4

[asr]
backends = ["whispercpp", "whisperx"]
model = "large-v3"

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Matcher.ConfidenceThreshold != 0.9 {
		t.Errorf("ConfidenceThreshold = %v, want 0.9", cfg.Matcher.ConfidenceThreshold)
	}
	if cfg.Matcher.Workers != 4 {
		t.Errorf("Workers = %v, want 4", cfg.Matcher.Workers)
	}
	if len(cfg.ASR.Backends) != 2 || cfg.ASR.Backends[0] != "whispercpp" {
		t.Errorf("Backends = %v", cfg.ASR.Backends)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Matcher.ConfidenceThreshold = 1.5 }},
		{"soft above confidence", func(c *Config) { c.Matcher.SoftThreshold = 0.95 }},
		{"negative margin", func(c *Config) { c.Matcher.MinMargin = -0.1 }},
		{"budget below window", func(c *Config) { c.Matcher.SampleBudgetSeconds = 10 }},
		{"unknown backend", func(c *Config) { c.ASR.Backends = []string{"vosk"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateOpenSubtitlesRequiresKeys(t *testing.T) {
	cfg := Default()
	cfg.OpenSubtitles.Enabled = true
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when enabled without api key")
	}
	if !strings.Contains(err.Error(), "opensubtitles.api_key") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.OpenSubtitles.APIKey = "k"
	cfg.TMDB.APIKey = "t"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNormalizeDedupesBackends(t *testing.T) {
	cfg := Default()
	cfg.ASR.Backends = []string{" WhisperX ", "whisperx", "whispercpp"}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := []string{"whisperx", "whispercpp"}
	if len(cfg.ASR.Backends) != len(want) {
		t.Fatalf("Backends = %v, want %v", cfg.ASR.Backends, want)
	}
	for i := range want {
		if cfg.ASR.Backends[i] != want[i] {
			t.Errorf("Backends[%d] = %q, want %q", i, cfg.ASR.Backends[i], want[i])
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[matcher]") {
		t.Error("sample missing [matcher] section")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}
}
