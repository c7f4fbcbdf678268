package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir         string `toml:"cache_dir"`
	LogDir           string `toml:"log_dir"`
	SubtitleCacheDir string `toml:"subtitle_cache_dir"`
}

// Matcher contains configuration for checkpoint planning and confidence
// aggregation.
type Matcher struct {
	// ConfidenceThreshold is the aggregate confidence required to declare a
	// match. Default: 0.80
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	// SoftThreshold is the aggregate confidence below which a run is reported
	// as failed instead of inconclusive once sampling is exhausted. Default: 0.60
	SoftThreshold float64 `toml:"soft_threshold"`
	// MinMargin is the minimum confidence gap over the runner-up episode
	// required for an early confident stop. Default: 0.10
	MinMargin float64 `toml:"min_margin"`
	// WindowSeconds is the audio duration extracted per checkpoint.
	WindowSeconds int `toml:"window_seconds"`
	// SampleBudgetSeconds caps the total audio sampled per file.
	SampleBudgetSeconds int `toml:"sample_budget_seconds"`
	// Workers bounds how many files are identified concurrently.
	Workers int `toml:"workers"`
}

// ASR contains configuration for the speech-to-text backends.
type ASR struct {
	// Backends lists the transcription backends tried in order
	// ("whisperx", "whispercpp").
	Backends       []string `toml:"backends"`
	Model          string   `toml:"model"`
	Language       string   `toml:"language"`
	CUDAEnabled    bool     `toml:"cuda_enabled"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Cache contains bounds for the in-process artifact cache.
type Cache struct {
	MaxItems     int `toml:"max_items"`
	MaxMemoryMiB int `toml:"max_memory_mib"`
}

// OpenSubtitles contains configuration for remote reference subtitle retrieval.
type OpenSubtitles struct {
	Enabled   bool     `toml:"enabled"`
	APIKey    string   `toml:"api_key"`
	UserAgent string   `toml:"user_agent"`
	UserToken string   `toml:"user_token"`
	Languages []string `toml:"languages"`
}

// TMDB contains configuration for The Movie Database API, used to resolve
// show identifiers and season episode listings.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for epimatch.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Matcher: checkpoint thresholds, sampling budget, worker count
//   - ASR: transcription backend chain and model settings
//   - Cache: in-process artifact cache bounds
//   - OpenSubtitles: remote reference subtitle retrieval
//   - TMDB: show and season metadata lookup
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Matcher       Matcher       `toml:"matcher"`
	ASR           ASR           `toml:"asr"`
	Cache         Cache         `toml:"cache"`
	OpenSubtitles OpenSubtitles `toml:"opensubtitles"`
	TMDB          TMDB          `toml:"tmdb"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/epimatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("epimatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories epimatch writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.SubtitleCacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
