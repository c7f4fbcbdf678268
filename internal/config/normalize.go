package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatcher()
	c.normalizeASR()
	c.normalizeCache()
	c.normalizeOpenSubtitles()
	c.normalizeTMDB()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SubtitleCacheDir) == "" {
		c.Paths.SubtitleCacheDir = defaultSubtitleCacheDir
	}
	if c.Paths.SubtitleCacheDir, err = expandPath(c.Paths.SubtitleCacheDir); err != nil {
		return fmt.Errorf("paths.subtitle_cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.WindowSeconds <= 0 {
		c.Matcher.WindowSeconds = defaultWindowSeconds
	}
	if c.Matcher.SampleBudgetSeconds <= 0 {
		c.Matcher.SampleBudgetSeconds = defaultSampleBudgetSeconds
	}
	if c.Matcher.Workers <= 0 {
		c.Matcher.Workers = defaultWorkers()
	}
}

func (c *Config) normalizeASR() {
	if len(c.ASR.Backends) == 0 {
		c.ASR.Backends = []string{"whisperx"}
	} else {
		backends := make([]string, 0, len(c.ASR.Backends))
		seen := make(map[string]struct{}, len(c.ASR.Backends))
		for _, backend := range c.ASR.Backends {
			normalized := strings.ToLower(strings.TrimSpace(backend))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			backends = append(backends, normalized)
		}
		if len(backends) == 0 {
			backends = []string{"whisperx"}
		}
		c.ASR.Backends = backends
	}
	c.ASR.Model = strings.TrimSpace(c.ASR.Model)
	if c.ASR.Model == "" {
		c.ASR.Model = defaultASRModel
	}
	c.ASR.Language = strings.ToLower(strings.TrimSpace(c.ASR.Language))
	if c.ASR.Language == "" {
		c.ASR.Language = defaultASRLanguage
	}
	if c.ASR.TimeoutSeconds <= 0 {
		c.ASR.TimeoutSeconds = defaultASRTimeoutSeconds
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.MaxItems <= 0 {
		c.Cache.MaxItems = defaultCacheMaxItems
	}
	if c.Cache.MaxMemoryMiB <= 0 {
		c.Cache.MaxMemoryMiB = defaultCacheMaxMemoryMiB
	}
}

func (c *Config) normalizeOpenSubtitles() {
	c.OpenSubtitles.APIKey = strings.TrimSpace(c.OpenSubtitles.APIKey)
	if c.OpenSubtitles.APIKey == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_API_KEY"); ok {
			c.OpenSubtitles.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenSubtitles.UserAgent = strings.TrimSpace(c.OpenSubtitles.UserAgent)
	if c.OpenSubtitles.UserAgent == "" {
		c.OpenSubtitles.UserAgent = defaultUserAgent
	}
	c.OpenSubtitles.UserToken = strings.TrimSpace(c.OpenSubtitles.UserToken)
	if c.OpenSubtitles.UserToken == "" {
		if value, ok := os.LookupEnv("OPENSUBTITLES_USER_TOKEN"); ok {
			c.OpenSubtitles.UserToken = strings.TrimSpace(value)
		}
	}
	if len(c.OpenSubtitles.Languages) == 0 {
		c.OpenSubtitles.Languages = []string{"en"}
	} else {
		langs := make([]string, 0, len(c.OpenSubtitles.Languages))
		seen := make(map[string]struct{}, len(c.OpenSubtitles.Languages))
		for _, lang := range c.OpenSubtitles.Languages {
			normalized := strings.ToLower(strings.TrimSpace(lang))
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			langs = append(langs, normalized)
		}
		if len(langs) == 0 {
			langs = []string{"en"}
		}
		c.OpenSubtitles.Languages = langs
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = value
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
