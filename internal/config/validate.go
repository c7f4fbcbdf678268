package config

import (
	"errors"
	"fmt"
)

var knownBackends = map[string]struct{}{
	"whisperx":   {},
	"whispercpp": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateASR(); err != nil {
		return err
	}
	if err := c.validateOpenSubtitles(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.ConfidenceThreshold < 0 || c.Matcher.ConfidenceThreshold > 1 {
		return errors.New("matcher.confidence_threshold must be between 0 and 1")
	}
	if c.Matcher.SoftThreshold < 0 || c.Matcher.SoftThreshold > 1 {
		return errors.New("matcher.soft_threshold must be between 0 and 1")
	}
	if c.Matcher.SoftThreshold > c.Matcher.ConfidenceThreshold {
		return errors.New("matcher.soft_threshold must not exceed matcher.confidence_threshold")
	}
	if c.Matcher.MinMargin < 0 || c.Matcher.MinMargin > 1 {
		return errors.New("matcher.min_margin must be between 0 and 1")
	}
	if c.Matcher.WindowSeconds <= 0 {
		return errors.New("matcher.window_seconds must be positive")
	}
	if c.Matcher.SampleBudgetSeconds < c.Matcher.WindowSeconds {
		return errors.New("matcher.sample_budget_seconds must allow at least one window")
	}
	return nil
}

func (c *Config) validateASR() error {
	for _, backend := range c.ASR.Backends {
		if _, ok := knownBackends[backend]; !ok {
			return fmt.Errorf("asr.backends: unknown backend %q (expected whisperx or whispercpp)", backend)
		}
	}
	return nil
}

func (c *Config) validateOpenSubtitles() error {
	if !c.OpenSubtitles.Enabled {
		return nil
	}
	if c.OpenSubtitles.APIKey == "" {
		return errors.New("opensubtitles.api_key is required when opensubtitles.enabled is true. Set OPENSUBTITLES_API_KEY env var or edit the config file")
	}
	if c.TMDB.APIKey == "" {
		return errors.New("tmdb.api_key is required when opensubtitles.enabled is true. Set TMDB_API_KEY env var or edit the config file")
	}
	return nil
}
