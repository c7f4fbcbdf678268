package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"epimatch/internal/asr"
	"epimatch/internal/batch"
	"epimatch/internal/cache"
	"epimatch/internal/config"
	"epimatch/internal/identify"
	"epimatch/internal/logging"
	"epimatch/internal/media/audio"
	"epimatch/internal/queue"
	"epimatch/internal/refdata"
	"epimatch/internal/refdata/opensubtitles"
	"epimatch/internal/tmdb"
)

// extractionTimeout bounds one ffmpeg segment extraction. Generous relative
// to the 30s sampling window because seeking in large remuxes is slow.
const extractionTimeout = 60 * time.Second

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		logger, logErr := logging.NewFromConfig(cfg)
		if logErr != nil {
			c.configErr = logErr
			return
		}
		c.logger = logger
	})
	if c.logger == nil {
		return nil, c.configErr
	}
	return c.logger, nil
}

func (c *commandContext) openStore() (*queue.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return queue.Open(cfg)
}

// buildRunner wires the full identification pipeline: probe, extractor, ASR
// chain, reference sources, caches, and the batch worker pool.
func (c *commandContext) buildRunner(store *queue.Store) (*batch.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	artifacts := cache.New(cfg.Cache.MaxItems, int64(cfg.Cache.MaxMemoryMiB)*1024*1024)
	prober := batch.NewFFprobeProber(cfg.FFprobeBinary(), cfg.ASR.Language, artifacts)
	extractor := audio.NewExtractor(cfg.FFmpegBinary(), extractionTimeout)

	chain, err := asr.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	source, titles, err := c.buildReferenceStack(cfg, logger)
	if err != nil {
		return nil, err
	}

	factory := func(progress identify.ProgressFunc) batch.FileIdentifier {
		return identify.New(extractor, chain, artifacts, identify.OptionsFromConfig(cfg), progress, logger)
	}
	corpora := batch.NewCorpusProvider(source, artifacts)
	return batch.NewRunner(store, prober, corpora, factory, titles, cfg.Matcher.Workers, logger), nil
}

// buildReferenceStack assembles the subtitle sources: the local cache always,
// plus the OpenSubtitles-backed remote source when enabled. Title lookup
// rides on the same TMDB client.
func (c *commandContext) buildReferenceStack(cfg *config.Config, logger *slog.Logger) (refdata.Source, batch.TitleLookup, error) {
	local := refdata.NewLocalSource(cfg.Paths.SubtitleCacheDir, refdata.DefaultWindowSeconds)
	sources := []refdata.Source{local}

	var titles batch.TitleLookup
	if cfg.TMDB.APIKey != "" {
		tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			return nil, nil, err
		}
		titles = batch.NewTMDBTitles(tmdbClient)

		if cfg.OpenSubtitles.Enabled {
			osClient, err := opensubtitles.New(opensubtitles.Config{
				APIKey:    cfg.OpenSubtitles.APIKey,
				UserAgent: cfg.OpenSubtitles.UserAgent,
				UserToken: cfg.OpenSubtitles.UserToken,
			})
			if err != nil {
				return nil, nil, err
			}
			sources = append(sources, refdata.NewRemoteSource(
				tmdbClient, osClient, local,
				cfg.OpenSubtitles.Languages, refdata.DefaultWindowSeconds, logger))
		}
	}

	return refdata.NewComposite(logger, sources...), titles, nil
}
