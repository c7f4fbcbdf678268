package config

import "runtime"

// defaultWorkers bounds file-level parallelism to the machine. Checkpoint
// sampling within one file is always sequential, so this only multiplies
// across files.
func defaultWorkers() int {
	return runtime.NumCPU()
}

const (
	defaultCacheDir            = "~/.cache/epimatch"
	defaultLogDir              = "~/.local/share/epimatch/logs"
	defaultSubtitleCacheDir    = "~/.cache/epimatch/subtitles"
	defaultConfidenceThreshold = 0.80
	defaultSoftThreshold       = 0.60
	defaultMinMargin           = 0.10
	defaultWindowSeconds       = 30
	defaultSampleBudgetSeconds = 900
	defaultASRModel            = "small"
	defaultASRLanguage         = "en"
	defaultASRTimeoutSeconds   = 300
	defaultCacheMaxItems       = 128
	defaultCacheMaxMemoryMiB   = 512
	defaultUserAgent           = "epimatch/dev"
	defaultTMDBBaseURL         = "https://api.themoviedb.org/3"
	defaultTMDBLanguage        = "en-US"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir:         defaultCacheDir,
			LogDir:           defaultLogDir,
			SubtitleCacheDir: defaultSubtitleCacheDir,
		},
		Matcher: Matcher{
			ConfidenceThreshold: defaultConfidenceThreshold,
			SoftThreshold:       defaultSoftThreshold,
			MinMargin:           defaultMinMargin,
			WindowSeconds:       defaultWindowSeconds,
			SampleBudgetSeconds: defaultSampleBudgetSeconds,
			Workers:             defaultWorkers(),
		},
		ASR: ASR{
			Backends:       []string{"whisperx"},
			Model:          defaultASRModel,
			Language:       defaultASRLanguage,
			TimeoutSeconds: defaultASRTimeoutSeconds,
		},
		Cache: Cache{
			MaxItems:     defaultCacheMaxItems,
			MaxMemoryMiB: defaultCacheMaxMemoryMiB,
		},
		OpenSubtitles: OpenSubtitles{
			UserAgent: defaultUserAgent,
			Languages: []string{"en"},
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
