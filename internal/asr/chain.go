package asr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"epimatch/internal/config"
	"epimatch/internal/logging"
)

// Chain tries its backends in order until one produces a transcript.
// Initialization happens once on first use: backends whose tooling is
// missing are dropped for the life of the process. Transcriptions are
// serialized because the underlying models are memory-hungry singletons.
type Chain struct {
	backends []Backend
	logger   *slog.Logger

	initOnce sync.Once
	mu       sync.Mutex
	ready    []Backend
}

// NewChain constructs a chain over the given backends, tried in order.
func NewChain(logger *slog.Logger, backends ...Backend) *Chain {
	return &Chain{
		backends: backends,
		logger:   logging.NewComponentLogger(logger, "asr"),
	}
}

// FromConfig builds a chain matching the configured backend order.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*Chain, error) {
	timeout := time.Duration(cfg.ASR.TimeoutSeconds) * time.Second
	backends := make([]Backend, 0, len(cfg.ASR.Backends))
	for _, name := range cfg.ASR.Backends {
		switch name {
		case "whisperx":
			backends = append(backends, NewWhisperX(WhisperXOptions{
				Model:       cfg.ASR.Model,
				Language:    cfg.ASR.Language,
				CUDAEnabled: cfg.ASR.CUDAEnabled,
				Timeout:     timeout,
			}))
		case "whispercpp":
			backends = append(backends, NewWhisperCPP(WhisperCPPOptions{
				ModelPath: filepath.Join(cfg.Paths.CacheDir, "models", "ggml-"+cfg.ASR.Model+".bin"),
				Language:  cfg.ASR.Language,
				Timeout:   timeout,
			}))
		default:
			return nil, fmt.Errorf("asr chain: unknown backend %q", name)
		}
	}
	if len(backends) == 0 {
		return nil, errors.New("asr chain: no backends configured")
	}
	return NewChain(logger, backends...), nil
}

// Warmup resolves backend availability ahead of the first transcription.
func (c *Chain) Warmup(ctx context.Context) error {
	c.init(ctx)
	if len(c.ready) == 0 {
		return &TranscriptionError{Kind: KindUnavailable, Backend: "chain", Err: errors.New("no transcription backend available")}
	}
	return nil
}

// Backends returns the names of the backends that survived initialization.
// Before first use it returns the configured order.
func (c *Chain) Backends() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	source := c.backends
	if c.ready != nil {
		source = c.ready
	}
	names := make([]string, 0, len(source))
	for _, backend := range source {
		names = append(names, backend.Name())
	}
	return names
}

// Transcribe runs the WAV payload through the first backend that succeeds.
// An empty transcript from one backend is a valid result, not a reason to
// fall through: silence in the sampled window is signal for the matcher.
func (c *Chain) Transcribe(ctx context.Context, wav []byte) (Result, error) {
	c.init(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.ready) == 0 {
		return Result{}, &TranscriptionError{Kind: KindUnavailable, Backend: "chain", Err: errors.New("no transcription backend available")}
	}

	var lastErr error
	remaining := make([]Backend, 0, len(c.ready))
	for i, backend := range c.ready {
		result, err := backend.Transcribe(ctx, wav)
		if err == nil {
			remaining = append(remaining, c.ready[i:]...)
			c.ready = remaining
			return result, nil
		}
		lastErr = err

		var transcriptionErr *TranscriptionError
		if errors.As(err, &transcriptionErr) && transcriptionErr.Kind == KindUnavailable {
			c.logger.Warn("dropping unavailable transcription backend",
				logging.String("backend", backend.Name()),
				logging.Error(err))
			continue
		}
		if ctx.Err() != nil {
			remaining = append(remaining, c.ready[i:]...)
			c.ready = remaining
			return Result{}, err
		}
		c.logger.Warn("transcription backend failed, trying next",
			logging.String("backend", backend.Name()),
			logging.Error(err))
		remaining = append(remaining, backend)
	}
	c.ready = remaining
	return Result{}, lastErr
}

func (c *Chain) init(ctx context.Context) {
	c.initOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		ready := make([]Backend, 0, len(c.backends))
		for _, backend := range c.backends {
			if err := backend.Available(ctx); err != nil {
				c.logger.Warn("transcription backend unavailable",
					logging.String("backend", backend.Name()),
					logging.Error(err))
				continue
			}
			ready = append(ready, backend)
		}
		c.ready = ready
	})
}
