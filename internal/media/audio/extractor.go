package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies extraction failures.
type Kind string

const (
	KindTimeout       Kind = "timeout"
	KindDecode        Kind = "decode"
	KindMissingStream Kind = "missing_stream"
)

// ExtractionError describes a failed audio extraction with its failure class,
// so callers can decide whether the checkpoint is retriable elsewhere or the
// whole file should be skipped.
type ExtractionError struct {
	Kind   Kind
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract audio from %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// runner executes an external command and returns its combined output.
// Injected in tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner overrides command execution.
func WithRunner(run runner) Option {
	return func(e *Extractor) {
		if run != nil {
			e.run = run
		}
	}
}

// Extractor produces mono 16kHz PCM WAV segments from media files via ffmpeg.
type Extractor struct {
	binary  string
	timeout time.Duration
	run     runner
}

// NewExtractor constructs an Extractor. An empty binary defaults to "ffmpeg";
// a non-positive timeout disables the per-extraction deadline.
func NewExtractor(binary string, timeout time.Duration, opts ...Option) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	extractor := &Extractor{
		binary:  binary,
		timeout: timeout,
		run:     execRunner,
	}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// Segment extracts durationSec seconds of audio starting at startSec from the
// given stream index. The returned bytes are a complete WAV file. The
// temporary artifact is always removed before returning.
func (e *Extractor) Segment(ctx context.Context, source string, streamIndex, startSec, durationSec int) ([]byte, error) {
	if streamIndex < 0 {
		return nil, &ExtractionError{Kind: KindMissingStream, Source: source, Err: fmt.Errorf("invalid audio stream index %d", streamIndex)}
	}
	if durationSec <= 0 {
		return nil, &ExtractionError{Kind: KindDecode, Source: source, Err: fmt.Errorf("invalid duration %d", durationSec)}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	tempDir, err := os.MkdirTemp("", "epimatch-audio-")
	if err != nil {
		return nil, &ExtractionError{Kind: KindDecode, Source: source, Err: fmt.Errorf("create temp dir: %w", err)}
	}
	defer os.RemoveAll(tempDir)

	dest := filepath.Join(tempDir, "segment.wav")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%d", startSec),
		"-t", fmt.Sprintf("%d", durationSec),
		"-i", source,
		"-map", fmt.Sprintf("0:%d", streamIndex),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}

	output, err := e.run(ctx, e.binary, args...)
	if err != nil {
		return nil, &ExtractionError{
			Kind:   classify(ctx, output, err),
			Source: source,
			Err:    fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output))),
		}
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		return nil, &ExtractionError{Kind: KindDecode, Source: source, Err: fmt.Errorf("read segment: %w", err)}
	}
	if len(data) == 0 {
		return nil, &ExtractionError{Kind: KindDecode, Source: source, Err: errors.New("ffmpeg produced empty segment")}
	}
	return data, nil
}

func classify(ctx context.Context, output []byte, err error) Kind {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	text := strings.ToLower(string(output))
	if strings.Contains(text, "matches no streams") || strings.Contains(text, "stream map") || strings.Contains(text, "does not contain any stream") {
		return KindMissingStream
	}
	return KindDecode
}
