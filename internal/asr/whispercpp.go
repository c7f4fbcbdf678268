package asr

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

const whisperCLICommand = "whisper-cli"

// WhisperCPPOptions captures runtime settings for whisper.cpp transcriptions.
type WhisperCPPOptions struct {
	// ModelPath points at a ggml model file. Required.
	ModelPath string
	Language  string
	Timeout   time.Duration
}

// WhisperCPP transcribes audio with the whisper.cpp CLI. It is cheaper to
// start than WhisperX and serves as the fallback backend.
type WhisperCPP struct {
	opts WhisperCPPOptions
	run  runner
	look lookPath
}

// WhisperCPPOption configures a WhisperCPP backend.
type WhisperCPPOption func(*WhisperCPP)

// WithWhisperCPPRunner overrides command execution.
func WithWhisperCPPRunner(run runner) WhisperCPPOption {
	return func(w *WhisperCPP) {
		if run != nil {
			w.run = run
		}
	}
}

// WithWhisperCPPLookPath overrides executable resolution.
func WithWhisperCPPLookPath(look lookPath) WhisperCPPOption {
	return func(w *WhisperCPP) {
		if look != nil {
			w.look = look
		}
	}
}

// NewWhisperCPP constructs the whisper.cpp backend.
func NewWhisperCPP(opts WhisperCPPOptions, options ...WhisperCPPOption) *WhisperCPP {
	backend := &WhisperCPP{
		opts: opts,
		run:  execRunner,
		look: exec.LookPath,
	}
	for _, option := range options {
		option(backend)
	}
	return backend
}

// Name identifies the backend.
func (w *WhisperCPP) Name() string { return "whispercpp" }

// Available checks that whisper-cli and the model file exist.
func (w *WhisperCPP) Available(_ context.Context) error {
	if _, err := w.look(whisperCLICommand); err != nil {
		return &TranscriptionError{Kind: KindUnavailable, Backend: w.Name(), Err: fmt.Errorf("locate %s: %w", whisperCLICommand, err)}
	}
	if strings.TrimSpace(w.opts.ModelPath) == "" {
		return &TranscriptionError{Kind: KindUnavailable, Backend: w.Name(), Err: errors.New("model path not configured")}
	}
	if _, err := os.Stat(w.opts.ModelPath); err != nil {
		return &TranscriptionError{Kind: KindUnavailable, Backend: w.Name(), Err: fmt.Errorf("stat model: %w", err)}
	}
	return nil
}

// Transcribe writes the WAV payload to a working directory and runs
// whisper-cli over it, reading the transcript from the text output file.
func (w *WhisperCPP) Transcribe(ctx context.Context, wav []byte) (Result, error) {
	if len(wav) == 0 {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: errors.New("empty audio payload")}
	}

	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp("", "epimatch-whispercpp-")
	if err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: fmt.Errorf("create work dir: %w", err)}
	}
	defer os.RemoveAll(workDir)

	source := filepath.Join(workDir, "segment.wav")
	if err := os.WriteFile(source, wav, 0o644); err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: fmt.Errorf("write segment: %w", err)}
	}

	outputBase := filepath.Join(workDir, "segment")
	args := []string{
		"-m", w.opts.ModelPath,
		"-f", source,
		"--no-timestamps",
		"--no-prints",
		"--output-txt",
		"--output-file", outputBase,
	}
	if lang := strings.TrimSpace(w.opts.Language); lang != "" {
		args = append(args, "-l", lang)
	}

	if output, err := w.run(ctx, whisperCLICommand, args...); err != nil {
		return Result{}, &TranscriptionError{
			Kind:    classifyRunError(ctx, err),
			Backend: w.Name(),
			Err:     fmt.Errorf("%s: %w: %s", whisperCLICommand, err, strings.TrimSpace(string(output))),
		}
	}

	data, err := os.ReadFile(outputBase + ".txt")
	if err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: fmt.Errorf("read transcript: %w", err)}
	}
	return Result{Text: strings.TrimSpace(string(data)), Backend: w.Name()}, nil
}
