package asr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// WhisperX configuration constants.
const (
	uvxCommand        = "uvx"
	defaultModel      = "small"
	cudaIndexURL      = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL      = "https://pypi.org/simple"
	batchSize         = "4"
	chunkSize         = "15"
	beamSize          = "10"
	bestOf            = "10"
	temperature       = "0.0"
	patience          = "1.0"
	segmentResolution = "sentence"
	vadMethod         = "silero"
	cpuDevice         = "cpu"
	cudaDevice        = "cuda"
	cpuComputeType    = "float32"
)

// WhisperXOptions captures runtime settings for WhisperX transcriptions.
type WhisperXOptions struct {
	Model       string
	Language    string
	CUDAEnabled bool
	Timeout     time.Duration
}

// WhisperX transcribes audio by launching WhisperX through uvx.
type WhisperX struct {
	opts WhisperXOptions
	run  runner
	look lookPath
}

// runner executes an external command and returns its combined output.
// Injected in tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

type lookPath func(name string) (string, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// WhisperX/pyannote checkpoint loading.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return cmd.CombinedOutput()
}

// WhisperXOption configures a WhisperX backend.
type WhisperXOption func(*WhisperX)

// WithWhisperXRunner overrides command execution.
func WithWhisperXRunner(run runner) WhisperXOption {
	return func(w *WhisperX) {
		if run != nil {
			w.run = run
		}
	}
}

// WithWhisperXLookPath overrides executable resolution.
func WithWhisperXLookPath(look lookPath) WhisperXOption {
	return func(w *WhisperX) {
		if look != nil {
			w.look = look
		}
	}
}

// NewWhisperX constructs the WhisperX backend.
func NewWhisperX(opts WhisperXOptions, options ...WhisperXOption) *WhisperX {
	if strings.TrimSpace(opts.Model) == "" {
		opts.Model = defaultModel
	}
	backend := &WhisperX{
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
func (w *WhisperX) Name() string { return "whisperx" }

// Available checks that uvx can be found.
func (w *WhisperX) Available(_ context.Context) error {
	if _, err := w.look(uvxCommand); err != nil {
		return &TranscriptionError{Kind: KindUnavailable, Backend: w.Name(), Err: fmt.Errorf("locate %s: %w", uvxCommand, err)}
	}
	return nil
}

// Transcribe writes the WAV payload to a working directory, runs WhisperX on
// it, and loads the transcript from the JSON output.
func (w *WhisperX) Transcribe(ctx context.Context, wav []byte) (Result, error) {
	if len(wav) == 0 {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: errors.New("empty audio payload")}
	}

	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp("", "epimatch-whisperx-")
	if err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: fmt.Errorf("create work dir: %w", err)}
	}
	defer os.RemoveAll(workDir)

	source := filepath.Join(workDir, "segment.wav")
	if err := os.WriteFile(source, wav, 0o644); err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: fmt.Errorf("write segment: %w", err)}
	}

	args := w.buildArgs(source, workDir)
	if output, err := w.run(ctx, uvxCommand, args...); err != nil {
		return Result{}, &TranscriptionError{
			Kind:    classifyRunError(ctx, err),
			Backend: w.Name(),
			Err:     fmt.Errorf("%s: %w: %s", uvxCommand, err, strings.TrimSpace(string(output))),
		}
	}

	text, err := loadTranscriptText(filepath.Join(workDir, "segment.json"))
	if err != nil {
		return Result{}, &TranscriptionError{Kind: KindFailed, Backend: w.Name(), Err: err}
	}
	return Result{Text: text, Backend: w.Name()}, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (w *WhisperX) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 32)

	if w.opts.CUDAEnabled {
		args = append(args,
			"--index-url", cudaIndexURL,
			"--extra-index-url", pypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", pypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", w.opts.Model,
		"--batch_size", batchSize,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--segment_resolution", segmentResolution,
		"--chunk_size", chunkSize,
		"--vad_method", vadMethod,
		"--beam_size", beamSize,
		"--best_of", bestOf,
		"--temperature", temperature,
		"--patience", patience,
	)

	if lang := strings.TrimSpace(w.opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if w.opts.CUDAEnabled {
		args = append(args, "--device", cudaDevice)
	} else {
		args = append(args, "--device", cpuDevice, "--compute_type", cpuComputeType)
	}

	return args
}

type whisperXSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

func loadTranscriptText(jsonPath string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", fmt.Errorf("read whisperx output: %w", err)
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse whisperx json: %w", err)
	}
	parts := make([]string, 0, len(payload.Segments))
	for _, segment := range payload.Segments {
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

func classifyRunError(ctx context.Context, err error) Kind {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, exec.ErrNotFound) {
		return KindUnavailable
	}
	return KindFailed
}
