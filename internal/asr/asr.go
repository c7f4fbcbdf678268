package asr

import (
	"context"
	"fmt"
	"strings"
)

// Result holds the output of one transcription.
type Result struct {
	// Text is the plain transcript with segments joined by spaces.
	Text string
	// Backend names the backend that produced the text.
	Backend string
}

// IsEmpty reports whether the transcription produced no usable speech.
func (r Result) IsEmpty() bool {
	return strings.TrimSpace(r.Text) == ""
}

// Kind classifies transcription failures.
type Kind string

const (
	// KindUnavailable means the backend tooling is not installed or cannot
	// start. The chain drops the backend for the rest of the process.
	KindUnavailable Kind = "unavailable"
	// KindTimeout means the backend exceeded its per-segment deadline.
	KindTimeout Kind = "timeout"
	// KindFailed means the backend ran but could not produce a transcript.
	KindFailed Kind = "failed"
)

// TranscriptionError describes a failed transcription attempt.
type TranscriptionError struct {
	Kind    Kind
	Backend string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe via %s: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Backend turns a WAV segment into text. Implementations are not required to
// be safe for concurrent use; the Chain serializes access.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string
	// Available reports whether the backend's tooling can run at all.
	Available(ctx context.Context) error
	// Transcribe converts a complete WAV payload into text.
	Transcribe(ctx context.Context, wav []byte) (Result, error)
}
