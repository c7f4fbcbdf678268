package asr

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	name         string
	availableErr error
	results      []Result
	errs         []error
	calls        int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Available(context.Context) error { return f.availableErr }

func (f *fakeBackend) Transcribe(context.Context, []byte) (Result, error) {
	index := f.calls
	f.calls++
	if index >= len(f.results) {
		index = len(f.results) - 1
	}
	return f.results[index], f.errs[index]
}

func TestChainUsesFirstBackend(t *testing.T) {
	primary := &fakeBackend{
		name:    "primary",
		results: []Result{{Text: "hello there", Backend: "primary"}},
		errs:    []error{nil},
	}
	fallback := &fakeBackend{
		name:    "fallback",
		results: []Result{{}},
		errs:    []error{nil},
	}
	chain := NewChain(nil, primary, fallback)

	result, err := chain.Transcribe(context.Background(), []byte("wav"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Backend != "primary" || result.Text != "hello there" {
		t.Errorf("result = %+v", result)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not have been tried")
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	primary := &fakeBackend{
		name:    "primary",
		results: []Result{{}},
		errs:    []error{&TranscriptionError{Kind: KindFailed, Backend: "primary", Err: errors.New("boom")}},
	}
	fallback := &fakeBackend{
		name:    "fallback",
		results: []Result{{Text: "rescued", Backend: "fallback"}},
		errs:    []error{nil},
	}
	chain := NewChain(nil, primary, fallback)

	result, err := chain.Transcribe(context.Background(), []byte("wav"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Backend != "fallback" {
		t.Errorf("result = %+v", result)
	}
	// A non-unavailable failure keeps the backend in the chain.
	if got := chain.Backends(); len(got) != 2 {
		t.Errorf("Backends = %v, want both retained", got)
	}
}

func TestChainDropsUnavailableBackendPermanently(t *testing.T) {
	flaky := &fakeBackend{
		name:    "flaky",
		results: []Result{{}},
		errs:    []error{&TranscriptionError{Kind: KindUnavailable, Backend: "flaky", Err: errors.New("not installed")}},
	}
	fallback := &fakeBackend{
		name:    "fallback",
		results: []Result{{Text: "ok", Backend: "fallback"}},
		errs:    []error{nil},
	}
	chain := NewChain(nil, flaky, fallback)

	if _, err := chain.Transcribe(context.Background(), []byte("wav")); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if _, err := chain.Transcribe(context.Background(), []byte("wav")); err != nil {
		t.Fatalf("Transcribe second: %v", err)
	}
	if flaky.calls != 1 {
		t.Errorf("flaky.calls = %d, want 1", flaky.calls)
	}
}

func TestChainFiltersUnavailableAtInit(t *testing.T) {
	missing := &fakeBackend{
		name:         "missing",
		availableErr: &TranscriptionError{Kind: KindUnavailable, Backend: "missing", Err: errors.New("no binary")},
		results:      []Result{{}},
		errs:         []error{nil},
	}
	present := &fakeBackend{
		name:    "present",
		results: []Result{{Text: "ok", Backend: "present"}},
		errs:    []error{nil},
	}
	chain := NewChain(nil, missing, present)

	if err := chain.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}
	got := chain.Backends()
	if len(got) != 1 || got[0] != "present" {
		t.Errorf("Backends = %v", got)
	}
	if missing.calls != 0 {
		t.Error("missing backend should never be transcribed with")
	}
}

func TestChainAllUnavailable(t *testing.T) {
	missing := &fakeBackend{
		name:         "missing",
		availableErr: &TranscriptionError{Kind: KindUnavailable, Backend: "missing", Err: errors.New("no binary")},
		results:      []Result{{}},
		errs:         []error{nil},
	}
	chain := NewChain(nil, missing)

	if err := chain.Warmup(context.Background()); err == nil {
		t.Fatal("expected warmup failure")
	}
	_, err := chain.Transcribe(context.Background(), []byte("wav"))
	var transcriptionErr *TranscriptionError
	if !errors.As(err, &transcriptionErr) || transcriptionErr.Kind != KindUnavailable {
		t.Errorf("err = %v", err)
	}
}

func TestChainEmptyTranscriptIsValid(t *testing.T) {
	quiet := &fakeBackend{
		name:    "quiet",
		results: []Result{{Text: "   ", Backend: "quiet"}},
		errs:    []error{nil},
	}
	loud := &fakeBackend{
		name:    "loud",
		results: []Result{{Text: "words", Backend: "loud"}},
		errs:    []error{nil},
	}
	chain := NewChain(nil, quiet, loud)

	result, err := chain.Transcribe(context.Background(), []byte("wav"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if !result.IsEmpty() {
		t.Errorf("expected empty result, got %+v", result)
	}
	if loud.calls != 0 {
		t.Error("silence should not trigger fallback")
	}
}

func TestResultIsEmpty(t *testing.T) {
	if !(Result{Text: " \n"}).IsEmpty() {
		t.Error("whitespace-only text should be empty")
	}
	if (Result{Text: "hi"}).IsEmpty() {
		t.Error("text should not be empty")
	}
}
