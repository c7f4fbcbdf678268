package services

import (
	"context"
	"errors"
	"testing"

	"epimatch/internal/queue"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "identifying", "ffmpeg", "extract failed", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Error("expected wrapped error to match ErrExternalTool")
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to preserve cause")
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "identifying", "asr", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Error("expected nil marker to default to ErrTransient")
	}
}

func TestWrapDetailComposition(t *testing.T) {
	err := Wrap(ErrValidation, "planning", "", "no checkpoints fit", nil)
	want := "validation error: planning: no checkpoints fit"
	if err.Error() != want {
		t.Errorf("Wrap() = %q, want %q", err.Error(), want)
	}
}

func TestFailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want queue.Status
	}{
		{"validation goes to review", Wrap(ErrValidation, "s", "", "m", nil), queue.StatusReview},
		{"configuration goes to review", Wrap(ErrConfiguration, "s", "", "m", nil), queue.StatusReview},
		{"not found goes to review", Wrap(ErrNotFound, "s", "", "m", nil), queue.StatusReview},
		{"external tool goes to failed", Wrap(ErrExternalTool, "s", "", "m", nil), queue.StatusFailed},
		{"timeout goes to failed", Wrap(ErrTimeout, "s", "", "m", nil), queue.StatusFailed},
		{"plain error goes to failed", errors.New("boom"), queue.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureStatus(tt.err); got != tt.want {
				t.Errorf("FailureStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextRoundTrips(t *testing.T) {
	ctx := WithItemID(context.Background(), 7)
	ctx = WithStage(ctx, "identifying")
	ctx = WithRequestID(ctx, "run-abc")

	if id, ok := ItemIDFromContext(ctx); !ok || id != 7 {
		t.Errorf("ItemIDFromContext = %d, %v", id, ok)
	}
	if stage, ok := StageFromContext(ctx); !ok || stage != "identifying" {
		t.Errorf("StageFromContext = %q, %v", stage, ok)
	}
	if rid, ok := RequestIDFromContext(ctx); !ok || rid != "run-abc" {
		t.Errorf("RequestIDFromContext = %q, %v", rid, ok)
	}
}

func TestContextEmptyValuesIgnored(t *testing.T) {
	ctx := WithStage(context.Background(), "")
	if _, ok := StageFromContext(ctx); ok {
		t.Error("empty stage should not be stored")
	}
	if _, ok := ItemIDFromContext(context.Background()); ok {
		t.Error("missing item id should report false")
	}
}
