package audio

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestSegmentWritesAndReturnsWAV(t *testing.T) {
	var gotArgs []string
	extractor := NewExtractor("ffmpeg", 0, WithRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		dest := args[len(args)-1]
		return nil, os.WriteFile(dest, []byte("RIFFdata"), 0o644)
	}))

	data, err := extractor.Segment(context.Background(), "/media/ep.mkv", 1, 300, 30)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if string(data) != "RIFFdata" {
		t.Errorf("data = %q", data)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-ss 300", "-t 30", "-map 0:1", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestSegmentInvalidInputs(t *testing.T) {
	extractor := NewExtractor("", 0, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("runner should not be called")
		return nil, nil
	}))

	_, err := extractor.Segment(context.Background(), "/media/ep.mkv", -1, 0, 30)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != KindMissingStream {
		t.Errorf("negative index: err = %v", err)
	}

	_, err = extractor.Segment(context.Background(), "/media/ep.mkv", 0, 0, 0)
	if !errors.As(err, &extractionErr) || extractionErr.Kind != KindDecode {
		t.Errorf("zero duration: err = %v", err)
	}
}

func TestSegmentClassifiesMissingStream(t *testing.T) {
	extractor := NewExtractor("ffmpeg", 0, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Stream map '0:3' matches no streams."), errors.New("exit status 1")
	}))

	_, err := extractor.Segment(context.Background(), "/media/ep.mkv", 3, 0, 30)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v", err)
	}
	if extractionErr.Kind != KindMissingStream {
		t.Errorf("Kind = %v, want missing_stream", extractionErr.Kind)
	}
}

func TestSegmentClassifiesTimeout(t *testing.T) {
	extractor := NewExtractor("ffmpeg", 10*time.Millisecond, WithRunner(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	_, err := extractor.Segment(context.Background(), "/media/ep.mkv", 0, 0, 30)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v", err)
	}
	if extractionErr.Kind != KindTimeout {
		t.Errorf("Kind = %v, want timeout", extractionErr.Kind)
	}
}

func TestSegmentClassifiesDecodeFailure(t *testing.T) {
	extractor := NewExtractor("ffmpeg", 0, WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}))

	_, err := extractor.Segment(context.Background(), "/media/broken.mkv", 0, 0, 30)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("err = %v", err)
	}
	if extractionErr.Kind != KindDecode {
		t.Errorf("Kind = %v, want decode", extractionErr.Kind)
	}
}

func TestSegmentEmptyOutputIsError(t *testing.T) {
	extractor := NewExtractor("ffmpeg", 0, WithRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		dest := args[len(args)-1]
		return nil, os.WriteFile(dest, nil, 0o644)
	}))

	_, err := extractor.Segment(context.Background(), "/media/ep.mkv", 0, 0, 30)
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) || extractionErr.Kind != KindDecode {
		t.Errorf("err = %v", err)
	}
}
