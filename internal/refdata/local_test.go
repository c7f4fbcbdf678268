package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const localSRT = `1
00:00:05,000 --> 00:00:08,000
Some reference dialogue here.
`

func writeEpisodeFile(t *testing.T, dir, show string, season, episode int, content string) {
	t.Helper()
	path := filepath.Join(dir, EpisodeFileName(show, season, episode))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLocalSourceSeasonCorpus(t *testing.T) {
	dir := t.TempDir()
	writeEpisodeFile(t, dir, "Some Show", 1, 1, localSRT)
	writeEpisodeFile(t, dir, "Some Show", 1, 2, localSRT)
	writeEpisodeFile(t, dir, "Some Show", 2, 1, localSRT)
	writeEpisodeFile(t, dir, "Other Show", 1, 3, localSRT)

	source := NewLocalSource(dir, 300)
	corpus, err := source.SeasonCorpus(context.Background(), "Some Show", 1)
	if err != nil {
		t.Fatalf("SeasonCorpus: %v", err)
	}
	numbers := corpus.EpisodeNumbers()
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 2 {
		t.Errorf("EpisodeNumbers = %v, want [1 2]", numbers)
	}
}

func TestLocalSourceExcludesUnparseable(t *testing.T) {
	dir := t.TempDir()
	writeEpisodeFile(t, dir, "Some Show", 1, 1, localSRT)
	writeEpisodeFile(t, dir, "Some Show", 1, 2, "not subtitles at all")

	source := NewLocalSource(dir, 300)
	corpus, err := source.SeasonCorpus(context.Background(), "Some Show", 1)
	if err != nil {
		t.Fatalf("SeasonCorpus: %v", err)
	}
	if len(corpus.Episodes) != 1 {
		t.Errorf("Episodes = %d, want 1", len(corpus.Episodes))
	}
	if _, excluded := corpus.Excluded[2]; !excluded {
		t.Errorf("episode 2 should be excluded: %v", corpus.Excluded)
	}
}

func TestLocalSourceNoData(t *testing.T) {
	source := NewLocalSource(t.TempDir(), 300)
	_, err := source.SeasonCorpus(context.Background(), "Some Show", 1)
	var noData *NoReferenceDataError
	if !errors.As(err, &noData) {
		t.Errorf("err = %v, want NoReferenceDataError", err)
	}

	missing := NewLocalSource(filepath.Join(t.TempDir(), "absent"), 300)
	if _, err := missing.SeasonCorpus(context.Background(), "Some Show", 1); !errors.As(err, &noData) {
		t.Errorf("missing dir err = %v, want NoReferenceDataError", err)
	}
}

func TestLocalSourceSaveEpisodeRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	source := NewLocalSource(dir, 300)
	if err := source.SaveEpisode("Some Show", 1, 5, []byte(localSRT)); err != nil {
		t.Fatalf("SaveEpisode: %v", err)
	}

	corpus, err := source.SeasonCorpus(context.Background(), "Some Show", 1)
	if err != nil {
		t.Fatalf("SeasonCorpus: %v", err)
	}
	if _, ok := corpus.Episode(5); !ok {
		t.Errorf("episode 5 missing: %v", corpus.EpisodeNumbers())
	}
}

func TestParseEpisodeFileName(t *testing.T) {
	tests := []struct {
		name    string
		season  int
		episode int
		ok      bool
	}{
		{"Show - S01E07.srt", 1, 7, true},
		{"show s2e10.srt", 2, 10, true},
		{"Show - Episode 7.srt", 0, 0, false},
	}
	for _, tt := range tests {
		season, episode, ok := parseEpisodeFileName(tt.name)
		if ok != tt.ok || season != tt.season || episode != tt.episode {
			t.Errorf("parseEpisodeFileName(%q) = %d, %d, %v", tt.name, season, episode, ok)
		}
	}
}

type stubSource struct {
	corpus *SeasonCorpus
	err    error
	calls  int
}

func (s *stubSource) SeasonCorpus(context.Context, string, int) (*SeasonCorpus, error) {
	s.calls++
	return s.corpus, s.err
}

func TestCompositeFallsThroughOnNoData(t *testing.T) {
	empty := &stubSource{err: &NoReferenceDataError{Show: "X", Season: 1}}
	full := &stubSource{corpus: &SeasonCorpus{Show: "X", Season: 1}}
	composite := NewComposite(nil, empty, full)

	corpus, err := composite.SeasonCorpus(context.Background(), "X", 1)
	if err != nil {
		t.Fatalf("SeasonCorpus: %v", err)
	}
	if corpus.Show != "X" {
		t.Errorf("corpus = %+v", corpus)
	}
	if empty.calls != 1 || full.calls != 1 {
		t.Errorf("calls = %d, %d", empty.calls, full.calls)
	}
}

func TestCompositeReturnsLastHardError(t *testing.T) {
	hardErr := errors.New("network down")
	broken := &stubSource{err: hardErr}
	composite := NewComposite(nil, broken)

	_, err := composite.SeasonCorpus(context.Background(), "X", 1)
	if !errors.Is(err, hardErr) {
		t.Errorf("err = %v, want wrapped %v", err, hardErr)
	}
}

func TestCompositeAllEmpty(t *testing.T) {
	composite := NewComposite(nil, &stubSource{err: &NoReferenceDataError{Show: "X", Season: 1}})
	_, err := composite.SeasonCorpus(context.Background(), "X", 1)
	var noData *NoReferenceDataError
	if !errors.As(err, &noData) {
		t.Errorf("err = %v, want NoReferenceDataError", err)
	}
}
