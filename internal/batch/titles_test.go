package batch

import (
	"context"
	"testing"

	"epimatch/internal/tmdb"
)

type countingSearcher struct {
	searches int
	seasons  int
}

func (s *countingSearcher) SearchTV(ctx context.Context, query string) (*tmdb.Response, error) {
	s.searches++
	return &tmdb.Response{Results: []tmdb.Result{{ID: 42, Name: query}}}, nil
}

func (s *countingSearcher) GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*tmdb.SeasonDetails, error) {
	s.seasons++
	return &tmdb.SeasonDetails{
		SeasonNumber: seasonNumber,
		Episodes: []tmdb.Episode{
			{EpisodeNumber: 1, Name: "The Pilot"},
			{EpisodeNumber: 2, Name: "The Second One"},
		},
	}, nil
}

func TestTMDBTitlesMemoizesSeason(t *testing.T) {
	searcher := &countingSearcher{}
	titles := NewTMDBTitles(searcher)

	title, err := titles.EpisodeTitle(context.Background(), "Test Show", 1, 1)
	if err != nil {
		t.Fatalf("EpisodeTitle: %v", err)
	}
	if title != "The Pilot" {
		t.Errorf("title = %q", title)
	}

	title, err = titles.EpisodeTitle(context.Background(), "test show", 1, 2)
	if err != nil {
		t.Fatalf("EpisodeTitle cached: %v", err)
	}
	if title != "The Second One" {
		t.Errorf("title = %q", title)
	}
	if searcher.searches != 1 || searcher.seasons != 1 {
		t.Errorf("calls = %d searches, %d seasons; want 1 each", searcher.searches, searcher.seasons)
	}

	// Unknown episode resolves to empty, not an error.
	title, err = titles.EpisodeTitle(context.Background(), "Test Show", 1, 99)
	if err != nil || title != "" {
		t.Errorf("unknown episode = (%q, %v)", title, err)
	}
}
