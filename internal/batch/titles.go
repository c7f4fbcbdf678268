package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"epimatch/internal/tmdb"
)

// TMDBTitles resolves episode display titles through TMDB, memoizing per
// (show, season) so a whole season costs two API calls.
type TMDBTitles struct {
	searcher tmdb.Searcher

	mu      sync.Mutex
	showIDs map[string]int64
	seasons map[string]map[int]string
}

// NewTMDBTitles wraps a TMDB client as a TitleLookup.
func NewTMDBTitles(searcher tmdb.Searcher) *TMDBTitles {
	return &TMDBTitles{
		searcher: searcher,
		showIDs:  make(map[string]int64),
		seasons:  make(map[string]map[int]string),
	}
}

// EpisodeTitle returns the display title for one episode, or an empty string
// when TMDB does not know it.
func (t *TMDBTitles) EpisodeTitle(ctx context.Context, show string, season, episode int) (string, error) {
	titles, err := t.seasonTitles(ctx, show, season)
	if err != nil {
		return "", err
	}
	return titles[episode], nil
}

func (t *TMDBTitles) seasonTitles(ctx context.Context, show string, season int) (map[int]string, error) {
	key := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(show)), season)

	t.mu.Lock()
	if titles, ok := t.seasons[key]; ok {
		t.mu.Unlock()
		return titles, nil
	}
	t.mu.Unlock()

	showID, err := t.resolveShowID(ctx, show)
	if err != nil {
		return nil, err
	}
	details, err := t.searcher.GetSeasonDetails(ctx, showID, season)
	if err != nil {
		return nil, err
	}

	titles := make(map[int]string, len(details.Episodes))
	for _, entry := range details.Episodes {
		if entry.EpisodeNumber > 0 {
			titles[entry.EpisodeNumber] = entry.Name
		}
	}

	t.mu.Lock()
	t.seasons[key] = titles
	t.mu.Unlock()
	return titles, nil
}

func (t *TMDBTitles) resolveShowID(ctx context.Context, show string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(show))

	t.mu.Lock()
	if id, ok := t.showIDs[key]; ok {
		t.mu.Unlock()
		return id, nil
	}
	t.mu.Unlock()

	response, err := t.searcher.SearchTV(ctx, show)
	if err != nil {
		return 0, err
	}
	if len(response.Results) == 0 {
		return 0, fmt.Errorf("no tmdb match for %q", show)
	}
	id := response.Results[0].ID

	t.mu.Lock()
	t.showIDs[key] = id
	t.mu.Unlock()
	return id, nil
}
