package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"epimatch/internal/logging"
	"epimatch/internal/refdata/opensubtitles"
	"epimatch/internal/tmdb"
)

// SubtitleFetcher is the subset of the OpenSubtitles client used when
// building a season corpus remotely.
type SubtitleFetcher interface {
	SearchEpisode(ctx context.Context, parentTMDBID int64, season, episode int, languages []string) ([]opensubtitles.Subtitle, error)
	Download(ctx context.Context, fileID int64) ([]byte, error)
}

// RemoteSource builds season corpora by resolving the show on TMDB,
// enumerating the season's episodes, and downloading each episode's
// subtitles from OpenSubtitles. Fetched subtitles are saved into the local
// cache so subsequent runs never hit the network.
type RemoteSource struct {
	searcher      tmdb.Searcher
	fetcher       SubtitleFetcher
	local         *LocalSource
	languages     []string
	windowSeconds int
	logger        *slog.Logger
}

// NewRemoteSource constructs a remote reference source. local may be nil, in
// which case fetched subtitles are not cached on disk.
func NewRemoteSource(searcher tmdb.Searcher, fetcher SubtitleFetcher, local *LocalSource, languages []string, windowSeconds int, logger *slog.Logger) *RemoteSource {
	return &RemoteSource{
		searcher:      searcher,
		fetcher:       fetcher,
		local:         local,
		languages:     languages,
		windowSeconds: windowSeconds,
		logger:        logging.NewComponentLogger(logger, "refdata-remote"),
	}
}

// SeasonCorpus fetches reference subtitles for every episode TMDB lists for
// the season. Episodes whose subtitles cannot be fetched or parsed are
// recorded as excluded; only a season with zero usable episodes is an error.
func (s *RemoteSource) SeasonCorpus(ctx context.Context, show string, season int) (*SeasonCorpus, error) {
	showID, err := s.resolveShow(ctx, show)
	if err != nil {
		return nil, err
	}

	details, err := s.searcher.GetSeasonDetails(ctx, showID, season)
	if err != nil {
		return nil, fmt.Errorf("fetch season details for %q season %d: %w", show, season, err)
	}
	if len(details.Episodes) == 0 {
		return nil, &NoReferenceDataError{Show: show, Season: season}
	}

	corpus := &SeasonCorpus{Show: show, Season: season, Excluded: map[int]string{}}
	for _, entry := range details.Episodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		number := entry.EpisodeNumber
		if number <= 0 {
			continue
		}

		raw, err := s.fetchEpisode(ctx, showID, season, number)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("episode subtitles unavailable",
				logging.String("show", show),
				logging.Int("season", season),
				logging.Int("episode", number),
				logging.Error(err))
			corpus.Excluded[number] = err.Error()
			continue
		}

		cues, err := ParseSRT(raw)
		if err != nil {
			corpus.Excluded[number] = fmt.Sprintf("parse: %v", err)
			continue
		}
		episode := NewEpisode(number, cues, s.windowSeconds)
		if !episode.HasDialogue() {
			corpus.Excluded[number] = "no usable dialogue"
			continue
		}
		corpus.Episodes = append(corpus.Episodes, episode)

		if s.local != nil {
			if err := s.local.SaveEpisode(show, season, number, raw); err != nil {
				s.logger.Warn("subtitle cache write failed", logging.Error(err))
			}
		}
	}

	if len(corpus.Episodes) == 0 {
		return nil, &NoReferenceDataError{Show: show, Season: season}
	}
	return corpus, nil
}

// resolveShow maps a show title to a TMDB series id, taking the first search
// result. TMDB orders results by relevance, which is what we want for titles
// derived from directory names.
func (s *RemoteSource) resolveShow(ctx context.Context, show string) (int64, error) {
	response, err := s.searchWithRetry(ctx, show)
	if err != nil {
		return 0, fmt.Errorf("resolve show %q: %w", show, err)
	}
	if len(response.Results) == 0 {
		return 0, &NoReferenceDataError{Show: show, Season: 0}
	}
	match := response.Results[0]
	s.logger.Debug("resolved show",
		logging.String("query", show),
		logging.String("title", match.Name),
		logging.Int64("tmdb_id", match.ID))
	return match.ID, nil
}

func (s *RemoteSource) searchWithRetry(ctx context.Context, show string) (*tmdb.Response, error) {
	var lastErr error
	backoff := opensubtitles.InitialBackoff
	for attempt := 0; attempt <= opensubtitles.MaxRateRetries; attempt++ {
		if attempt > 0 {
			if err := opensubtitles.SleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, opensubtitles.MaxBackoff)
		}
		response, err := s.searcher.SearchTV(ctx, show)
		if err == nil {
			return response, nil
		}
		lastErr = err
		if !opensubtitles.IsRetriable(err) {
			break
		}
	}
	return nil, lastErr
}

// fetchEpisode downloads the best subtitle candidate for one episode,
// retrying transient failures with exponential backoff and falling back to
// the next candidate when a download fails outright.
func (s *RemoteSource) fetchEpisode(ctx context.Context, showID int64, season, episode int) ([]byte, error) {
	candidates, err := s.searchEpisodeWithRetry(ctx, showID, season, episode)
	if err != nil {
		return nil, fmt.Errorf("search subtitles: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no subtitles found")
	}

	var lastErr error
	for _, candidate := range candidates {
		raw, err := s.downloadWithRetry(ctx, candidate.FileID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(strings.TrimSpace(string(raw))) == 0 {
			lastErr = fmt.Errorf("subtitle file %d is empty", candidate.FileID)
			continue
		}
		return raw, nil
	}
	return nil, fmt.Errorf("download subtitles: %w", lastErr)
}

func (s *RemoteSource) searchEpisodeWithRetry(ctx context.Context, showID int64, season, episode int) ([]opensubtitles.Subtitle, error) {
	var lastErr error
	backoff := opensubtitles.InitialBackoff
	for attempt := 0; attempt <= opensubtitles.MaxRateRetries; attempt++ {
		if attempt > 0 {
			if err := opensubtitles.SleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, opensubtitles.MaxBackoff)
		}
		candidates, err := s.fetcher.SearchEpisode(ctx, showID, season, episode, s.languages)
		if err == nil {
			return candidates, nil
		}
		lastErr = err
		if !opensubtitles.IsRetriable(err) {
			break
		}
	}
	return nil, lastErr
}

func (s *RemoteSource) downloadWithRetry(ctx context.Context, fileID int64) ([]byte, error) {
	var lastErr error
	backoff := opensubtitles.InitialBackoff
	for attempt := 0; attempt <= opensubtitles.MaxRateRetries; attempt++ {
		if attempt > 0 {
			if err := opensubtitles.SleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, opensubtitles.MaxBackoff)
		}
		raw, err := s.fetcher.Download(ctx, fileID)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !opensubtitles.IsRetriable(err) {
			break
		}
	}
	return nil, lastErr
}
