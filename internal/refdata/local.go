package refdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"epimatch/internal/textutil"
)

var episodeFilePattern = regexp.MustCompile(`(?i)s(\d{1,2})\s*e(\d{1,2})`)

// LocalSource serves season corpora from a directory of cached SRT files
// named "{show} - S{season:02d}E{episode:02d}.srt".
type LocalSource struct {
	dir           string
	windowSeconds int
}

// NewLocalSource constructs a local subtitle source rooted at dir.
func NewLocalSource(dir string, windowSeconds int) *LocalSource {
	return &LocalSource{dir: dir, windowSeconds: windowSeconds}
}

// EpisodeFileName returns the canonical cache file name for one episode's
// reference subtitles.
func EpisodeFileName(show string, season, episode int) string {
	return fmt.Sprintf("%s - S%02dE%02d.srt", textutil.SanitizeFileName(show), season, episode)
}

// SaveEpisode writes raw SRT content into the local cache so later runs skip
// the remote fetch.
func (s *LocalSource) SaveEpisode(show string, season, episode int, raw []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure subtitle cache dir: %w", err)
	}
	path := filepath.Join(s.dir, EpisodeFileName(show, season, episode))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write subtitle cache: %w", err)
	}
	return nil
}

// SeasonCorpus loads every cached episode subtitle for the show and season.
// Files that fail to parse are recorded as excluded episodes rather than
// failing the load.
func (s *LocalSource) SeasonCorpus(ctx context.Context, show string, season int) (*SeasonCorpus, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NoReferenceDataError{Show: show, Season: season}
		}
		return nil, fmt.Errorf("read subtitle cache dir: %w", err)
	}

	prefix := strings.ToLower(textutil.SanitizeFileName(show))
	corpus := &SeasonCorpus{Show: show, Season: season, Excluded: map[int]string{}}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".srt") {
			continue
		}
		name := entry.Name()
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		fileSeason, episodeNumber, ok := parseEpisodeFileName(name)
		if !ok || fileSeason != season {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			corpus.Excluded[episodeNumber] = fmt.Sprintf("read: %v", err)
			continue
		}
		cues, err := ParseSRT(raw)
		if err != nil {
			corpus.Excluded[episodeNumber] = fmt.Sprintf("parse: %v", err)
			continue
		}
		episode := NewEpisode(episodeNumber, cues, s.windowSeconds)
		if !episode.HasDialogue() {
			corpus.Excluded[episodeNumber] = "no usable dialogue"
			continue
		}
		corpus.Episodes = append(corpus.Episodes, episode)
	}

	if len(corpus.Episodes) == 0 {
		return nil, &NoReferenceDataError{Show: show, Season: season}
	}
	return corpus, nil
}

func parseEpisodeFileName(name string) (season, episode int, ok bool) {
	match := episodeFilePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, 0, false
	}
	season, errS := strconv.Atoi(match[1])
	episode, errE := strconv.Atoi(match[2])
	if errS != nil || errE != nil {
		return 0, 0, false
	}
	return season, episode, true
}
