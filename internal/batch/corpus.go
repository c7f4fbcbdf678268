package batch

import (
	"context"
	"fmt"
	"strings"

	"epimatch/internal/cache"
	"epimatch/internal/refdata"
)

// CorpusProvider resolves and memoizes season corpora. Parsing a season's
// subtitles is expensive and every file in the same season needs the same
// corpus, so parsed corpora live in the shared artifact cache.
type CorpusProvider struct {
	source    refdata.Source
	artifacts *cache.Cache
}

// NewCorpusProvider wraps a reference source with corpus caching. artifacts
// may be nil to disable memoization.
func NewCorpusProvider(source refdata.Source, artifacts *cache.Cache) *CorpusProvider {
	return &CorpusProvider{source: source, artifacts: artifacts}
}

// SeasonCorpus returns the reference corpus for a show season, from cache
// when possible.
func (p *CorpusProvider) SeasonCorpus(ctx context.Context, show string, season int) (*refdata.SeasonCorpus, error) {
	key := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(show)), season)

	if cached, ok := p.artifacts.Get(cache.NamespaceSubtitles, key); ok {
		if corpus, ok := cached.(*refdata.SeasonCorpus); ok {
			return corpus, nil
		}
	}

	corpus, err := p.source.SeasonCorpus(ctx, show, season)
	if err != nil {
		return nil, err
	}
	p.artifacts.Put(cache.NamespaceSubtitles, key, corpus, corpusSize(corpus))
	return corpus, nil
}

// corpusSize estimates the memory held by a parsed corpus: window text
// dominates, cue overhead is ignored.
func corpusSize(corpus *refdata.SeasonCorpus) int64 {
	var size int64
	for _, episode := range corpus.Episodes {
		for _, window := range episode.Windows {
			size += int64(len(window.Text))
		}
	}
	return size
}
