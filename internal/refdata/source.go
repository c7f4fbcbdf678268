package refdata

import (
	"context"
	"errors"
	"log/slog"

	"epimatch/internal/logging"
)

// Source provides the reference dialogue for one show season.
type Source interface {
	SeasonCorpus(ctx context.Context, show string, season int) (*SeasonCorpus, error)
}

// Composite tries sources in order, typically the local cache first and a
// remote provider second. A source returning NoReferenceDataError is not an
// error; the next source gets its chance.
type Composite struct {
	sources []Source
	logger  *slog.Logger
}

// NewComposite builds a composite source over the given sources.
func NewComposite(logger *slog.Logger, sources ...Source) *Composite {
	return &Composite{
		sources: sources,
		logger:  logging.NewComponentLogger(logger, "refdata"),
	}
}

// SeasonCorpus returns the first corpus any source can provide.
func (c *Composite) SeasonCorpus(ctx context.Context, show string, season int) (*SeasonCorpus, error) {
	var lastErr error
	for _, source := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		corpus, err := source.SeasonCorpus(ctx, show, season)
		if err == nil {
			return corpus, nil
		}
		var noData *NoReferenceDataError
		if errors.As(err, &noData) {
			continue
		}
		c.logger.Warn("reference source failed, trying next",
			logging.String("show", show),
			logging.Int("season", season),
			logging.Error(err))
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &NoReferenceDataError{Show: show, Season: season}
}
