package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"epimatch/internal/identify"
	"epimatch/internal/logging"
	"epimatch/internal/queue"
	"epimatch/internal/refdata"
	"epimatch/internal/services"
)

// FileIdentifier runs the identification state machine for one file.
type FileIdentifier interface {
	Identify(ctx context.Context, file identify.MediaFile, corpus *refdata.SeasonCorpus) (identify.MatchDecision, error)
}

// IdentifierFactory builds the identifier with the runner's progress sink
// wired in. Called once per Runner.
type IdentifierFactory func(progress identify.ProgressFunc) FileIdentifier

// Result pairs a queue item with its decision.
type Result struct {
	Item     *queue.Item
	Decision identify.MatchDecision
}

// Failure records one file that ended without a match. A failure never
// aborts sibling files.
type Failure struct {
	Item *queue.Item
	Err  error
}

// Summary is the outcome of one queue drain.
type Summary struct {
	RunID     string
	Processed int
	Results   []Result
	Failures  []Failure
}

// Runner drains pending queue items through a bounded worker pool. Files run
// concurrently up to the worker limit; each file's checkpoints stay
// sequential inside the identifier.
type Runner struct {
	store      *queue.Store
	prober     Prober
	corpora    *CorpusProvider
	titles     TitleLookup
	identifier FileIdentifier
	workers    int
	logger     *slog.Logger

	mu     sync.Mutex
	active map[string]*activeItem
}

type activeItem struct {
	ctx         context.Context
	item        *queue.Item
	checkpoints int
}

// TitleLookup resolves a display title for a matched episode. Optional:
// absence or failure never blocks a decision.
type TitleLookup interface {
	EpisodeTitle(ctx context.Context, show string, season, episode int) (string, error)
}

// NewRunner wires a runner. titles may be nil; workers below one defaults
// to two.
func NewRunner(store *queue.Store, prober Prober, corpora *CorpusProvider, factory IdentifierFactory, titles TitleLookup, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 2
	}
	runner := &Runner{
		store:   store,
		prober:  prober,
		corpora: corpora,
		titles:  titles,
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "batch"),
		active:  make(map[string]*activeItem),
	}
	runner.identifier = factory(runner.handleProgress)
	return runner
}

// Run processes every pending queue item and returns the run summary.
// Cancellation stops scheduling new files and lets in-flight files stop at
// their next checkpoint boundary; cancelled files are recovered as stuck on
// the next run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	if reset, err := r.store.ResetStuckProcessing(ctx); err != nil {
		return nil, fmt.Errorf("reset stuck items: %w", err)
	} else if reset > 0 {
		r.logger.Info("recovered stuck items", logging.Int64("count", reset))
	}

	items, err := r.store.List(ctx, queue.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}

	summary := &Summary{RunID: uuid.NewString()}
	if len(items) == 0 {
		return summary, nil
	}
	r.logger.Info("run started",
		logging.String("run_id", summary.RunID),
		logging.Int("items", len(items)),
		logging.Int("workers", r.workers))

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for _, item := range items {
		item := item
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			result, failure := r.processItem(groupCtx, item, summary.RunID)
			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			if result != nil {
				summary.Results = append(summary.Results, *result)
			}
			if failure != nil {
				summary.Failures = append(summary.Failures, *failure)
			}
			// Worker errors stay in the failure list; returning one would
			// cancel the siblings.
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	r.logger.Info("run finished",
		logging.String("run_id", summary.RunID),
		logging.Int("processed", summary.Processed),
		logging.Int("matched", len(summary.Results)),
		logging.Int("failures", len(summary.Failures)))
	return summary, nil
}

func (r *Runner) processItem(ctx context.Context, item *queue.Item, runID string) (*Result, *Failure) {
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithStage(ctx, "identify")

	item.Status = queue.StatusIdentifying
	item.RunID = runID
	item.SetProgress("Probing", "inspecting streams", 5)
	if err := r.store.Update(ctx, item); err != nil {
		return nil, &Failure{Item: item, Err: err}
	}

	r.register(ctx, item)
	defer r.unregister(item.SourcePath)

	decision, err := r.identifyItem(ctx, item)
	if err != nil {
		if ctx.Err() != nil {
			// Leave the item in identifying; the next run resets it.
			return nil, nil
		}
		if status := services.FailureStatus(err); status == queue.StatusReview {
			item.SetReview(err.Error())
		} else {
			item.Status = status
			item.ErrorMessage = err.Error()
			item.SetProgress("Failed", err.Error(), 0)
		}
		if updateErr := r.store.Update(ctx, item); updateErr != nil {
			r.logger.Error("persist failure state", logging.Error(updateErr))
		}
		return nil, &Failure{Item: item, Err: err}
	}

	r.applyDecision(ctx, item, decision)
	if err := r.store.Update(ctx, item); err != nil {
		return nil, &Failure{Item: item, Err: err}
	}
	if decision.Status == identify.StatusMatched {
		return &Result{Item: item, Decision: decision}, nil
	}
	return nil, &Failure{Item: item, Err: fmt.Errorf("%s: %s", decision.Status, decision.Reason)}
}

func (r *Runner) identifyItem(ctx context.Context, item *queue.Item) (identify.MatchDecision, error) {
	info, err := r.prober.Probe(ctx, item.SourcePath)
	if err != nil {
		return identify.MatchDecision{}, services.Wrap(services.ErrExternalTool, "identify", "probe", "media probe failed", err)
	}

	corpus, err := r.corpora.SeasonCorpus(ctx, item.ShowTitle, item.Season)
	if err != nil {
		return identify.MatchDecision{}, err
	}

	file := identify.MediaFile{
		Path:        item.SourcePath,
		Duration:    info.Duration,
		AudioStream: info.AudioStream,
		ModTime:     info.ModTime,
		Show:        item.ShowTitle,
		Season:      item.Season,
	}
	return r.identifier.Identify(ctx, file, corpus)
}

// applyDecision maps the engine's decision onto the queue item.
func (r *Runner) applyDecision(ctx context.Context, item *queue.Item, decision identify.MatchDecision) {
	item.CheckpointsUsed = len(decision.Checkpoints)
	item.SampledSeconds = decision.SampledSeconds
	item.Confidence = decision.Confidence
	if payload, err := json.Marshal(newDecisionRecord(decision)); err == nil {
		item.ResultJSON = string(payload)
	}

	switch decision.Status {
	case identify.StatusMatched:
		item.Status = queue.StatusMatched
		item.Episode = decision.Episode
		title := r.lookupTitle(ctx, item, decision.Episode)
		item.ProposedName = ProposedName(item.ShowTitle, item.Season, decision.Episode, title, item.SourcePath)
		item.SetProgress("Matched", item.ProposedName, 100)
	case identify.StatusInconclusive:
		item.Status = queue.StatusInconclusive
		item.ErrorMessage = decision.Reason
		item.SetProgress("Inconclusive", decision.Reason, 100)
	default:
		item.SetFailed(decision.Reason)
	}
}

func (r *Runner) lookupTitle(ctx context.Context, item *queue.Item, episode int) string {
	if r.titles == nil {
		return ""
	}
	title, err := r.titles.EpisodeTitle(ctx, item.ShowTitle, item.Season, episode)
	if err != nil {
		r.logger.Debug("episode title lookup failed",
			logging.String("show", item.ShowTitle),
			logging.Int("episode", episode),
			logging.Error(err))
		return ""
	}
	return title
}

// handleProgress routes identifier events for concurrent files back onto
// their queue items. Write-back is best effort; a failed update never
// disturbs identification.
func (r *Runner) handleProgress(event identify.Event) {
	r.mu.Lock()
	entry, ok := r.active[event.Path]
	if !ok {
		r.mu.Unlock()
		return
	}
	switch event.Type {
	case identify.EventCheckpointStarted:
		entry.checkpoints++
		percent := 10 + float64(entry.checkpoints)*80/7
		if percent > 90 {
			percent = 90
		}
		entry.item.SetProgress("Sampling", fmt.Sprintf("checkpoint at %.0fs", event.Checkpoint.Offset), percent)
	case identify.EventTranscriptionObtained:
		entry.item.SetProgress("Matching", fmt.Sprintf("transcript via %s", event.Backend), entry.item.ProgressPercent)
	case identify.EventDecisionMade:
		r.mu.Unlock()
		return
	}
	item := *entry.item
	ctx := entry.ctx
	r.mu.Unlock()

	if err := r.store.Update(ctx, &item); err != nil {
		r.logger.Debug("progress write-back failed", logging.Error(err))
	}
}

func (r *Runner) register(ctx context.Context, item *queue.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[item.SourcePath] = &activeItem{ctx: ctx, item: item}
}

func (r *Runner) unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, path)
}

// decisionRecord is the persisted JSON shape of a decision.
type decisionRecord struct {
	Episode        int             `json:"episode,omitempty"`
	Confidence     float64         `json:"confidence"`
	Status         identify.Status `json:"status"`
	Votes          map[int]float64 `json:"votes,omitempty"`
	Checkpoints    int             `json:"checkpoints"`
	SampledSeconds float64         `json:"sampled_seconds"`
	Reason         string          `json:"reason,omitempty"`
}

func newDecisionRecord(decision identify.MatchDecision) decisionRecord {
	return decisionRecord{
		Episode:        decision.Episode,
		Confidence:     decision.Confidence,
		Status:         decision.Status,
		Votes:          decision.Votes,
		Checkpoints:    len(decision.Checkpoints),
		SampledSeconds: decision.SampledSeconds,
		Reason:         decision.Reason,
	}
}
