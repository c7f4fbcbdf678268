package identify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"epimatch/internal/asr"
	"epimatch/internal/cache"
	"epimatch/internal/config"
	"epimatch/internal/logging"
	"epimatch/internal/refdata"
)

// MediaFile describes one video file submitted for identification.
type MediaFile struct {
	Path string
	// Duration is the probed runtime in seconds.
	Duration float64
	// AudioStream is the ffmpeg stream index to sample.
	AudioStream int
	// ModTime participates in cache keys so edits to the file never reuse
	// stale audio or transcripts.
	ModTime time.Time
	Show    string
	Season  int
}

// AudioExtractor decodes one audio window from a media file.
type AudioExtractor interface {
	Segment(ctx context.Context, source string, streamIndex, startSec, durationSec int) ([]byte, error)
}

// Transcriber converts a WAV payload to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (asr.Result, error)
}

// Options are the identification thresholds and sampling bounds.
type Options struct {
	// ConfidenceThreshold is the aggregate confidence that stops sampling
	// early, provided the margin also holds.
	ConfidenceThreshold float64
	// SoftThreshold accepts a best-effort match once sampling is exhausted.
	SoftThreshold float64
	// MinMargin is the lead over the runner-up required for an early stop.
	MinMargin float64
	// WindowSeconds is the audio length sampled per checkpoint.
	WindowSeconds int
	// SampleBudgetSeconds caps total sampled audio per file.
	SampleBudgetSeconds int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold: 0.80,
		SoftThreshold:       0.60,
		MinMargin:           0.10,
		WindowSeconds:       30,
		SampleBudgetSeconds: 900,
	}
}

// OptionsFromConfig maps the matcher configuration section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	matcher := cfg.Matcher
	if matcher.ConfidenceThreshold > 0 {
		opts.ConfidenceThreshold = matcher.ConfidenceThreshold
	}
	if matcher.SoftThreshold > 0 {
		opts.SoftThreshold = matcher.SoftThreshold
	}
	if matcher.MinMargin > 0 {
		opts.MinMargin = matcher.MinMargin
	}
	if matcher.WindowSeconds > 0 {
		opts.WindowSeconds = matcher.WindowSeconds
	}
	if matcher.SampleBudgetSeconds > 0 {
		opts.SampleBudgetSeconds = matcher.SampleBudgetSeconds
	}
	return opts
}

// Identifier drives the per-file identification state machine: plan a
// checkpoint, extract its audio, transcribe it, score the transcript against
// the season corpus, fold the winner into the running votes, and either stop
// early on a confident leader or move to the next checkpoint. Checkpoints
// within one file run strictly sequentially; concurrency belongs to the
// caller, across files.
type Identifier struct {
	extractor   AudioExtractor
	transcriber Transcriber
	artifacts   *cache.Cache
	opts        Options
	progress    ProgressFunc
	logger      *slog.Logger
	// match is BestCandidate in production; tests script it.
	match func(string, *refdata.SeasonCorpus) (MatchCandidate, bool)
}

// New constructs an Identifier. artifacts may be nil to disable caching;
// progress may be nil.
func New(extractor AudioExtractor, transcriber Transcriber, artifacts *cache.Cache, opts Options, progress ProgressFunc, logger *slog.Logger) *Identifier {
	return &Identifier{
		extractor:   extractor,
		transcriber: transcriber,
		artifacts:   artifacts,
		opts:        opts,
		progress:    progress,
		logger:      logging.NewComponentLogger(logger, "identify"),
		match:       BestCandidate,
	}
}

// Identify runs the full state machine for one file and returns its single
// MatchDecision. Per-checkpoint extraction and transcription errors are
// absorbed (the checkpoint casts no vote but is still charged against the
// budget); only cancellation returns an error, in which case no decision is
// produced. A season without usable reference dialogue fails immediately
// without consuming any checkpoints.
func (i *Identifier) Identify(ctx context.Context, file MediaFile, corpus *refdata.SeasonCorpus) (MatchDecision, error) {
	if corpus == nil || len(corpus.Episodes) == 0 {
		decision := MatchDecision{
			Status: StatusFailed,
			Votes:  map[int]float64{},
			Reason: (&refdata.NoReferenceDataError{Show: file.Show, Season: file.Season}).Error(),
		}
		i.progress.emit(Event{Type: EventDecisionMade, Path: file.Path, Decision: &decision})
		return decision, nil
	}

	plan := NewPlan(file.Duration, float64(i.opts.WindowSeconds), float64(i.opts.SampleBudgetSeconds))
	votes := map[int]float64{}
	var candidates []MatchCandidate
	var consumed []Checkpoint
	escalated := false

	for {
		// Cancellation is honored at checkpoint boundaries only; an
		// in-flight extraction finishes or times out on its own.
		if err := ctx.Err(); err != nil {
			return MatchDecision{}, err
		}

		checkpoint, ok := plan.Next()
		if !ok {
			// Reaching exhaustion means the early-stop condition never
			// held, so the fallback tier gets exactly one chance.
			if !escalated {
				escalated = true
				plan.EnableFallback()
				continue
			}
			break
		}

		consumed = append(consumed, checkpoint)
		plan.NoteSampled(checkpoint.Window)
		i.progress.emit(Event{Type: EventCheckpointStarted, Path: file.Path, Checkpoint: checkpoint})

		transcript, backend, err := i.transcriptAt(ctx, file, checkpoint)
		if err != nil {
			if ctx.Err() != nil {
				return MatchDecision{}, ctx.Err()
			}
			i.logger.Warn("checkpoint yielded no transcript",
				logging.String("path", file.Path),
				logging.Float64("offset", checkpoint.Offset),
				logging.Error(err))
			continue
		}
		i.progress.emit(Event{
			Type:       EventTranscriptionObtained,
			Path:       file.Path,
			Checkpoint: checkpoint,
			Transcript: transcript,
			Backend:    backend,
		})
		if transcript == "" {
			// Silence is a valid outcome for this window, just not a vote.
			continue
		}

		candidate, ok := i.match(transcript, corpus)
		if !ok {
			continue
		}
		candidate.Checkpoint = checkpoint
		candidates = append(candidates, candidate)
		votes[candidate.Episode] = combineVotes(votes[candidate.Episode], candidate.Score)

		leader, confidence, margin := leadingVote(votes)
		i.logger.Debug("checkpoint voted",
			logging.String("path", file.Path),
			logging.Int("episode", candidate.Episode),
			logging.Float64("score", candidate.Score),
			logging.Float64("confidence", confidence))
		if leader != 0 && confidence >= i.opts.ConfidenceThreshold && margin >= i.opts.MinMargin {
			decision := i.finishMatched(file, leader, confidence, votes, candidates, consumed, plan)
			return decision, nil
		}
	}

	decision := i.finishExhausted(file, votes, candidates, consumed, plan)
	return decision, nil
}

// transcriptAt produces the transcript for one checkpoint, consulting the
// artifact cache before ffmpeg and the ASR chain.
func (i *Identifier) transcriptAt(ctx context.Context, file MediaFile, checkpoint Checkpoint) (string, string, error) {
	key := artifactKey(file, checkpoint)

	if cached, ok := i.artifacts.Get(cache.NamespaceTranscript, key); ok {
		if text, ok := cached.(string); ok {
			return text, "cache", nil
		}
	}

	var wav []byte
	if cached, ok := i.artifacts.Get(cache.NamespaceAudio, key); ok {
		wav, _ = cached.([]byte)
	}
	if wav == nil {
		segment, err := i.extractor.Segment(ctx, file.Path, file.AudioStream,
			int(math.Round(checkpoint.Offset)), int(math.Round(checkpoint.Window)))
		if err != nil {
			return "", "", err
		}
		wav = segment
		i.artifacts.Put(cache.NamespaceAudio, key, wav, int64(len(wav)))
	}

	result, err := i.transcriber.Transcribe(ctx, wav)
	if err != nil {
		return "", "", err
	}
	i.artifacts.Put(cache.NamespaceTranscript, key, result.Text, int64(len(result.Text)))
	return result.Text, result.Backend, nil
}

func (i *Identifier) finishMatched(file MediaFile, episode int, confidence float64, votes map[int]float64, candidates []MatchCandidate, consumed []Checkpoint, plan *Plan) MatchDecision {
	decision := MatchDecision{
		Episode:        episode,
		Confidence:     confidence,
		Status:         StatusMatched,
		Votes:          votes,
		Candidates:     candidates,
		Checkpoints:    consumed,
		SampledSeconds: plan.SampledSeconds(),
	}
	i.logger.Info("episode identified",
		logging.String("path", file.Path),
		logging.Int("episode", episode),
		logging.Float64("confidence", confidence),
		logging.Int("checkpoints", len(consumed)))
	i.progress.emit(Event{Type: EventDecisionMade, Path: file.Path, Decision: &decision})
	return decision
}

// finishExhausted applies the end-of-sequence rule: accept the leader at the
// soft threshold, otherwise the run is inconclusive.
func (i *Identifier) finishExhausted(file MediaFile, votes map[int]float64, candidates []MatchCandidate, consumed []Checkpoint, plan *Plan) MatchDecision {
	leader, confidence, _ := leadingVote(votes)
	if leader != 0 && confidence >= i.opts.SoftThreshold {
		decision := i.finishMatched(file, leader, confidence, votes, candidates, consumed, plan)
		decision.Reason = "accepted at soft threshold after exhausting checkpoints"
		return decision
	}

	decision := MatchDecision{
		Confidence:     confidence,
		Status:         StatusInconclusive,
		Votes:          votes,
		Candidates:     candidates,
		Checkpoints:    consumed,
		SampledSeconds: plan.SampledSeconds(),
	}
	if leader == 0 {
		decision.Reason = "no checkpoint produced a usable transcript"
	} else {
		decision.Reason = fmt.Sprintf("best aggregate confidence %.2f below soft threshold %.2f", confidence, i.opts.SoftThreshold)
	}
	i.logger.Info("identification inconclusive",
		logging.String("path", file.Path),
		logging.Float64("confidence", confidence),
		logging.Int("checkpoints", len(consumed)))
	i.progress.emit(Event{Type: EventDecisionMade, Path: file.Path, Decision: &decision})
	return decision
}

// artifactKey identifies one checkpoint's artifacts. The modification time
// is part of the key so a rewritten file never reuses stale audio.
func artifactKey(file MediaFile, checkpoint Checkpoint) string {
	return fmt.Sprintf("%s|%d|%d|%.0f|%.0f",
		file.Path, file.ModTime.Unix(), file.AudioStream, checkpoint.Offset, checkpoint.Window)
}

// combineVotes folds a checkpoint score into an episode's aggregate using
// noisy-or: 1 - (1-agg)(1-score). The aggregate stays in [0,1] and never
// decreases as more checkpoints vote for the same episode.
func combineVotes(aggregate, score float64) float64 {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return 1 - (1-aggregate)*(1-score)
}

// leadingVote returns the episode with the highest aggregate confidence, its
// confidence, and its lead over the runner-up. Ties go to the lowest episode
// number. A zero episode means no votes exist.
func leadingVote(votes map[int]float64) (episode int, confidence, margin float64) {
	var runnerUp float64
	for number, aggregate := range votes {
		switch {
		case episode == 0 || aggregate > confidence || (aggregate == confidence && number < episode):
			if episode != 0 && aggregate > confidence {
				runnerUp = confidence
			} else if episode != 0 {
				runnerUp = max(runnerUp, aggregate)
			}
			episode = number
			confidence = aggregate
		case aggregate > runnerUp:
			runnerUp = aggregate
		}
	}
	return episode, confidence, confidence - runnerUp
}
