package identify

// Status is the terminal outcome of identifying one file.
type Status string

const (
	// StatusMatched means one episode reached the confidence bar.
	StatusMatched Status = "matched"
	// StatusInconclusive means sampling was exhausted without a confident
	// leader. The file needs manual review, not a retry.
	StatusInconclusive Status = "inconclusive"
	// StatusFailed means identification could not run at all, typically
	// because the season has no usable reference dialogue.
	StatusFailed Status = "failed"
)

// MatchCandidate is the best-scoring episode for one checkpoint's
// transcript.
type MatchCandidate struct {
	Episode    int
	Score      float64
	Checkpoint Checkpoint
}

// MatchDecision is the single final outcome for one file.
type MatchDecision struct {
	// Episode is the chosen episode number, 0 when no episode was chosen.
	Episode int
	// EpisodeTitle is a display title when metadata lookup provided one.
	EpisodeTitle string
	// Confidence is the winning episode's aggregate confidence in [0,1].
	// For inconclusive outcomes it records the best aggregate reached.
	Confidence float64
	Status     Status
	// Votes holds the per-episode aggregate confidence breakdown.
	Votes map[int]float64
	// Candidates lists the per-checkpoint winners that produced the votes.
	Candidates []MatchCandidate
	// Checkpoints lists every checkpoint consumed, errored ones included.
	Checkpoints []Checkpoint
	// SampledSeconds is the audio time charged against the budget.
	SampledSeconds float64
	// Reason explains non-matched outcomes in one line.
	Reason string
}

// Chosen reports whether the decision names an episode.
func (d MatchDecision) Chosen() bool {
	return d.Status == StatusMatched && d.Episode > 0
}
