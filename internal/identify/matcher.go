package identify

import (
	"sort"

	"epimatch/internal/refdata"
	"epimatch/internal/textutil"
)

// Similarity combines word-order-insensitive and containment-tolerant
// ratios. Token sort dominates because transcripts and subtitles cover the
// same dialogue in the same order; the partial ratio rescues snippets that
// land inside a much longer reference window.
const (
	tokenSortWeight = 0.7
	partialWeight   = 0.3
)

// Score computes the similarity in [0,1] between a cleaned transcript
// snippet and one episode's reference dialogue. Matching is
// position-agnostic: the snippet is scored against every dialogue window and
// the best window wins.
func Score(snippet string, episode refdata.Episode) float64 {
	if snippet == "" {
		return 0
	}
	best := 0.0
	for _, window := range screenWindows(textutil.NewFingerprint(snippet), episode.Windows) {
		score := tokenSortWeight*textutil.TokenSortRatio(snippet, window.Text) +
			partialWeight*textutil.PartialRatio(snippet, window.Text)
		if score > best {
			best = score
		}
	}
	return best
}

// screenWindows drops windows that share no terms with the snippet before the
// expensive ratio pass. When nothing overlaps, every window stays in: the
// partial ratio can still match at the character level.
func screenWindows(probe *textutil.Fingerprint, windows []refdata.Window) []refdata.Window {
	if probe == nil {
		return windows
	}
	kept := make([]refdata.Window, 0, len(windows))
	for _, window := range windows {
		if textutil.CosineSimilarity(probe, window.Fingerprint) > 0 {
			kept = append(kept, window)
		}
	}
	if len(kept) == 0 {
		return windows
	}
	return kept
}

// BestCandidate normalizes a raw transcript and returns the highest-scoring
// episode in the corpus. Ties go to the lowest episode number. ok is false
// when the transcript cleans down to nothing or the corpus holds no usable
// episodes.
func BestCandidate(transcript string, corpus *refdata.SeasonCorpus) (MatchCandidate, bool) {
	if corpus == nil || len(corpus.Episodes) == 0 {
		return MatchCandidate{}, false
	}
	snippet := refdata.CleanDialogue(transcript)
	if snippet == "" {
		return MatchCandidate{}, false
	}

	episodes := append([]refdata.Episode(nil), corpus.Episodes...)
	sort.SliceStable(episodes, func(i, j int) bool { return episodes[i].Number < episodes[j].Number })

	best := MatchCandidate{Episode: 0, Score: -1}
	for _, episode := range episodes {
		if !episode.HasDialogue() {
			continue
		}
		// Strictly-greater keeps the lowest episode number on ties.
		if score := Score(snippet, episode); score > best.Score {
			best = MatchCandidate{Episode: episode.Number, Score: score}
		}
	}
	if best.Episode == 0 {
		return MatchCandidate{}, false
	}
	return best, true
}
