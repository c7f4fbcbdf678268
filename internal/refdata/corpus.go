package refdata

import (
	"fmt"
	"sort"
	"strings"

	"epimatch/internal/textutil"
)

// DefaultWindowSeconds is the reference dialogue window size. Checkpoint
// transcripts are compared against every window of an episode, so the window
// must comfortably exceed the sampled audio length to tolerate timing drift
// between releases.
const DefaultWindowSeconds = 300

// Window is a contiguous slice of an episode's cleaned dialogue. The
// fingerprint is a term-frequency vector over the window text, precomputed so
// matchers can screen windows cheaply before running edit-distance ratios.
type Window struct {
	Start       float64
	End         float64
	Text        string
	Fingerprint *textutil.Fingerprint
}

// Episode holds one episode's reference dialogue, pre-cleaned and
// pre-windowed for matching.
type Episode struct {
	Number  int
	Cues    []Cue
	Windows []Window
}

// SeasonCorpus is the complete reference dialogue for one season.
type SeasonCorpus struct {
	Show     string
	Season   int
	Episodes []Episode
	// Excluded records episode numbers whose reference data could not be
	// used, with the reason. Excluded episodes never receive votes.
	Excluded map[int]string
}

// NoReferenceDataError indicates that no usable reference dialogue exists
// for a show season. Identification cannot proceed without it.
type NoReferenceDataError struct {
	Show   string
	Season int
}

func (e *NoReferenceDataError) Error() string {
	return fmt.Sprintf("no reference dialogue for %s season %d", e.Show, e.Season)
}

// NewEpisode cleans and windows raw cues into a matchable episode. Cues that
// clean down to nothing or are advertisement junk are dropped.
func NewEpisode(number int, cues []Cue, windowSeconds int) Episode {
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}

	kept := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if IsAdvertisement(cue.Text) {
			continue
		}
		cleaned := CleanDialogue(cue.Text)
		if cleaned == "" {
			continue
		}
		kept = append(kept, Cue{Index: cue.Index, Start: cue.Start, End: cue.End, Text: cleaned})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })

	return Episode{
		Number:  number,
		Cues:    kept,
		Windows: buildWindows(kept, float64(windowSeconds)),
	}
}

// buildWindows groups cues into fixed time windows. Each window also absorbs
// the following window's text so dialogue straddling a boundary still scores
// against a single window.
func buildWindows(cues []Cue, windowSeconds float64) []Window {
	if len(cues) == 0 {
		return nil
	}

	last := cues[len(cues)-1].End
	count := int(last/windowSeconds) + 1
	buckets := make([][]string, count)
	for _, cue := range cues {
		index := int(cue.Start / windowSeconds)
		if index >= count {
			index = count - 1
		}
		buckets[index] = append(buckets[index], cue.Text)
	}

	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		parts := append([]string(nil), buckets[i]...)
		if i+1 < count {
			parts = append(parts, buckets[i+1]...)
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		windows = append(windows, Window{
			Start:       float64(i) * windowSeconds,
			End:         float64(i+2) * windowSeconds,
			Text:        text,
			Fingerprint: textutil.NewFingerprint(text),
		})
	}
	return windows
}

// HasDialogue reports whether the episode retained any usable dialogue.
func (e Episode) HasDialogue() bool {
	return len(e.Windows) > 0
}

// Episode returns the corpus entry for an episode number.
func (c *SeasonCorpus) Episode(number int) (Episode, bool) {
	for _, episode := range c.Episodes {
		if episode.Number == number {
			return episode, true
		}
	}
	return Episode{}, false
}

// EpisodeNumbers returns the sorted episode numbers present in the corpus.
func (c *SeasonCorpus) EpisodeNumbers() []int {
	numbers := make([]int, 0, len(c.Episodes))
	for _, episode := range c.Episodes {
		numbers = append(numbers, episode.Number)
	}
	sort.Ints(numbers)
	return numbers
}
