package refdata

import (
	"strings"
	"testing"
)

func TestNewEpisodeCleansAndWindows(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 10, End: 12, Text: "Hello there."},
		{Index: 2, Start: 20, End: 22, Text: "Subtitles by SomeGroup"},
		{Index: 3, Start: 30, End: 32, Text: "[music]"},
		{Index: 4, Start: 400, End: 402, Text: "Later dialogue."},
	}
	episode := NewEpisode(3, cues, 300)

	if episode.Number != 3 {
		t.Errorf("Number = %d", episode.Number)
	}
	if len(episode.Cues) != 2 {
		t.Fatalf("len(Cues) = %d, want 2 (ads and empty cues dropped)", len(episode.Cues))
	}
	if !episode.HasDialogue() {
		t.Error("expected dialogue")
	}
	if len(episode.Windows) != 2 {
		t.Fatalf("len(Windows) = %d, want 2", len(episode.Windows))
	}
	// The first window absorbs the second window's text.
	if !strings.Contains(episode.Windows[0].Text, "later dialogue") {
		t.Errorf("window 0 should absorb next window: %q", episode.Windows[0].Text)
	}
	if strings.Contains(episode.Windows[1].Text, "hello there") {
		t.Errorf("window 1 should not contain window 0 text: %q", episode.Windows[1].Text)
	}
}

func TestNewEpisodeEmpty(t *testing.T) {
	episode := NewEpisode(1, nil, 300)
	if episode.HasDialogue() {
		t.Error("empty episode should have no dialogue")
	}
}

func TestNewEpisodeSortsCues(t *testing.T) {
	cues := []Cue{
		{Start: 50, End: 52, Text: "second"},
		{Start: 10, End: 12, Text: "first"},
	}
	episode := NewEpisode(1, cues, 300)
	if episode.Cues[0].Text != "first" {
		t.Errorf("cues not sorted: %v", episode.Cues)
	}
}

func TestSeasonCorpusLookups(t *testing.T) {
	corpus := &SeasonCorpus{
		Show:   "Some Show",
		Season: 1,
		Episodes: []Episode{
			NewEpisode(2, []Cue{{Start: 0, End: 1, Text: "two"}}, 300),
			NewEpisode(1, []Cue{{Start: 0, End: 1, Text: "one"}}, 300),
		},
	}

	episode, ok := corpus.Episode(2)
	if !ok || episode.Number != 2 {
		t.Errorf("Episode(2) = %+v, %v", episode, ok)
	}
	if _, ok := corpus.Episode(9); ok {
		t.Error("Episode(9) should not exist")
	}

	numbers := corpus.EpisodeNumbers()
	if len(numbers) != 2 || numbers[0] != 1 || numbers[1] != 2 {
		t.Errorf("EpisodeNumbers = %v", numbers)
	}
}

func TestNoReferenceDataErrorMessage(t *testing.T) {
	err := &NoReferenceDataError{Show: "Some Show", Season: 4}
	if !strings.Contains(err.Error(), "Some Show") || !strings.Contains(err.Error(), "4") {
		t.Errorf("Error() = %q", err.Error())
	}
}
