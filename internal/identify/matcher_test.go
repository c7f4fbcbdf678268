package identify

import (
	"testing"

	"epimatch/internal/refdata"
)

func testEpisode(number int, lines ...string) refdata.Episode {
	cues := make([]refdata.Cue, 0, len(lines))
	for i, line := range lines {
		start := float64(i * 5)
		cues = append(cues, refdata.Cue{Index: i + 1, Start: start, End: start + 4, Text: line})
	}
	return refdata.NewEpisode(number, cues, 0)
}

func testCorpus(episodes ...refdata.Episode) *refdata.SeasonCorpus {
	return &refdata.SeasonCorpus{Show: "Test Show", Season: 1, Episodes: episodes, Excluded: map[int]string{}}
}

func TestScoreExactDialogue(t *testing.T) {
	episode := testEpisode(3,
		"I never thought we would make it this far.",
		"Neither did I, but here we are.",
	)
	snippet := refdata.CleanDialogue("I never thought we would make it this far. Neither did I, but here we are.")
	if score := Score(snippet, episode); score < 0.99 {
		t.Errorf("score = %v, want ~1.0 for exact dialogue", score)
	}
}

func TestScoreUnrelatedDialogue(t *testing.T) {
	episode := testEpisode(1,
		"The quarterly numbers look great this year.",
		"Let us schedule the board meeting for Thursday.",
	)
	snippet := refdata.CleanDialogue("zzz qqq vvv kkk jjj xxx www")
	if score := Score(snippet, episode); score > 0.5 {
		t.Errorf("score = %v, want low for unrelated text", score)
	}
}

func TestScoreEmptySnippet(t *testing.T) {
	episode := testEpisode(1, "hello there")
	if score := Score("", episode); score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestScoreFallsBackWhenNoTermsOverlap(t *testing.T) {
	// No shared terms means the fingerprint screen keeps every window, so
	// character-level matching still produces a score.
	episode := testEpisode(1, "the quick brown fox jumps over the lazy dog")
	if score := Score("zzgh qkp", episode); score <= 0 {
		t.Errorf("score = %v, want > 0 from character-level matching", score)
	}
}

func TestBestCandidatePicksHighestEpisode(t *testing.T) {
	corpus := testCorpus(
		testEpisode(1, "We open on a quiet street in the rain."),
		testEpisode(2, "The detective finally confronts the mayor about the missing files."),
		testEpisode(3, "A wedding, a funeral, and a very awkward toast."),
	)

	candidate, ok := BestCandidate("the detective finally confronts the mayor about the missing files", corpus)
	if !ok {
		t.Fatal("no candidate")
	}
	if candidate.Episode != 2 {
		t.Errorf("episode = %d, want 2 (score %v)", candidate.Episode, candidate.Score)
	}
	if candidate.Score < 0.9 {
		t.Errorf("score = %v, want high", candidate.Score)
	}
}

func TestBestCandidateTieGoesToLowestEpisode(t *testing.T) {
	shared := "previously on the show, the gang got into trouble again."
	corpus := testCorpus(
		testEpisode(7, shared),
		testEpisode(4, shared),
	)

	candidate, ok := BestCandidate(shared, corpus)
	if !ok {
		t.Fatal("no candidate")
	}
	if candidate.Episode != 4 {
		t.Errorf("episode = %d, want 4 on a tie", candidate.Episode)
	}
}

func TestBestCandidatePositionAgnostic(t *testing.T) {
	// Dialogue 40 minutes in; the snippet must still match even though the
	// checkpoint knows nothing about subtitle timestamps.
	late := refdata.Cue{Index: 1, Start: 2400, End: 2405, Text: "You cannot be serious, that was our only way out of the canyon."}
	early := refdata.Cue{Index: 1, Start: 10, End: 14, Text: "Morning everyone, who wants pancakes before school?"}
	corpus := testCorpus(
		refdata.NewEpisode(1, []refdata.Cue{early}, 0),
		refdata.NewEpisode(2, []refdata.Cue{late}, 0),
	)

	candidate, ok := BestCandidate("you cannot be serious that was our only way out of the canyon", corpus)
	if !ok {
		t.Fatal("no candidate")
	}
	if candidate.Episode != 2 {
		t.Errorf("episode = %d, want 2", candidate.Episode)
	}
}

func TestBestCandidateEmptyInputs(t *testing.T) {
	corpus := testCorpus(testEpisode(1, "some dialogue"))
	if _, ok := BestCandidate("", corpus); ok {
		t.Error("empty transcript produced a candidate")
	}
	if _, ok := BestCandidate("   [music]  ", corpus); ok {
		t.Error("non-speech transcript produced a candidate")
	}
	if _, ok := BestCandidate("hello", nil); ok {
		t.Error("nil corpus produced a candidate")
	}
	if _, ok := BestCandidate("hello", testCorpus()); ok {
		t.Error("empty corpus produced a candidate")
	}
}
