package textutil

import (
	"math"
	"testing"
)

func TestRatioIdentical(t *testing.T) {
	if got := Ratio("hello world", "hello world"); got != 1 {
		t.Errorf("Ratio(identical) = %v, want 1", got)
	}
}

func TestRatioDisjoint(t *testing.T) {
	got := Ratio("abc", "xyz")
	if got != 0 {
		t.Errorf("Ratio(disjoint) = %v, want 0", got)
	}
}

func TestRatioEmpty(t *testing.T) {
	if got := Ratio("", ""); got != 1 {
		t.Errorf("Ratio(empty, empty) = %v, want 1", got)
	}
	if got := Ratio("abc", ""); got != 0 {
		t.Errorf("Ratio(abc, empty) = %v, want 0", got)
	}
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "the quick brown fox", "the slow brown cat"
	if ab, ba := Ratio(a, b), Ratio(b, a); ab != ba {
		t.Errorf("Ratio not symmetric: %v vs %v", ab, ba)
	}
}

func TestTokenSortRatioIgnoresOrder(t *testing.T) {
	got := TokenSortRatio("world hello again", "hello again world")
	if got != 1 {
		t.Errorf("TokenSortRatio(reordered) = %v, want 1", got)
	}
}

func TestPartialRatioSnippetInLargerText(t *testing.T) {
	snippet := "we have to get out of here before they find us"
	body := "previously on the show. something unrelated happened earlier. " +
		"we have to get out of here before they find us. " +
		"and then the story moved on to other matters entirely."
	got := PartialRatio(snippet, body)
	if got < 0.95 {
		t.Errorf("PartialRatio(contained snippet) = %v, want >= 0.95", got)
	}
}

func TestPartialRatioUnrelated(t *testing.T) {
	got := PartialRatio("zebra quartz jukebox", "mellow violins during dinner")
	if got > 0.5 {
		t.Errorf("PartialRatio(unrelated) = %v, want <= 0.5", got)
	}
}

func TestPartialRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", ""},
		{"short", "a much longer string that contains short somewhere in it"},
		{"identical", "identical"},
	}
	for _, pair := range pairs {
		got := PartialRatio(pair[0], pair[1])
		if got < 0 || got > 1 || math.IsNaN(got) {
			t.Errorf("PartialRatio(%q, %q) = %v, want within [0,1]", pair[0], pair[1], got)
		}
	}
}

func TestIndelDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 2},
		{"kitten", "sitting", 5},
	}
	for _, tt := range tests {
		got := indelDistance([]rune(tt.a), []rune(tt.b))
		if got != tt.want {
			t.Errorf("indelDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
