package refdata

import "testing"

func TestCleanDialogue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"stage directions removed", "[door slams] Get out!", "get out!"},
		{"markup removed", "<i>Hello</i> there", "hello there"},
		{"parentheticals removed", "(sighs) Fine.", "fine."},
		{"speaker labels removed", "JOHN: I know.", "i know."},
		{"music notes removed", "♪ la la la ♪", "la la la"},
		{"stutters collapsed", "W-w-what is that?", "what is that?"},
		{"hyphenated words kept", "a well-known problem", "a well-known problem"},
		{"diacritics folded", "café naïve", "cafe naive"},
		{"whitespace squeezed", "  so   much \n space ", "so much space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDialogue(tt.in); got != tt.want {
				t.Errorf("CleanDialogue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsAdvertisement(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Subtitles by SomeGroup", true},
		{"Downloaded from OpenSubtitles.org", true},
		{"Visit www.example.com today", true},
		{"Synced and corrected by someone", true},
		{"I was just walking by", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAdvertisement(tt.in); got != tt.want {
			t.Errorf("IsAdvertisement(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCollapseStuttersBoundaries(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"b-but why", "but why"},
		{"a-a-all of it", "all of it"},
		{"x-x", "x"},
		{"re-run", "re-run"},
	}
	for _, tt := range tests {
		if got := collapseStutters(tt.in); got != tt.want {
			t.Errorf("collapseStutters(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
