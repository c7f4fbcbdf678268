package refdata

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stageDirectionPattern = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	markupPattern         = regexp.MustCompile(`<[^>]*>|\{[^}]*\}`)
	speakerLabelPattern   = regexp.MustCompile(`(?m)^[A-Z][A-Z .'-]{1,24}:\s*`)
	musicNotePattern      = regexp.MustCompile(`[♪♫#]+`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
)

var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)opensubtitles`),
	regexp.MustCompile(`(?i)subtitles? by`),
	regexp.MustCompile(`(?i)synced? and corrected`),
	regexp.MustCompile(`(?i)http(s)?://`),
	regexp.MustCompile(`(?i)\bwww\.`),
	regexp.MustCompile(`(?i)\bsubscene\b`),
	regexp.MustCompile(`(?i)\byts\b`),
	regexp.MustCompile(`(?i)\byify\b`),
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsAdvertisement reports whether a cue's text is subtitle-release junk
// rather than dialogue.
func IsAdvertisement(text string) bool {
	payload := strings.TrimSpace(strings.ToLower(text))
	if payload == "" {
		return false
	}
	for _, pattern := range adPatterns {
		if pattern.MatchString(payload) {
			return true
		}
	}
	return false
}

// CleanDialogue normalizes subtitle or transcript text for comparison:
// stage directions, markup, speaker labels, and music notes are removed,
// diacritics are folded, stutter repetitions are collapsed, and whitespace
// is squeezed. The result is lowercase.
func CleanDialogue(text string) string {
	cleaned := stageDirectionPattern.ReplaceAllString(text, " ")
	cleaned = markupPattern.ReplaceAllString(cleaned, " ")
	cleaned = speakerLabelPattern.ReplaceAllString(cleaned, " ")
	cleaned = musicNotePattern.ReplaceAllString(cleaned, " ")
	cleaned = foldDiacritics(cleaned)
	cleaned = collapseStutters(cleaned)
	cleaned = strings.ToLower(cleaned)
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func foldDiacritics(text string) string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		return text
	}
	return folded
}

// collapseStutters rewrites "w-w-what" as "what". RE2 has no backreferences,
// so repeated leading letters are detected by hand.
func collapseStutters(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	runesIn := []rune(text)
	for i := 0; i < len(runesIn); {
		r := runesIn[i]
		if unicode.IsLetter(r) && i+2 < len(runesIn) && runesIn[i+1] == '-' && equalFoldRune(runesIn[i+2], r) {
			boundary := i == 0 || !unicode.IsLetter(runesIn[i-1])
			if boundary {
				// Skip every "X-" prefix repeating the same letter.
				for i+2 < len(runesIn) && runesIn[i+1] == '-' && equalFoldRune(runesIn[i+2], r) {
					i += 2
				}
				continue
			}
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}

func equalFoldRune(a, b rune) bool {
	return unicode.ToLower(a) == unicode.ToLower(b)
}
