package refdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Cue is a single subtitle cue with its timing in seconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRT decodes SRT subtitle content into cues. Malformed blocks are
// skipped rather than failing the whole file; reference subtitles in the
// wild are messy.
func ParseSRT(raw []byte) ([]Cue, error) {
	normalized := strings.ReplaceAll(string(raw), "\r\n", "\n")
	trimmed := strings.TrimSpace(strings.TrimPrefix(normalized, "\ufeff"))
	if trimmed == "" {
		return nil, nil
	}

	blocks := strings.Split(trimmed, "\n\n")
	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
		cue, ok := parseBlock(block)
		if !ok {
			continue
		}
		cues = append(cues, cue)
	}
	if len(cues) == 0 {
		return nil, fmt.Errorf("srt: no parseable cues in %d blocks", len(blocks))
	}
	return cues, nil
}

func parseBlock(block string) (Cue, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) == 0 {
		return Cue{}, false
	}

	var cue Cue
	cursor := 0
	if index, err := strconv.Atoi(strings.TrimSpace(lines[cursor])); err == nil {
		cue.Index = index
		cursor++
	}
	if cursor >= len(lines) || !strings.Contains(lines[cursor], "-->") {
		return Cue{}, false
	}

	parts := strings.SplitN(lines[cursor], "-->", 2)
	start, errStart := parseTimestamp(parts[0])
	end, errEnd := parseTimestamp(parts[1])
	if errStart != nil || errEnd != nil {
		return Cue{}, false
	}
	cue.Start = start
	cue.End = end
	cursor++

	text := make([]string, 0, len(lines)-cursor)
	for _, line := range lines[cursor:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			text = append(text, trimmed)
		}
	}
	if len(text) == 0 {
		return Cue{}, false
	}
	cue.Text = strings.Join(text, " ")
	return cue, true
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// SRT uses a comma for milliseconds but periods show up in the wild.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(strings.TrimSpace(hms[0]))
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
