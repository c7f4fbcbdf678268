package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusIdentifying  Status = "identifying"
	StatusMatched      Status = "matched"
	StatusInconclusive Status = "inconclusive"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusIdentifying,
	StatusMatched,
	StatusInconclusive,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total        int
	Pending      int
	Processing   int
	Matched      int
	Inconclusive int
	Failed       int
	Review       int
}

// Item represents a queue item persisted in SQLite. One item corresponds to
// one media file awaiting or holding an identification result.
type Item struct {
	ID              int64
	SourcePath      string
	ShowTitle       string
	Season          int
	Status          Status
	Episode         int
	Confidence      float64
	ProposedName    string
	CheckpointsUsed int
	SampledSeconds  float64
	RunID           string
	ResultJSON      string
	ErrorMessage    string
	NeedsReview     bool
	ReviewReason    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status reflects a finished item.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusMatched, StatusInconclusive, StatusFailed, StatusReview:
		return true
	default:
		return false
	}
}

// IsProcessing returns true when the item reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	return i.Status == StatusIdentifying
}

// SetProgress updates all three progress fields atomically.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.ProgressStage = "Failed"
}

// SetReview marks the item as needing manual review with the given reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = reason
	i.ProgressStage = "Review"
	i.ProgressMessage = reason
}
