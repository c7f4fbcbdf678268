package identify

// EventType names the per-checkpoint progress notifications.
type EventType string

const (
	EventCheckpointStarted     EventType = "checkpoint_started"
	EventTranscriptionObtained EventType = "transcription_obtained"
	EventDecisionMade          EventType = "decision_made"
)

// Event is an observational progress notification. Consumers render it;
// nothing about the decision depends on whether anyone listens.
type Event struct {
	Type       EventType
	Path       string
	Checkpoint Checkpoint
	// Transcript and Backend are set for transcription_obtained.
	Transcript string
	Backend    string
	// Decision is set for decision_made.
	Decision *MatchDecision
}

// ProgressFunc receives progress events. Implementations must not block.
type ProgressFunc func(Event)

func (f ProgressFunc) emit(event Event) {
	if f != nil {
		f(event)
	}
}
