package discussion

// Event types pushed to the stream subscriber. Each event is self-contained:
// it carries enough data to render without referencing prior events, and once
// emitted it is never retracted or reordered.
const (
	EventQuestions           = "questions"
	EventNextParticipant     = "next_participant"
	EventParticipantResponse = "participant_response"
	EventFinalResponse       = "final_response"
	EventComplete            = "complete"
	EventError               = "error"
)

// Event is one discrete discussion event.
type Event struct {
	Type string
	Data interface{}
}

// Emitter serializes events into an ordered, push-style stream with a single
// subscriber per run. Emission and turn execution are interleaved on the same
// control path, so a slow consumer simply delays subsequent turns.
type Emitter interface {
	Emit(event Event) error
}

// QuestionsPayload announces the fixed question list, once, after the
// knowledge fetch barrier releases.
type QuestionsPayload struct {
	Questions []string `json:"questions"`
}

// NextParticipantPayload announces whose turn is starting.
type NextParticipantPayload struct {
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
}

// ParticipantResponsePayload carries one completed turn. Strength is present
// for the opinionated strategy only.
type ParticipantResponsePayload struct {
	Participant string `json:"participant"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Strength    *int   `json:"strength,omitempty"`
}

// FinalResponsePayload carries the weighted synthesis.
type FinalResponsePayload struct {
	Response string `json:"response"`
}

// ErrorPayload is the terminal failure marker.
type ErrorPayload struct {
	Detail string `json:"detail"`
}
