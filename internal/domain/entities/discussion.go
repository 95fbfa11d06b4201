package entities

// LogEntry is one answered turn in a discussion, append-only and
// chronological. Strength is recorded for the opinionated strategy only.
type LogEntry struct {
	ParticipantName string `json:"participant_name"`
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	Strength        *int   `json:"strength,omitempty"`
}

// DiscussionSession is the in-memory state of one live discussion run. It is
// owned exclusively by that run: created at run start, mutated only by the
// owning run, discarded at completion. Its durable residue is the ChatSession.
type DiscussionSession struct {
	MeetingID      string
	UserID         string
	Strategy       Strategy
	Topic          string
	Questions      []string
	Participants   []*Participant // roster order
	DiscussionLog  []LogEntry
	MessageHistory []TurnMessage // model-facing rolling context, distinct from the persisted transcript
}

// NewDiscussionSession builds run state from a resolved meeting.
func NewDiscussionSession(m *Meeting) *DiscussionSession {
	return &DiscussionSession{
		MeetingID:    m.ID,
		UserID:       m.UserID,
		Strategy:     m.Strategy,
		Topic:        m.Topic,
		Questions:    m.Questions,
		Participants: m.Participants,
	}
}

// AppendLog records a completed turn.
func (d *DiscussionSession) AppendLog(entry LogEntry) {
	d.DiscussionLog = append(d.DiscussionLog, entry)
}

// AppendHistory appends one line to the model-facing rolling context.
func (d *DiscussionSession) AppendHistory(role, content string) {
	d.MessageHistory = append(d.MessageHistory, TurnMessage{Role: role, Content: content})
}
