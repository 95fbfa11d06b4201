package entities

import "fmt"

// Strategy is the discussion control-flow policy for a meeting.
type Strategy string

const (
	StrategyRoundRobin  Strategy = "round robin"
	StrategyOpinionated Strategy = "opinionated"
	StrategyChat        Strategy = "chat"
)

// ParseStrategy validates a raw strategy string. Unknown values are rejected
// before a run starts rather than surfacing mid-discussion.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(raw) {
	case StrategyRoundRobin, StrategyOpinionated, StrategyChat:
		return Strategy(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, raw)
}

// KnowledgeItem is one retrieved knowledge snippet with its similarity score.
type KnowledgeItem struct {
	TextChunk       string  `json:"text_chunk"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Participant is a persona taking part in a discussion. Identity fields are
// immutable; RelatedKnowledge is populated once by the knowledge augmenter
// before any turn executes and is read-only afterwards.
type Participant struct {
	ID                 string          `json:"participant_id"`
	Name               string          `json:"name"`
	PersonaDescription string          `json:"persona_description"`
	Role               string          `json:"role"`
	Weight             int             `json:"weight"` // 1-10, opinionated ordering and synthesis only
	Order              int             `json:"order"`  // display / tie-break hint
	RelatedKnowledge   []KnowledgeItem `json:"related_knowledge,omitempty"`
}

// Meeting is a fully-resolved meeting as supplied by the meeting resolver:
// topic, strategy, ordered weighted roster and the optional fixed question
// list. Questions is empty for the chat strategy.
type Meeting struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Topic        string         `json:"topic"`
	Strategy     Strategy       `json:"strategy"`
	Questions    []string       `json:"questions"`
	Participants []*Participant `json:"participants"`
}

// ParticipantByID returns the roster entry with the given id, or nil.
func (m *Meeting) ParticipantByID(id string) *Participant {
	for _, p := range m.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}
