package discussion

import (
	"context"
	"fmt"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
)

// Transcript maintains the two parallel logs of a session (model-facing
// messages, UI-facing display messages) and persists every mutation through
// the session store before the corresponding event is emitted. A client that
// disconnects mid-stream therefore never observes an event without a durable
// record backing it.
type Transcript struct {
	session *entities.ChatSession
	store   repositories.ChatSessionRepository
}

// NewTranscript wraps a session and its store.
func NewTranscript(session *entities.ChatSession, store repositories.ChatSessionRepository) *Transcript {
	return &Transcript{session: session, store: store}
}

// Session exposes the underlying session.
func (t *Transcript) Session() *entities.ChatSession {
	return t.session
}

// Begin creates the durable record for a fresh session.
func (t *Transcript) Begin(ctx context.Context) error {
	if err := t.store.Create(ctx, t.session); err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// EnsureSystemPrompt establishes or refreshes messages[0] and persists only
// when the content actually changed.
func (t *Transcript) EnsureSystemPrompt(ctx context.Context, prompt string) error {
	if !t.session.SetSystemPrompt(prompt) {
		return nil
	}
	return t.persist(ctx)
}

// AppendTurn records one answered turn in both logs and persists.
func (t *Transcript) AppendTurn(ctx context.Context, participantName, question, answer string) error {
	t.session.AppendMessage(entities.RoleAssistant, fmt.Sprintf("%s: %s", participantName, answer))
	t.session.AppendDisplay(entities.RoleAssistant, answer, entities.DisplayTypeParticipant, participantName, question)
	return t.persist(ctx)
}

// AppendSummary records the synthesis turn, the only turn not attributed to a
// named persona, and persists.
func (t *Transcript) AppendSummary(ctx context.Context, summary string) error {
	t.session.AppendMessage(entities.RoleAssistant, summary)
	t.session.AppendDisplay(entities.RoleAssistant, summary, entities.DisplayTypeSummary, "", "Synthesis")
	return t.persist(ctx)
}

func (t *Transcript) persist(ctx context.Context) error {
	if err := t.store.Update(ctx, t.session); err != nil {
		return fmt.Errorf("failed to persist chat session: %w", err)
	}
	return nil
}
