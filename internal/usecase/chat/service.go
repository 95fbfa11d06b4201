package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/discussion"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
)

// Service runs the single-participant chat strategy: a durable back-and-forth
// between the user and one persona, resumable across requests through the
// session store. Unlike a discussion run there is no fan-out, no turn order
// and no closing synthesis.
type Service struct {
	llm       ai.Client
	augmenter *discussion.Augmenter
	meetings  repositories.MeetingResolver
	store     repositories.ChatSessionRepository
	logger    *zap.Logger
}

func NewService(
	llm ai.Client,
	augmenter *discussion.Augmenter,
	meetings repositories.MeetingResolver,
	store repositories.ChatSessionRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		llm:       llm,
		augmenter: augmenter,
		meetings:  meetings,
		store:     store,
		logger:    logger,
	}
}

// Reply holds one chat exchange result.
type Reply struct {
	SessionID string
	Answer    string
	Timestamp time.Time
}

// Send delivers one user message into a chat meeting and returns the
// persona's answer. A blank sessionID starts a new session; otherwise the
// existing session is loaded and continued.
func (s *Service) Send(ctx context.Context, meetingID, userID, userName, sessionID, message string) (*Reply, error) {
	meeting, err := s.meetings.Resolve(ctx, meetingID, userID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, apperrors.ErrMeetingNotFound(meetingID)
		}
		return nil, apperrors.ErrInternal(err)
	}
	if meeting.Strategy != entities.StrategyChat {
		return nil, apperrors.ErrInvalidArgument(
			fmt.Sprintf("meeting strategy is %q; only chat meetings accept direct messages", meeting.Strategy))
	}
	if len(meeting.Participants) != 1 {
		return nil, apperrors.ErrChatCardinality(len(meeting.Participants))
	}
	participant := meeting.Participants[0]

	session, err := s.loadOrCreate(ctx, meeting, sessionID)
	if err != nil {
		return nil, err
	}

	// Knowledge is re-fetched per message against a condensed view of the
	// conversation so far, so retrieval tracks the conversation rather than
	// only the opening topic.
	query := s.searchQuery(ctx, meeting.Topic, session, message)
	participant.RelatedKnowledge = s.augmenter.ForParticipant(ctx, userID, query, participant)

	prompt := discussion.BuildChatPrompt(participant, meeting.Topic, userName)
	session.SetSystemPrompt(prompt)

	session.AppendMessage(entities.RoleUser, message)
	session.AppendDisplay(entities.RoleUser, message, entities.DisplayTypeUser, userName, "")

	answer, err := s.complete(ctx, session.Messages)
	if err != nil {
		return nil, apperrors.ErrLLMFailed(err)
	}

	session.AppendMessage(entities.RoleAssistant, answer)
	session.AppendDisplay(entities.RoleAssistant, answer, entities.DisplayTypeParticipant, participant.Name, "")

	if err := s.store.Update(ctx, session); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	return &Reply{
		SessionID: session.ID.String(),
		Answer:    answer,
		Timestamp: session.LastDisplayTimestamp(),
	}, nil
}

// Get returns a stored session, whether it came from a chat exchange or a
// finished discussion run.
func (s *Service) Get(ctx context.Context, sessionID string) (*entities.ChatSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument("session id must be a valid uuid")
	}
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound(sessionID)
		}
		return nil, apperrors.ErrInternal(err)
	}
	return session, nil
}

// Delete removes a stored session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return apperrors.ErrInvalidArgument("session id must be a valid uuid")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return apperrors.ErrSessionNotFound(sessionID)
		}
		return apperrors.ErrInternal(err)
	}
	return nil
}

func (s *Service) loadOrCreate(ctx context.Context, meeting *entities.Meeting, sessionID string) (*entities.ChatSession, error) {
	if sessionID == "" {
		session := entities.NewChatSession(meeting.ID, meeting.UserID)
		if err := s.store.Create(ctx, session); err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		s.logger.Info("chat session created",
			zap.String("session_id", session.ID.String()),
			zap.String("meeting_id", meeting.ID),
		)
		return session, nil
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument("session id must be a valid uuid")
	}
	session, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound(sessionID)
		}
		return nil, apperrors.ErrInternal(err)
	}
	return session, nil
}

// searchQuery condenses the running conversation into a short retrieval
// query. The condensing call is best-effort: on failure the topic plus the
// latest message stands in.
func (s *Service) searchQuery(ctx context.Context, topic string, session *entities.ChatSession, message string) string {
	fallback := strings.TrimSpace(topic + " " + message)
	if len(session.Messages) < 2 {
		return fallback
	}

	var b strings.Builder
	for _, m := range session.Messages {
		if m.Role == entities.RoleSystem {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "%s: %s\n", entities.RoleUser, message)

	condensed, _, err := s.llm.Send(ctx, []ai.Message{
		{Role: entities.RoleSystem, Content: "Condense the conversation below into a single short search query capturing what the user currently wants to know. Respond with the query only."},
		{Role: entities.RoleUser, Content: b.String()},
	})
	if err != nil || strings.TrimSpace(condensed) == "" {
		s.logger.Warn("conversation condensing failed, using raw query", zap.Error(err))
		return fallback
	}
	return strings.TrimSpace(condensed)
}

func (s *Service) complete(ctx context.Context, history []entities.TurnMessage) (string, error) {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	answer, _, err := s.llm.Send(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
