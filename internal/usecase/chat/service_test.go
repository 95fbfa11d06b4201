package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/discussion"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
)

type fakeLLM struct {
	send func(messages []ai.Message) (string, error)
}

func (f *fakeLLM) Send(_ context.Context, messages []ai.Message) (string, *ai.Usage, error) {
	answer, err := f.send(messages)
	return answer, nil, err
}

type fakeSearcher struct {
	items []entities.KnowledgeItem
	err   error
}

func (f *fakeSearcher) Search(context.Context, string, string, string, int) ([]entities.KnowledgeItem, error) {
	return f.items, f.err
}

type fakeResolver struct {
	meeting *entities.Meeting
	err     error
}

func (f *fakeResolver) Resolve(context.Context, string, string) (*entities.Meeting, error) {
	return f.meeting, f.err
}

type fakeStore struct {
	sessions map[uuid.UUID]*entities.ChatSession
	updates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]*entities.ChatSession)}
}

func (f *fakeStore) Create(_ context.Context, session *entities.ChatSession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*entities.ChatSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeStore) Update(_ context.Context, session *entities.ChatSession) error {
	f.updates++
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return entities.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func chatMeeting(participants ...*entities.Participant) *entities.Meeting {
	return &entities.Meeting{
		ID:           "m1",
		UserID:       "u1",
		Topic:        "gardening",
		Strategy:     entities.StrategyChat,
		Participants: participants,
	}
}

func persona() *entities.Participant {
	return &entities.Participant{ID: "p1", Name: "Ada", PersonaDescription: "A botanist.", Role: "advisor"}
}

func newChatService(llm *fakeLLM, resolver *fakeResolver, store *fakeStore) *Service {
	augmenter := discussion.NewAugmenter(&fakeSearcher{}, 3, 0.80, zap.NewNop())
	return NewService(llm, augmenter, resolver, store, zap.NewNop())
}

func TestSendCreatesSessionAndAnswers(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{send: func(messages []ai.Message) (string, error) {
		if messages[0].Role != entities.RoleSystem {
			t.Errorf("first message role = %q, want system", messages[0].Role)
		}
		return "Hello Sam! Roses like sun.", nil
	}}
	service := newChatService(llm, &fakeResolver{meeting: chatMeeting(persona())}, store)

	reply, err := service.Send(context.Background(), "m1", "u1", "Sam", "", "How do I grow roses?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if reply.Answer != "Hello Sam! Roses like sun." {
		t.Errorf("answer = %q", reply.Answer)
	}
	if reply.SessionID == "" {
		t.Error("reply missing session id")
	}
	if len(store.sessions) != 1 {
		t.Fatalf("sessions stored = %d, want 1", len(store.sessions))
	}

	id, _ := uuid.Parse(reply.SessionID)
	session := store.sessions[id]
	// system prompt, user message, assistant answer
	if len(session.Messages) != 3 {
		t.Fatalf("persisted messages = %d, want 3: %+v", len(session.Messages), session.Messages)
	}
	if session.Messages[0].Role != entities.RoleSystem {
		t.Errorf("messages[0] role = %q, want system", session.Messages[0].Role)
	}
	if session.Messages[1].Content != "How do I grow roses?" {
		t.Errorf("messages[1] = %q", session.Messages[1].Content)
	}
	if !reply.Timestamp.Equal(session.LastDisplayTimestamp()) {
		t.Error("reply timestamp must match the last display message")
	}
}

func TestSendKeepsSystemPromptFirstAcrossTurns(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{send: func(messages []ai.Message) (string, error) {
		return "answer", nil
	}}
	service := newChatService(llm, &fakeResolver{meeting: chatMeeting(persona())}, store)

	reply, err := service.Send(context.Background(), "m1", "u1", "Sam", "", "first")
	if err != nil {
		t.Fatalf("first Send: %v", err)
	}
	if _, err := service.Send(context.Background(), "m1", "u1", "Sam", reply.SessionID, "second"); err != nil {
		t.Fatalf("second Send: %v", err)
	}

	id, _ := uuid.Parse(reply.SessionID)
	session := store.sessions[id]
	if len(store.sessions) != 1 {
		t.Fatalf("continuing a session must not create another, got %d", len(store.sessions))
	}

	systemCount := 0
	for _, m := range session.Messages {
		if m.Role == entities.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Errorf("system messages = %d, want exactly 1", systemCount)
	}
	if session.Messages[0].Role != entities.RoleSystem {
		t.Errorf("messages[0] role = %q, want system", session.Messages[0].Role)
	}
	// 1 system + 2 user + 2 assistant
	if len(session.Messages) != 5 {
		t.Errorf("messages = %d, want 5", len(session.Messages))
	}
}

func TestSendRejectsWrongCardinality(t *testing.T) {
	second := &entities.Participant{ID: "p2", Name: "Grace"}
	service := newChatService(
		&fakeLLM{send: func([]ai.Message) (string, error) { return "", nil }},
		&fakeResolver{meeting: chatMeeting(persona(), second)},
		newFakeStore(),
	)

	_, err := service.Send(context.Background(), "m1", "u1", "Sam", "", "hi")
	if err == nil {
		t.Fatal("two participants must be rejected")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_CHAT_CARDINALITY {
		t.Errorf("error = %v, want CHAT_CARDINALITY", err)
	}
}

func TestSendRejectsNonChatMeeting(t *testing.T) {
	meeting := chatMeeting(persona())
	meeting.Strategy = entities.StrategyRoundRobin
	service := newChatService(
		&fakeLLM{send: func([]ai.Message) (string, error) { return "", nil }},
		&fakeResolver{meeting: meeting},
		newFakeStore(),
	)

	if _, err := service.Send(context.Background(), "m1", "u1", "Sam", "", "hi"); err == nil {
		t.Fatal("non-chat meeting must be rejected")
	}
}

func TestSendUnknownSessionIs404(t *testing.T) {
	service := newChatService(
		&fakeLLM{send: func([]ai.Message) (string, error) { return "", nil }},
		&fakeResolver{meeting: chatMeeting(persona())},
		newFakeStore(),
	)

	_, err := service.Send(context.Background(), "m1", "u1", "Sam", uuid.NewString(), "hi")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_SESSION_NOT_FOUND {
		t.Errorf("error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestSearchQueryFallsBackWhenCondensingFails(t *testing.T) {
	llm := &fakeLLM{send: func(messages []ai.Message) (string, error) {
		if strings.Contains(messages[0].Content, "Condense the conversation") {
			return "", errors.New("condenser down")
		}
		return "answer", nil
	}}
	store := newFakeStore()
	service := newChatService(llm, &fakeResolver{meeting: chatMeeting(persona())}, store)

	reply, err := service.Send(context.Background(), "m1", "u1", "Sam", "", "first")
	if err != nil {
		t.Fatalf("first Send: %v", err)
	}
	// Second turn has history, so condensing is attempted; its failure must
	// not fail the turn.
	if _, err := service.Send(context.Background(), "m1", "u1", "Sam", reply.SessionID, "second"); err != nil {
		t.Fatalf("second Send must survive condenser failure: %v", err)
	}
}

func TestGetAndDelete(t *testing.T) {
	store := newFakeStore()
	session := entities.NewChatSession("m1", "u1")
	store.sessions[session.ID] = session

	service := newChatService(
		&fakeLLM{send: func([]ai.Message) (string, error) { return "", nil }},
		&fakeResolver{meeting: chatMeeting(persona())},
		store,
	)

	got, err := service.Get(context.Background(), session.ID.String())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("Get returned session %s, want %s", got.ID, session.ID)
	}

	if err := service.Delete(context.Background(), session.ID.String()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.Get(context.Background(), session.ID.String()); err == nil {
		t.Error("deleted session must not resolve")
	}

	if _, err := service.Get(context.Background(), "not-a-uuid"); err == nil {
		t.Error("malformed session id must be rejected")
	}
}
