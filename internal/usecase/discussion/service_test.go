package discussion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
)

type fakeStore struct {
	created  int
	updated  int
	sessions map[uuid.UUID]*entities.ChatSession
	failOn   string
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]*entities.ChatSession)}
}

func (f *fakeStore) Create(_ context.Context, session *entities.ChatSession) error {
	if f.failOn == "create" {
		return errors.New("store down")
	}
	f.created++
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
	if f.failOn == "update" {
		return errors.New("store down")
	}
	f.updated++
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

type recordEmitter struct {
	events []Event
}

func (r *recordEmitter) Emit(event Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordEmitter) types() []string {
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// personaName extracts the name from a "You are <name>." system prompt.
func personaName(system string) string {
	rest := strings.TrimPrefix(system, "You are ")
	if i := strings.IndexAny(rest, ".,"); i > 0 {
		return rest[:i]
	}
	return rest
}

// scriptLLM answers gauge calls from the strengths table, synthesis with
// "final summary", and every persona turn with "<name> says".
func scriptLLM(strengths map[string]string, askErr error) *fakeLLM {
	return &fakeLLM{send: func(messages []ai.Message) (string, error) {
		system := messages[0].Content
		last := messages[len(messages)-1].Content

		if strings.Contains(last, "scale of 0 to 10") {
			return strengths[personaName(system)], nil
		}
		if strings.HasPrefix(system, "You are the moderator") {
			return "final summary", nil
		}
		if askErr != nil {
			return "", askErr
		}
		return personaName(system) + " says", nil
	}}
}

func newDiscussionService(llm *fakeLLM, store *fakeStore) *Service {
	augmenter := NewAugmenter(&fakeSearcher{}, 3, 0.80, zap.NewNop())
	return NewService(llm, augmenter, store, 0, zap.NewNop())
}

func buildMeeting(strategy entities.Strategy, questions []string, names ...string) *entities.Meeting {
	participants := make([]*entities.Participant, len(names))
	for i, name := range names {
		participants[i] = &entities.Participant{
			ID:                 fmt.Sprintf("p%d", i+1),
			Name:               name,
			PersonaDescription: fmt.Sprintf("%s persona.", name),
			Role:               "panelist",
			Weight:             5,
			Order:              i + 1,
		}
	}
	return &entities.Meeting{
		ID:           "m1",
		UserID:       "u1",
		Topic:        "release planning",
		Strategy:     strategy,
		Questions:    questions,
		Participants: participants,
	}
}

func TestRunRoundRobinEventSequence(t *testing.T) {
	store := newFakeStore()
	service := newDiscussionService(scriptLLM(nil, nil), store)
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyRoundRobin, []string{"Should we ship?"}, "Alice", "Bob")
	if err := service.Run(context.Background(), meeting, emitter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		EventQuestions,
		EventNextParticipant, EventParticipantResponse,
		EventNextParticipant, EventParticipantResponse,
		EventFinalResponse,
		EventComplete,
	}
	got := emitter.types()
	if len(got) != len(want) {
		t.Fatalf("event types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}

	first := emitter.events[1].Data.(NextParticipantPayload)
	if first.ParticipantName != "Alice" {
		t.Errorf("first turn goes to %q, want Alice", first.ParticipantName)
	}
	second := emitter.events[3].Data.(NextParticipantPayload)
	if second.ParticipantName != "Bob" {
		t.Errorf("second turn goes to %q, want Bob", second.ParticipantName)
	}

	resp := emitter.events[2].Data.(ParticipantResponsePayload)
	if resp.Participant != "Alice" || resp.Answer != "Alice says" || resp.Question != "Should we ship?" {
		t.Errorf("first response = %+v", resp)
	}
	if resp.Strength != nil {
		t.Errorf("round robin turns carry no strength, got %v", *resp.Strength)
	}

	final := emitter.events[5].Data.(FinalResponsePayload)
	if final.Response != "final summary" {
		t.Errorf("final response = %q", final.Response)
	}

	// Session is created up front and updated per turn plus system prompt
	// and synthesis.
	if store.created != 1 {
		t.Errorf("sessions created = %d, want 1", store.created)
	}
	if store.updated < 3 {
		t.Errorf("session updates = %d, want at least 3", store.updated)
	}
}

func TestRunRoundRobinHistoryFraming(t *testing.T) {
	var histories [][]ai.Message
	llm := &fakeLLM{send: func(messages []ai.Message) (string, error) {
		histories = append(histories, messages)
		if strings.HasPrefix(messages[0].Content, "You are the moderator") {
			return "final summary", nil
		}
		return personaName(messages[0].Content) + " says", nil
	}}
	service := newDiscussionService(llm, newFakeStore())

	meeting := buildMeeting(entities.StrategyRoundRobin, []string{"q1"}, "Alice", "Bob")
	if err := service.Run(context.Background(), meeting, &recordEmitter{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Bob's call: his own system prompt, the moderator relay of Alice's
	// answer as a user message, then the question.
	if len(histories) < 2 {
		t.Fatalf("model calls = %d, want at least 2", len(histories))
	}
	bob := histories[1]
	if len(bob) != 3 {
		t.Fatalf("bob saw %d messages, want 3: %+v", len(bob), bob)
	}
	relay := bob[1]
	if relay.Role != entities.RoleUser {
		t.Errorf("relay role = %q, want user", relay.Role)
	}
	if relay.Content != "Moderator: Alice answered: Alice says" {
		t.Errorf("relay content = %q", relay.Content)
	}
}

func TestRunOpinionatedOrdersByStrengthAndSkipsZero(t *testing.T) {
	store := newFakeStore()
	llm := scriptLLM(map[string]string{"Alice": "7", "Bob": "9", "Carol": "0"}, nil)
	service := newDiscussionService(llm, store)
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyOpinionated, []string{"q1"}, "Alice", "Bob", "Carol")
	if err := service.Run(context.Background(), meeting, emitter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var speakers []string
	var strengths []int
	for _, e := range emitter.events {
		if e.Type == EventParticipantResponse {
			resp := e.Data.(ParticipantResponsePayload)
			speakers = append(speakers, resp.Participant)
			if resp.Strength == nil {
				t.Fatalf("opinionated response missing strength: %+v", resp)
			}
			strengths = append(strengths, *resp.Strength)
		}
	}

	if len(speakers) != 2 || speakers[0] != "Bob" || speakers[1] != "Alice" {
		t.Errorf("speaking order = %v, want [Bob Alice]", speakers)
	}
	if len(strengths) != 2 || strengths[0] != 9 || strengths[1] != 7 {
		t.Errorf("strengths = %v, want [9 7]", strengths)
	}
}

func TestRunOpinionatedTieKeepsRosterOrder(t *testing.T) {
	llm := scriptLLM(map[string]string{"Alice": "5", "Bob": "5"}, nil)
	service := newDiscussionService(llm, newFakeStore())
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyOpinionated, []string{"q1"}, "Alice", "Bob")
	if err := service.Run(context.Background(), meeting, emitter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var speakers []string
	for _, e := range emitter.events {
		if e.Type == EventParticipantResponse {
			speakers = append(speakers, e.Data.(ParticipantResponsePayload).Participant)
		}
	}
	if len(speakers) != 2 || speakers[0] != "Alice" || speakers[1] != "Bob" {
		t.Errorf("tied strengths must keep roster order, got %v", speakers)
	}
}

func TestRunRejectsChatStrategy(t *testing.T) {
	service := newDiscussionService(scriptLLM(nil, nil), newFakeStore())
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyChat, []string{"q1"}, "Alice")
	err := service.Run(context.Background(), meeting, emitter)
	if err == nil {
		t.Fatal("chat strategy must be rejected on the streaming path")
	}
	if len(emitter.events) != 1 || emitter.events[0].Type != EventError {
		t.Errorf("events = %v, want single error event", emitter.types())
	}
}

func TestRunEmitsErrorEventOnModelFailure(t *testing.T) {
	llm := scriptLLM(nil, errors.New("model unavailable"))
	service := newDiscussionService(llm, newFakeStore())
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyRoundRobin, []string{"q1"}, "Alice")
	err := service.Run(context.Background(), meeting, emitter)
	if err == nil {
		t.Fatal("model failure must propagate")
	}

	got := emitter.types()
	if got[len(got)-1] != EventError {
		t.Errorf("last event = %q, want error (full: %v)", got[len(got)-1], got)
	}
	for _, typ := range got {
		if typ == EventFinalResponse || typ == EventComplete {
			t.Errorf("failed run must not emit %s", typ)
		}
	}
}

func TestRunStopsAfterInFlightTurnOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The subscriber disconnects while Alice's turn is in flight. Her turn
	// finishes; Bob's never starts.
	llmCalls := 0
	llm := &fakeLLM{send: func(messages []ai.Message) (string, error) {
		llmCalls++
		cancel()
		return "Alice says", nil
	}}
	service := newDiscussionService(llm, newFakeStore())
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyRoundRobin, []string{"q1"}, "Alice", "Bob")
	if err := service.Run(ctx, meeting, emitter); err == nil {
		t.Fatal("a cancelled run must return an error")
	}

	if llmCalls != 1 {
		t.Errorf("model calls = %d, want 1 (no call after cancellation)", llmCalls)
	}

	var gotAliceResponse bool
	for _, e := range emitter.events {
		switch e.Type {
		case EventComplete, EventFinalResponse:
			t.Errorf("cancelled run must not emit %s", e.Type)
		case EventParticipantResponse:
			resp := e.Data.(ParticipantResponsePayload)
			if resp.Participant == "Alice" {
				gotAliceResponse = true
			}
			if resp.Participant == "Bob" {
				t.Error("Bob's turn must not start after cancellation")
			}
		}
	}
	if !gotAliceResponse {
		t.Error("the in-flight turn must still complete and be emitted")
	}
}

func TestRunEmitsEmptyQuestionListAsEmptyArray(t *testing.T) {
	service := newDiscussionService(scriptLLM(nil, nil), newFakeStore())
	emitter := &recordEmitter{}

	meeting := buildMeeting(entities.StrategyRoundRobin, nil, "Alice")
	if err := service.Run(context.Background(), meeting, emitter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	payload := emitter.events[0].Data.(QuestionsPayload)
	if payload.Questions == nil {
		t.Fatal("questions payload must serialize as an empty array, not null")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"questions":[]}` {
		t.Errorf("payload = %s, want {\"questions\":[]}", data)
	}
}

func TestRunPersistsTurnsBeforeEmission(t *testing.T) {
	store := newFakeStore()
	var turnsPersistedAtEmit []int
	service := newDiscussionService(scriptLLM(nil, nil), store)

	emitter := &emitterFunc{fn: func(event Event) error {
		if event.Type == EventParticipantResponse {
			for _, s := range store.sessions {
				count := 0
				for _, d := range s.DisplayMessages {
					if d.Type == entities.DisplayTypeParticipant {
						count++
					}
				}
				turnsPersistedAtEmit = append(turnsPersistedAtEmit, count)
			}
		}
		return nil
	}}

	meeting := buildMeeting(entities.StrategyRoundRobin, []string{"q1"}, "Alice", "Bob")
	if err := service.Run(context.Background(), meeting, emitter); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []int{1, 2}
	if len(turnsPersistedAtEmit) != len(want) {
		t.Fatalf("observed persisted turn counts %v, want %v", turnsPersistedAtEmit, want)
	}
	for i := range want {
		if turnsPersistedAtEmit[i] != want[i] {
			t.Errorf("at emission %d the store held %d turns, want %d", i, turnsPersistedAtEmit[i], want[i])
		}
	}
}

type emitterFunc struct {
	fn func(Event) error
}

func (e *emitterFunc) Emit(event Event) error {
	return e.fn(event)
}
