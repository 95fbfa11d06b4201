package discussion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
)

// Service orchestrates one multi-party discussion run: knowledge fetch, turn
// sequencing under the meeting's strategy, incremental transcript persistence
// and the final weighted synthesis, all while pushing ordered events to the
// run's single subscriber.
type Service struct {
	executor  *Executor
	augmenter *Augmenter
	store     repositories.ChatSessionRepository
	pacing    time.Duration
	logger    *zap.Logger
}

// NewService constructs the discussion orchestrator. pacing spaces out event
// delivery; zero disables it.
func NewService(
	llm ai.Client,
	augmenter *Augmenter,
	store repositories.ChatSessionRepository,
	pacing time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		executor:  NewExecutor(llm, logger),
		augmenter: augmenter,
		store:     store,
		pacing:    pacing,
		logger:    logger,
	}
}

// run is the per-invocation state shared by the strategy loops.
type run struct {
	session    *entities.DiscussionSession
	transcript *Transcript
	emitter    Emitter
	// system prompts per participant id, built once after the knowledge fetch
	prompts map[string]string
}

// Run drives a round-robin or opinionated discussion to completion, emitting
// events as it goes. The returned error is also surfaced to the subscriber as
// a terminal `error` event. Chat meetings are rejected here; they run through
// the chat usecase against a durable session.
func (s *Service) Run(ctx context.Context, meeting *entities.Meeting, emitter Emitter) error {
	strategy, err := entities.ParseStrategy(string(meeting.Strategy))
	if err != nil {
		return s.fail(emitter, apperrors.ErrInvalidStrategy(string(meeting.Strategy)))
	}
	if strategy == entities.StrategyChat {
		return s.fail(emitter, apperrors.ErrInvalidArgument("chat strategy is not streamable; use the chat endpoint"))
	}
	if len(meeting.Participants) == 0 {
		return s.fail(emitter, apperrors.ErrInvalidArgument(entities.ErrEmptyRoster.Error()))
	}

	s.logger.Info("discussion run starting",
		zap.String("meeting_id", meeting.ID),
		zap.String("strategy", string(strategy)),
		zap.Int("participants", len(meeting.Participants)),
		zap.Int("questions", len(meeting.Questions)),
	)

	session := entities.NewDiscussionSession(meeting)
	transcript := NewTranscript(entities.NewChatSession(meeting.ID, meeting.UserID), s.store)
	if err := transcript.Begin(ctx); err != nil {
		return s.fail(emitter, apperrors.ErrPersistenceFailed(err))
	}
	if err := transcript.EnsureSystemPrompt(ctx, transcriptPrompt(meeting)); err != nil {
		return s.fail(emitter, apperrors.ErrPersistenceFailed(err))
	}

	// All participant fetches run in parallel; the barrier
	// inside Augment guarantees no question is asked before every fetch has
	// completed or degraded.
	s.augmenter.Augment(ctx, meeting.UserID, meeting.Topic, meeting.Participants)

	r := &run{
		session:    session,
		transcript: transcript,
		emitter:    emitter,
		prompts:    make(map[string]string, len(meeting.Participants)),
	}
	for _, p := range meeting.Participants {
		r.prompts[p.ID] = BuildDiscussionPrompt(p, meeting.Topic, meeting.Participants)
	}

	// A nil question list must still serialize as an empty array.
	questions := session.Questions
	if questions == nil {
		questions = []string{}
	}
	if err := emitter.Emit(Event{Type: EventQuestions, Data: QuestionsPayload{Questions: questions}}); err != nil {
		return err
	}

	switch strategy {
	case entities.StrategyRoundRobin:
		err = s.runRoundRobin(ctx, r)
	case entities.StrategyOpinionated:
		err = s.runOpinionated(ctx, r)
	}
	if err != nil {
		return s.fail(emitter, err)
	}

	summary, err := s.runSynthesis(ctx, r)
	if err != nil {
		return s.fail(emitter, err)
	}
	if err := emitter.Emit(Event{Type: EventFinalResponse, Data: FinalResponsePayload{Response: summary}}); err != nil {
		return err
	}

	if err := emitter.Emit(Event{Type: EventComplete, Data: struct{}{}}); err != nil {
		return err
	}

	s.logger.Info("discussion run complete",
		zap.String("meeting_id", meeting.ID),
		zap.Int("turns", len(session.DiscussionLog)),
	)
	return nil
}

// executeTurn runs one (participant, question) exchange: announce, ask,
// record, persist, then emit the response. The answer lands in the rolling
// MessageHistory with the framing chosen by the strategy.
func (s *Service) executeTurn(
	ctx context.Context,
	r *run,
	p *entities.Participant,
	question string,
	strength *int,
	historyRole string,
	historyLine string,
) error {
	// A turn already in flight is allowed to finish; a disconnected
	// subscriber is observed here, before the next model call.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.emitter.Emit(Event{Type: EventNextParticipant, Data: NextParticipantPayload{
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
	}}); err != nil {
		return err
	}
	s.pause(ctx)

	history := make([]entities.TurnMessage, 0, len(r.session.MessageHistory)+1)
	history = append(history, entities.TurnMessage{Role: entities.RoleSystem, Content: r.prompts[p.ID]})
	history = append(history, r.session.MessageHistory...)

	answer, err := s.executor.Ask(ctx, history, question)
	if err != nil {
		return apperrors.ErrLLMFailed(err)
	}

	r.session.AppendLog(entities.LogEntry{
		ParticipantName: p.Name,
		Question:        question,
		Answer:          answer,
		Strength:        strength,
	})
	r.session.AppendHistory(historyRole, historyLine+answer)

	if err := r.transcript.AppendTurn(ctx, p.Name, question, answer); err != nil {
		return apperrors.ErrPersistenceFailed(err)
	}

	if err := r.emitter.Emit(Event{Type: EventParticipantResponse, Data: ParticipantResponsePayload{
		Participant: p.Name,
		Question:    question,
		Answer:      answer,
		Strength:    strength,
	}}); err != nil {
		return err
	}
	s.pause(ctx)

	return nil
}

// transcriptPrompt frames the durable transcript of a discussion run.
func transcriptPrompt(m *entities.Meeting) string {
	names := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("Panel discussion on the topic %q between %s, run with the %s strategy.",
		m.Topic, strings.Join(names, ", "), m.Strategy)
}

// fail emits the terminal error event and returns the error. Emission is
// best-effort: the subscriber may already be gone.
func (s *Service) fail(emitter Emitter, err error) error {
	s.logger.Error("discussion run failed", zap.Error(err))
	_ = emitter.Emit(Event{Type: EventError, Data: ErrorPayload{Detail: err.Error()}})
	return err
}

// pause inserts the turn pacing delay so event delivery stays observably
// incremental. Returns early on context cancellation.
func (s *Service) pause(ctx context.Context) {
	if s.pacing <= 0 {
		return
	}
	t := time.NewTimer(s.pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
