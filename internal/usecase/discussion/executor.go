package discussion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/pkg/ai"
)

// Executor issues language-model requests for individual conversational
// turns.
type Executor struct {
	llm    ai.Client
	logger *zap.Logger
}

// NewExecutor constructs a turn executor over a language-model capability.
func NewExecutor(llm ai.Client, logger *zap.Logger) *Executor {
	return &Executor{llm: llm, logger: logger}
}

// Ask wraps the question in a moderator-framed instruction, appends it to a
// copy of the accumulated history, issues one model call and returns the
// trimmed answer. The caller's history slice is never mutated.
func (e *Executor) Ask(ctx context.Context, history []entities.TurnMessage, question string) (string, error) {
	messages := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ai.Message{
		Role:    entities.RoleUser,
		Content: fmt.Sprintf("%s: %s", ModeratorName, question),
	})

	answer, _, err := e.llm.Send(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("turn execution failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// GaugeOpinion asks a persona to self-rate its interest in a question on a
// 0-10 scale. Non-numeric model output means "no opinion" and yields 0; only
// a failed model call is an error. Downstream ordering depends on the zero
// value meaning "skip", so malformed output is deliberately not rejected.
func (e *Executor) GaugeOpinion(ctx context.Context, p *entities.Participant, question string) (int, error) {
	messages := []ai.Message{
		{
			Role:    entities.RoleSystem,
			Content: fmt.Sprintf("You are %s. %s Your role is: %s.", p.Name, p.PersonaDescription, p.Role),
		},
		{
			Role: entities.RoleUser,
			Content: fmt.Sprintf(
				"On a scale of 0 to 10, how strong is your opinion on the following question? "+
					"Respond with a single integer and nothing else. 0 means you have no opinion.\n\nQuestion: %s",
				question,
			),
		},
	}

	raw, _, err := e.llm.Send(ctx, messages)
	if err != nil {
		return 0, fmt.Errorf("opinion gauge failed: %w", err)
	}

	strength, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("non-numeric opinion response treated as no opinion",
				zap.String("participant_name", p.Name),
				zap.String("response", raw),
			)
		}
		return 0, nil
	}
	if strength < 0 {
		strength = 0
	}
	if strength > 10 {
		strength = 10
	}
	return strength, nil
}
