package discussion

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// runSynthesis condenses the finished discussion into one weighted summary.
// The whole discussion log is replayed into a single model call whose system
// prompt spells out each participant's weight, so louder voices count for
// more without any post-hoc arithmetic here.
func (s *Service) runSynthesis(ctx context.Context, r *run) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	history := make([]entities.TurnMessage, 0, len(r.session.DiscussionLog)+1)
	history = append(history, entities.TurnMessage{
		Role:    entities.RoleSystem,
		Content: buildSynthesisPrompt(r.session),
	})
	for _, entry := range r.session.DiscussionLog {
		content := fmt.Sprintf("[%s] %s: %s", entry.Question, entry.ParticipantName, entry.Answer)
		history = append(history, entities.TurnMessage{Role: entities.RoleAssistant, Content: content})
	}

	summary, err := s.executor.Ask(ctx, history,
		"The discussion has concluded. Summarize the pros, cons, arguments and key contributions into one final response, "+
			"weighting each member's views in proportion to the weights listed above.")
	if err != nil {
		return "", apperrors.ErrLLMFailed(err)
	}

	if err := r.transcript.AppendSummary(ctx, summary); err != nil {
		return "", apperrors.ErrPersistenceFailed(err)
	}
	return summary, nil
}

func buildSynthesisPrompt(session *entities.DiscussionSession) string {
	var b strings.Builder
	b.WriteString("You are the moderator of a panel discussion on the topic: ")
	b.WriteString(session.Topic)
	b.WriteString(".\n\n")
	b.WriteString("The panel has finished. Synthesize the discussion into a single coherent answer for the person who convened it.\n\n")
	b.WriteString("Panel members, with the weight their views carry in the synthesis:\n")
	for _, p := range session.Participants {
		fmt.Fprintf(&b, "- %s (%s), weight %d, speaking order %d\n", p.Name, p.Role, p.Weight, p.Order)
	}
	b.WriteString("\nThe messages that follow are the complete discussion log, each tagged with the question it answers.\n")
	b.WriteString("Weigh each member's contributions in proportion to their weight: a weight-10 view should dominate a weight-1 view where they conflict.\n")
	b.WriteString("Do not mention the weights themselves. Respond with the synthesis only.")
	return b.String()
}
