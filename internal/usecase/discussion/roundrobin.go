package discussion

import (
	"context"
	"fmt"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// runRoundRobin walks the questions in order and gives every participant a
// turn on each, in roster order. Answers enter the rolling history as
// moderator-relayed user messages, so each participant hears its peers
// through the moderator rather than as fellow assistants.
func (s *Service) runRoundRobin(ctx context.Context, r *run) error {
	for _, question := range r.session.Questions {
		for _, p := range r.session.Participants {
			line := fmt.Sprintf("Moderator: %s answered: ", p.Name)
			if err := s.executeTurn(ctx, r, p, question, nil, entities.RoleUser, line); err != nil {
				return err
			}
		}
	}
	return nil
}
