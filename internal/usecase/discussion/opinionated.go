package discussion

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	apperrors "github.com/hybridtechie/roundtable-ai/errors"
	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

type opinion struct {
	participant *entities.Participant
	strength    int
}

// runOpinionated polls every participant for opinion strength before each
// question, then hands out turns strongest-first. Participants reporting zero
// sit the question out entirely. Ties keep roster order.
func (s *Service) runOpinionated(ctx context.Context, r *run) error {
	for _, question := range r.session.Questions {
		opinions, err := s.gaugeAll(ctx, r, question)
		if err != nil {
			return err
		}

		sort.SliceStable(opinions, func(i, j int) bool {
			return opinions[i].strength > opinions[j].strength
		})

		for _, o := range opinions {
			if o.strength == 0 {
				s.logger.Debug("participant skipped question",
					zap.String("participant", o.participant.Name),
					zap.String("question", question),
				)
				continue
			}
			strength := o.strength
			line := fmt.Sprintf("%s: ", o.participant.Name)
			if err := s.executeTurn(ctx, r, o.participant, question, &strength, entities.RoleAssistant, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) gaugeAll(ctx context.Context, r *run, question string) ([]opinion, error) {
	opinions := make([]opinion, 0, len(r.session.Participants))
	for _, p := range r.session.Participants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		strength, err := s.executor.GaugeOpinion(ctx, p, question)
		if err != nil {
			return nil, apperrors.ErrLLMFailed(err)
		}
		opinions = append(opinions, opinion{participant: p, strength: strength})
	}
	return opinions, nil
}
