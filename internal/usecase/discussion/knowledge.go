package discussion

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// KnowledgeSearcher is the external knowledge-search capability.
type KnowledgeSearcher interface {
	Search(ctx context.Context, userID, participantID, query string, topK int) ([]entities.KnowledgeItem, error)
}

// Augmenter retrieves and filters knowledge snippets for discussion
// participants. A per-participant search failure degrades to an empty
// knowledge list rather than aborting the batch: a persona participates
// without grounding instead of blocking the whole discussion.
type Augmenter struct {
	searcher  KnowledgeSearcher
	topK      int
	threshold float64
	logger    *zap.Logger
}

// NewAugmenter constructs an Augmenter. topK and threshold default to 3 and
// 0.80 when out of range.
func NewAugmenter(searcher KnowledgeSearcher, topK int, threshold float64, logger *zap.Logger) *Augmenter {
	if topK <= 0 {
		topK = 3
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.80
	}
	return &Augmenter{
		searcher:  searcher,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Augment fetches knowledge for every participant concurrently and populates
// each participant's RelatedKnowledge with the filtered results. It returns
// only after every fetch has completed, successfully or degraded; no turn may
// start before this barrier releases.
func (a *Augmenter) Augment(ctx context.Context, userID, topic string, participants []*entities.Participant) {
	var wg sync.WaitGroup
	for _, p := range participants {
		wg.Add(1)
		go func(p *entities.Participant) {
			defer wg.Done()
			p.RelatedKnowledge = a.ForParticipant(ctx, userID, topic, p)
		}(p)
	}
	wg.Wait()
}

// ForParticipant fetches and filters knowledge for a single participant.
// Failures degrade to an empty list and are logged, never propagated.
func (a *Augmenter) ForParticipant(ctx context.Context, userID, query string, p *entities.Participant) []entities.KnowledgeItem {
	items, err := a.searcher.Search(ctx, userID, p.ID, query, a.topK)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("knowledge search failed, participant proceeds without grounding",
				zap.String("participant_id", p.ID),
				zap.String("participant_name", p.Name),
				zap.Error(err),
			)
		}
		return nil
	}
	return a.filter(items)
}

// filter keeps only items at or above the similarity threshold.
func (a *Augmenter) filter(items []entities.KnowledgeItem) []entities.KnowledgeItem {
	var kept []entities.KnowledgeItem
	for _, item := range items {
		if item.SimilarityScore >= a.threshold {
			kept = append(kept, item)
		}
	}
	return kept
}
