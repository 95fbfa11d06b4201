package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/infrastructure/cache"
	"github.com/hybridtechie/roundtable-ai/internal/usecase/discussion"
)

// CachedSearcher caches search results per (participant, query). Cache
// problems never fail a lookup; the underlying searcher is always the
// fallback.
type CachedSearcher struct {
	inner  discussion.KnowledgeSearcher
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSearcher(inner discussion.KnowledgeSearcher, store cache.Store, ttl time.Duration, logger *zap.Logger) *CachedSearcher {
	return &CachedSearcher{inner: inner, store: store, ttl: ttl, logger: logger}
}

func (c *CachedSearcher) Search(ctx context.Context, userID, participantID, query string, topK int) ([]entities.KnowledgeItem, error) {
	key := fmt.Sprintf("knowledge:%s:%s:%s:%d", userID, participantID, query, topK)

	if data, err := c.store.Get(ctx, key); err == nil {
		var items []entities.KnowledgeItem
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = c.store.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn("knowledge cache read failed", zap.Error(err))
	}

	items, err := c.inner.Search(ctx, userID, participantID, query, topK)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("knowledge cache write failed", zap.Error(err))
		}
	}
	return items, nil
}
