package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// ChatSessionRepository is the durable session store consumed by the
// orchestrator. Writes to a given session id are issued sequentially by each
// run; the store must serialize writes per session across runs.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entities.ChatSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ChatSession, error)
	Update(ctx context.Context, session *entities.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
}
