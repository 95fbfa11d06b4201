package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
)

type chatSessionRepository struct {
	db *gorm.DB
}

// NewChatSessionRepository returns the postgres-backed session store.
func NewChatSessionRepository(db *gorm.DB) repositories.ChatSessionRepository {
	return &chatSessionRepository{db: db}
}

func (r *chatSessionRepository) Create(ctx context.Context, session *entities.ChatSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

func (r *chatSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ChatSession, error) {
	var session entities.ChatSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat session: %w", err)
	}
	return &session, nil
}

func (r *chatSessionRepository) Update(ctx context.Context, session *entities.ChatSession) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update chat session: %w", err)
	}
	return nil
}

func (r *chatSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entities.ChatSession{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chat session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrSessionNotFound
	}
	return nil
}
