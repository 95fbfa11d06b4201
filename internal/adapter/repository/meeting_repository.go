package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/internal/domain/repositories"
)

// meetingRow is the persisted shape of a meeting. Questions and the roster
// live in jsonb columns; the roster is denormalized because the discussion
// engine always reads the whole panel at once.
type meetingRow struct {
	ID           string                              `gorm:"primaryKey"`
	UserID       string                              `gorm:"column:user_id"`
	Topic        string                              `gorm:"column:topic"`
	Strategy     string                              `gorm:"column:strategy"`
	Questions    datatypes.JSONSlice[string]         `gorm:"column:questions"`
	Participants datatypes.JSONSlice[participantRow] `gorm:"column:participants"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (meetingRow) TableName() string {
	return "meetings"
}

type participantRow struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PersonaDescription string `json:"persona_description"`
	Role               string `json:"role"`
	Weight             int    `json:"weight"`
	Order              int    `json:"order"`
}

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository returns the postgres-backed meeting resolver. Meeting
// construction and editing happen elsewhere; this adapter only hydrates.
func NewMeetingRepository(db *gorm.DB) repositories.MeetingResolver {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Resolve(ctx context.Context, meetingID, userID string) (*entities.Meeting, error) {
	var row meetingRow
	err := r.db.WithContext(ctx).First(&row, "id = ? AND user_id = ?", meetingID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve meeting: %w", err)
	}

	strategy, err := entities.ParseStrategy(row.Strategy)
	if err != nil {
		return nil, err
	}

	participants := make([]*entities.Participant, 0, len(row.Participants))
	for _, p := range row.Participants {
		participants = append(participants, &entities.Participant{
			ID:                 p.ID,
			Name:               p.Name,
			PersonaDescription: p.PersonaDescription,
			Role:               p.Role,
			Weight:             p.Weight,
			Order:              p.Order,
		})
	}
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Order < participants[j].Order
	})

	return &entities.Meeting{
		ID:           row.ID,
		UserID:       row.UserID,
		Topic:        row.Topic,
		Strategy:     strategy,
		Questions:    row.Questions,
		Participants: participants,
	}, nil
}
