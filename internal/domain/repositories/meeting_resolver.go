package repositories

import (
	"context"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
)

// MeetingResolver supplies the fully-hydrated meeting (participants with
// persona, role, weight and order, plus strategy, topic and questions) for a
// meeting id and user id. Meeting construction and CRUD live outside this
// service.
type MeetingResolver interface {
	Resolve(ctx context.Context, meetingID, userID string) (*entities.Meeting, error)
}
