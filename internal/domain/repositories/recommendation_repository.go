package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// RecommendationRepository defines persistence operations for recommendations
type RecommendationRepository interface {
	// InsertIfAbsent inserts the row unless one already exists for the same
	// todo_id. Returns whether this call inserted. This is the idempotency
	// guard: concurrency safety comes from the unique key, not from locking.
	InsertIfAbsent(ctx context.Context, rec *entities.Recommendation) (bool, error)

	// Upsert overwrites an existing recommendation (explicit user edit path)
	Upsert(ctx context.Context, rec *entities.Recommendation) error

	GetByTaskID(ctx context.Context, taskID uuid.UUID) (*entities.Recommendation, error)

	// CountByMeeting counts recommendations attached to a meeting's tasks
	CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int64, error)
}
