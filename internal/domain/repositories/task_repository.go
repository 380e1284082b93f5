package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	// CreateBatch inserts an extraction batch with its assignee links in one
	// transaction. Either every row lands or none does.
	CreateBatch(ctx context.Context, tasks []*entities.Task) error

	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListPending returns tasks whose recommendation is still pending,
	// optionally scoped to one meeting
	ListPending(ctx context.Context, meetingID *uuid.UUID) ([]*entities.Task, error)

	// ListByMeeting returns every task of a meeting
	ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error)

	// CountByMeeting counts tasks of a meeting
	CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int64, error)

	// UpdateRecommendationState moves the fast-path flag
	UpdateRecommendationState(ctx context.Context, taskID uuid.UUID, state entities.RecommendationState) error
}
