package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-actions/internal/domain/repositories"
)

type recommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *gorm.DB) repo.RecommendationRepository {
	return &recommendationRepository{db: db}
}

// InsertIfAbsent inserts unless a row for the same todo_id exists. The
// unique index on todo_id turns concurrent duplicate generation into a
// harmless no-op on every caller but one.
func (r *recommendationRepository) InsertIfAbsent(ctx context.Context, rec *entities.Recommendation) (bool, error) {
	if rec == nil {
		return false, errors.New("recommendation cannot be nil")
	}

	q := `INSERT INTO todo_ai_recommendations (id, todo_id, recommendation_text, email_draft, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (todo_id) DO NOTHING`

	now := time.Now()
	result := r.db.WithContext(ctx).Exec(q, rec.ID, rec.TodoID, rec.RecommendationText, rec.EmailDraft, now, now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Upsert overwrites an existing recommendation. Only the explicit user
// edit path goes through here.
func (r *recommendationRepository) Upsert(ctx context.Context, rec *entities.Recommendation) error {
	if rec == nil {
		return errors.New("recommendation cannot be nil")
	}

	q := `INSERT INTO todo_ai_recommendations (id, todo_id, recommendation_text, email_draft, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, NOW())
        ON CONFLICT (todo_id) DO UPDATE SET recommendation_text = EXCLUDED.recommendation_text, email_draft = EXCLUDED.email_draft, updated_at = NOW()`

	return r.db.WithContext(ctx).Exec(q, rec.ID, rec.TodoID, rec.RecommendationText, rec.EmailDraft, time.Now()).Error
}

func (r *recommendationRepository) GetByTaskID(ctx context.Context, taskID uuid.UUID) (*entities.Recommendation, error) {
	var rec entities.Recommendation
	if err := r.db.WithContext(ctx).Where("todo_id = ?", taskID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CountByMeeting counts recommendations attached to a meeting's tasks
func (r *recommendationRepository) CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	q := `SELECT COUNT(r.todo_id)
        FROM todo_ai_recommendations r
        JOIN todos t ON t.id = r.todo_id
        WHERE t.meeting_id = ?`
	if err := r.db.WithContext(ctx).Raw(q, meetingID).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
