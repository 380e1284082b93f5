package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
)

type taskRepository struct {
	db  *gorm.DB
	bus *cache.RedisClient
}

// NewTaskRepository creates a new task repository backed by GORM. The bus
// is optional; when present, task mutations publish live counter events.
func NewTaskRepository(db *gorm.DB, bus *cache.RedisClient) repo.TaskRepository {
	return &taskRepository{db: db, bus: bus}
}

// CreateBatch inserts an extraction batch in one transaction. Assignee
// links go through the join table explicitly so a bad participant id rolls
// the whole batch back.
func (r *taskRepository) CreateBatch(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Omit("Assignees").Create(task).Error; err != nil {
				return err
			}
			for _, assignee := range task.Assignees {
				q := `INSERT INTO todo_participants (task_id, participant_id)
        VALUES (?, ?)
        ON CONFLICT DO NOTHING`
				if err := tx.Exec(q, task.ID, assignee.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, task := range tasks {
		r.publish(ctx, "created", task)
	}
	return nil
}

func (r *taskRepository) Create(ctx context.Context, task *entities.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if err := r.db.WithContext(ctx).Omit("Assignees").Create(task).Error; err != nil {
		return err
	}
	r.publish(ctx, "created", task)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *entities.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"description":          task.Description,
			"status":               task.Status,
			"recommendation_state": task.RecommendationState,
		}).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&entities.Task{}, "id = ?", id).Error; err != nil {
		return err
	}
	r.publish(ctx, "deleted", task)
	return nil
}

func (r *taskRepository) ListPending(ctx context.Context, meetingID *uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	query := r.db.WithContext(ctx).
		Where("recommendation_state = ?", entities.RecommendationPending)
	if meetingID != nil {
		query = query.Where("meeting_id = ?", *meetingID)
	}
	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignees").
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CountByMeeting(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) UpdateRecommendationState(ctx context.Context, taskID uuid.UUID, state entities.RecommendationState) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ?", taskID).
		Update("recommendation_state", state).Error
	if err != nil {
		return err
	}
	if state == entities.RecommendationDone && r.bus != nil {
		r.bus.PublishTaskEvent(ctx, cache.TaskEvent{
			Event:  "recommendation_done",
			TaskID: taskID.String(),
		})
	}
	return nil
}

func (r *taskRepository) publish(ctx context.Context, event string, task *entities.Task) {
	if r.bus == nil {
		return
	}
	evt := cache.TaskEvent{Event: event, TaskID: task.ID.String()}
	if task.MeetingID != nil {
		evt.MeetingID = task.MeetingID.String()
	}
	r.bus.PublishTaskEvent(ctx, evt)
}
