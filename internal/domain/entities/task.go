package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationState tracks where a task stands in recommendation
// generation. It is a fast-path cache: the authoritative signal for "done"
// is the existence of a Recommendation row.
type RecommendationState string

const (
	// RecommendationPending means generation has not succeeded yet
	RecommendationPending RecommendationState = "pending"
	// RecommendationSkipped means the model judged no recommendation valuable
	RecommendationSkipped RecommendationState = "skipped"
	// RecommendationDone means a recommendation row was persisted
	RecommendationDone RecommendationState = "done"
)

// TaskStatus represents the lifecycle status of a task
type TaskStatus string

const (
	TaskStatusConfirmed TaskStatus = "confirmed"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task is one assignable action item, usually derived from a meeting.
// MeetingID is nullable: chat-driven edits can create tasks outside any
// meeting.
type Task struct {
	ID                  uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID           *uuid.UUID          `json:"meeting_id,omitempty" gorm:"type:uuid;index"`
	Description         string              `json:"description" gorm:"type:text;not null"`
	Status              TaskStatus          `json:"status" gorm:"type:varchar(50);not null;default:'confirmed'"`
	RecommendationState RecommendationState `json:"recommendation_state" gorm:"type:varchar(20);not null;index;default:'pending'"`

	Assignees []Participant `json:"assignees,omitempty" gorm:"many2many:todo_participants"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "todos"
}

// NewTask creates a new task for a meeting
func NewTask(meetingID *uuid.UUID, description string) *Task {
	return &Task{
		ID:                  uuid.New(),
		MeetingID:           meetingID,
		Description:         description,
		Status:              TaskStatusConfirmed,
		RecommendationState: RecommendationPending,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
}

// NeedsRecommendation reports whether the task should be picked up by the
// recommendation engine or the retry scanner
func (t *Task) NeedsRecommendation() bool {
	return t.RecommendationState == RecommendationPending
}
