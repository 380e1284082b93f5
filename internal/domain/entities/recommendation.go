package entities

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is AI-generated guidance attached 1:1 to a task. The
// unique index on TodoID is what makes concurrent generation safe.
type Recommendation struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TodoID             uuid.UUID `json:"todo_id" gorm:"type:uuid;not null;uniqueIndex"`
	RecommendationText string    `json:"recommendation_text" gorm:"type:text;not null"`
	EmailDraft         *string   `json:"email_draft,omitempty" gorm:"type:text"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Recommendation) TableName() string {
	return "todo_ai_recommendations"
}

// NewRecommendation creates a new recommendation for a task
func NewRecommendation(todoID uuid.UUID, text string, emailDraft *string) *Recommendation {
	return &Recommendation{
		ID:                 uuid.New(),
		TodoID:             todoID,
		RecommendationText: text,
		EmailDraft:         emailDraft,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
}
