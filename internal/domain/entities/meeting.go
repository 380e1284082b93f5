package entities

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is the unit the pipeline works on. Transcript and Summary stay
// nil until the corresponding pipeline stage has produced them.
type Meeting struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null"`
	RawTranscript   *string   `json:"raw_transcript,omitempty" gorm:"type:text"`
	Transcript      *string   `json:"transcript,omitempty" gorm:"type:text"` // cleaned text
	Summary         *string   `json:"summary,omitempty" gorm:"type:text"`
	AudioObjectKey  *string   `json:"audio_object_key,omitempty" gorm:"type:varchar(512)"`
	TranscriptJobID *string   `json:"transcript_job_id,omitempty" gorm:"type:varchar(255);index"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new meeting
func NewMeeting(title string) *Meeting {
	return &Meeting{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// HasTranscript reports whether the cleaned transcript has been produced
func (m *Meeting) HasTranscript() bool {
	return m.Transcript != nil && *m.Transcript != ""
}

// HasSummary reports whether the summary has been produced
func (m *Meeting) HasSummary() bool {
	return m.Summary != nil && *m.Summary != ""
}
