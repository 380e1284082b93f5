package meeting

import (
	"time"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	HasTranscript   bool      `json:"has_transcript"`
	HasSummary      bool      `json:"has_summary"`
	Summary         *string   `json:"summary,omitempty"`
	TranscriptJobID *string   `json:"transcript_job_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TaskResponse represents a task in responses
type TaskResponse struct {
	ID                  string    `json:"id"`
	MeetingID           *string   `json:"meeting_id,omitempty"`
	Description         string    `json:"description"`
	Status              string    `json:"status"`
	RecommendationState string    `json:"recommendation_state"`
	Assignees           []string  `json:"assignees"`
	CreatedAt           time.Time `json:"created_at"`
}

// RecommendationResponse represents a generated recommendation
type RecommendationResponse struct {
	TaskID             string    `json:"task_id"`
	RecommendationText string    `json:"recommendation_text"`
	HasEmailDraft      bool      `json:"has_email_draft"`
	CreatedAt          time.Time `json:"created_at"`
}

// GenerateOutcomeResponse reports what the recommendation engine did
type GenerateOutcomeResponse struct {
	Outcome        string                  `json:"outcome"`
	Recommendation *RecommendationResponse `json:"recommendation,omitempty"`
}

// ExtractResponse lists the tasks created by one extraction run
type ExtractResponse struct {
	MeetingID string   `json:"meeting_id"`
	TaskIDs   []string `json:"task_ids"`
}

// RetryResponse summarizes one retry sweep
type RetryResponse struct {
	Attempted int `json:"attempted"`
	Repaired  int `json:"repaired"`
}

// ChatResponse is the orchestrator's synthesized reply
type ChatResponse struct {
	Response string            `json:"response"`
	Actions  []entities.Action `json:"actions"`
}

// MessageResponse carries the reply plus the pre-filter verdict
type MessageResponse struct {
	Response   string            `json:"response"`
	Actions    []entities.Action `json:"actions"`
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Reasoning  string            `json:"reasoning"`
}

// UploadAudioResponse acknowledges an audio submission
type UploadAudioResponse struct {
	MeetingID       string `json:"meeting_id"`
	ObjectKey       string `json:"object_key"`
	TranscriptJobID string `json:"transcript_job_id"`
}

// EmailResponse acknowledges a dispatched email draft
type EmailResponse struct {
	TaskID string `json:"task_id"`
	SentTo string `json:"sent_to"`
}

// FromMeeting maps a meeting entity to its response shape
func FromMeeting(m *entities.Meeting) *MeetingResponse {
	return &MeetingResponse{
		ID:              m.ID.String(),
		Title:           m.Title,
		HasTranscript:   m.HasTranscript(),
		HasSummary:      m.HasSummary(),
		Summary:         m.Summary,
		TranscriptJobID: m.TranscriptJobID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromTask maps a task entity to its response shape
func FromTask(t *entities.Task) *TaskResponse {
	assignees := make([]string, 0, len(t.Assignees))
	for _, p := range t.Assignees {
		assignees = append(assignees, p.Name)
	}

	var meetingID *string
	if t.MeetingID != nil {
		id := t.MeetingID.String()
		meetingID = &id
	}

	return &TaskResponse{
		ID:                  t.ID.String(),
		MeetingID:           meetingID,
		Description:         t.Description,
		Status:              string(t.Status),
		RecommendationState: string(t.RecommendationState),
		Assignees:           assignees,
		CreatedAt:           t.CreatedAt,
	}
}

// FromRecommendation maps a recommendation entity to its response shape
func FromRecommendation(r *entities.Recommendation) *RecommendationResponse {
	return &RecommendationResponse{
		TaskID:             r.TodoID.String(),
		RecommendationText: r.RecommendationText,
		HasEmailDraft:      r.EmailDraft != nil && *r.EmailDraft != "",
		CreatedAt:          r.CreatedAt,
	}
}
