package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// MeetingRepository defines persistence operations for meetings
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	GetByTranscriptJobID(ctx context.Context, jobID string) (*entities.Meeting, error)

	// SetAudioObject records the uploaded audio location and the STT job id
	SetAudioObject(ctx context.Context, id uuid.UUID, objectKey, transcriptJobID string) error

	// SaveRawTranscript stores the raw STT output
	SaveRawTranscript(ctx context.Context, id uuid.UUID, raw string) error

	// SaveProcessed stores the cleaned transcript and summary together
	SaveProcessed(ctx context.Context, id uuid.UUID, transcript, summary string) error

	// UpdateSummary rewrites the summary (orchestrator summary handler)
	UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error
}
