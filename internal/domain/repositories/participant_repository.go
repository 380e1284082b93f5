package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

// ParticipantRepository defines read access to the fixed participant roster
type ParticipantRepository interface {
	// ListAll retrieves the full roster
	ListAll(ctx context.Context) ([]*entities.Participant, error)

	// FindByID retrieves a participant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error)
}
