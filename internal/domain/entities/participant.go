package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Participant is reference data for assignment matching. The roster is
// fixed; this subsystem never creates or deletes rows.
type Participant struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name  string    `json:"name" gorm:"type:varchar(255);not null"`
	Email string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`

	// Known spelling and nickname variants, passed to the extraction
	// prompt as an alias table.
	Aliases datatypes.JSONSlice[string] `json:"aliases,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Participant) TableName() string {
	return "participants"
}

// NewParticipant creates a roster entry
func NewParticipant(name, email string) *Participant {
	return &Participant{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// AllNames returns the display name plus every known variant
func (p *Participant) AllNames() []string {
	names := make([]string, 0, len(p.Aliases)+1)
	names = append(names, p.Name)
	names = append(names, p.Aliases...)
	return names
}
