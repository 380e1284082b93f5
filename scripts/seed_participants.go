package main

import (
	"fmt"
	"log"

	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-actions/pkg/jwt"
)

// Seeds a development roster and prints a bearer token for manual API calls.
func main() {
	log.Println("🚀 Seeding development participants...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	roster := []*entities.Participant{
		newParticipant("Alice Dupont", "alice@example.com", "Alice D."),
		newParticipant("Benoît Martin", "benoit@example.com", "Ben"),
		newParticipant("Chloé Nguyen", "chloe@example.com"),
	}

	for _, p := range roster {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(p).Error
		if err != nil {
			log.Fatalf("Failed to seed participant %s: %v", p.Name, err)
		}
		log.Printf("✅ %s <%s>", p.Name, p.Email)
	}

	// Issue a dev token for manual testing
	jwtManager := pkgjwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	token, err := jwtManager.GenerateAccessToken(roster[0].ID, roster[0].Email, "admin")
	if err != nil {
		log.Fatalf("Failed to generate dev token: %v", err)
	}

	fmt.Println("\n🔑 Dev bearer token:")
	fmt.Println(token)
}

func newParticipant(name, email string, aliases ...string) *entities.Participant {
	p := entities.NewParticipant(name, email)
	p.Aliases = aliases
	return p
}
