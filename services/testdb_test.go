package services

import (
	"testing"

	"veever-server/models"
	"veever-server/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points storage.DB at a fresh in-memory sqlite database.
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrator().DropTable(
		&models.User{},
		&models.Partner{},
		&models.Itinerary{},
		&models.CustomExperience{},
		&models.ExperienceNote{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.Itinerary{},
		&models.CustomExperience{},
		&models.ExperienceNote{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	storage.DB = db
}

func testDraft(userID uint, email, itineraryType string) *ExperienceDraft {
	draft := &ExperienceDraft{
		UserID:        userID,
		UserEmail:     email,
		ItineraryType: itineraryType,
		Restaurant: models.RestaurantSection{
			Cuisines: []string{"Italienne"},
			Ambiance: "intimate",
			Budget:   "economic",
		},
		Activity: models.ActivitySection{
			Types:     []string{"Escape game"},
			Intensity: "light",
			Budget:    "economic",
		},
		DateAndConstraints: models.DateConstraintsSection{
			Date: "2025-06-01",
			Time: "19:00",
			Zone: "center",
		},
		Personalization: models.PersonalizationSection{
			GroupDynamics: "friends",
			Vibe:          "chill",
		},
		Preferences: map[string]bool{"cuisine-italian": true},
	}
	if itineraryType == models.ItineraryTypeFull {
		draft.Accommodation = &models.AccommodationSection{
			Types:  []string{"boutique-hotel"},
			Budget: "premium",
			Style:  "romantic",
		}
	}
	return draft
}
