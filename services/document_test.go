package services

import (
	"strings"
	"testing"
	"time"

	"veever-server/models"
)

func TestDeriveTagsStructuredWins(t *testing.T) {
	preferences := map[string]bool{"cuisine-french": true, "cuisine-japanese": true}

	tags := DeriveTags([]string{"Italienne"}, preferences, CuisineOptions)
	if len(tags) != 1 || tags[0] != "Italienne" {
		t.Fatalf("structured field must win over the preference fallback, got %v", tags)
	}

	tags = DeriveTags(nil, preferences, CuisineOptions)
	if len(tags) != 2 {
		t.Fatalf("expected 2 fallback tags, got %v", tags)
	}
	// fallback keeps deck order
	if tags[0] != "Française" || tags[1] != "Japonaise" {
		t.Fatalf("expected deck-ordered labels, got %v", tags)
	}

	if tags := DeriveTags(nil, map[string]bool{"cuisine-french": false}, CuisineOptions); len(tags) != 0 {
		t.Fatalf("disliked options must not produce tags, got %v", tags)
	}
}

func buildDocumentFixture(itineraryType string) *models.CustomExperience {
	draft := testDraft(1, "client@veever.fr", itineraryType)
	experience := &models.CustomExperience{
		ID:                 12,
		UserID:             1,
		UserEmail:          "client@veever.fr",
		ItineraryType:      itineraryType,
		Restaurant:         marshalSection(draft.Restaurant),
		Activity:           marshalSection(draft.Activity),
		DateAndConstraints: marshalSection(draft.DateAndConstraints),
		Personalization:    marshalSection(draft.Personalization),
		Preferences:        marshalSection(draft.Preferences),
		Status:             models.StatusPending,
		CreatedAt:          time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC),
	}
	if draft.Accommodation != nil {
		experience.Accommodation = marshalSection(draft.Accommodation)
	}
	return experience
}

func TestDocumentIncludesAccommodationOnlyForHotelType(t *testing.T) {
	withHotel := BuildExperienceDocument(buildDocumentFixture(models.ItineraryTypeFull))
	if !strings.Contains(withHotel, "Hébergement") {
		t.Fatal("hotel itinerary document must carry the accommodation section")
	}
	if !strings.Contains(withHotel, "Hôtel + Restaurant + Activité") {
		t.Fatal("expected the localized itinerary type")
	}

	withoutHotel := BuildExperienceDocument(buildDocumentFixture(models.ItineraryTypeNoHotel))
	if strings.Contains(withoutHotel, "Hébergement") {
		t.Fatal("restaurant-activity document must not carry an accommodation section")
	}
}

func TestDocumentLocalizesValues(t *testing.T) {
	document := BuildExperienceDocument(buildDocumentFixture(models.ItineraryTypeFull))

	if !strings.Contains(document, "Économique") {
		t.Fatal("expected the localized economic budget")
	}
	if !strings.Contains(document, "En attente") {
		t.Fatal("expected the localized status")
	}
	if !strings.Contains(document, "Centre-ville") {
		t.Fatal("expected the localized zone")
	}
	if !strings.Contains(document, "12/05/2025") {
		t.Fatal("expected the dd/mm/yyyy creation date")
	}
	if !strings.Contains(document, "01/06/2025") {
		t.Fatal("expected the dd/mm/yyyy desired date")
	}
}

func TestDocumentFallsBackToPreferences(t *testing.T) {
	experience := buildDocumentFixture(models.ItineraryTypeNoHotel)
	// no structured cuisines: the swipe preferences drive the tags
	experience.Restaurant = marshalSection(models.RestaurantSection{Ambiance: "intimate", Budget: "economic"})
	experience.Preferences = marshalSection(map[string]bool{"cuisine-lebanese": true})

	document := BuildExperienceDocument(experience)
	if !strings.Contains(document, "Libanaise") {
		t.Fatal("expected the preference-derived cuisine tag")
	}
}
