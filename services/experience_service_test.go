package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"veever-server/models"
)

func TestCreateStampsPendingAndHistory(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if experience.ID == 0 {
		t.Fatal("expected a store-assigned id")
	}
	if experience.Status != models.StatusPending {
		t.Fatalf("expected status pending, got %q", experience.Status)
	}

	history := experience.History()
	if len(history) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(history))
	}
	if history[0].Status != models.StatusPending {
		t.Fatalf("expected first history entry pending, got %q", history[0].Status)
	}
	if history[0].UpdatedBy != "user@veever.fr" {
		t.Fatalf("expected first history entry by owner, got %q", history[0].UpdatedBy)
	}
	if !history[0].Timestamp.Equal(experience.CreatedAt) {
		t.Fatal("first history entry should carry the creation timestamp")
	}
}

func TestCreateAccommodationOnlyForHotelItineraries(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	withHotel, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeFull))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if withHotel.DecodeAccommodation() == nil {
		t.Fatal("hotel itinerary should carry an accommodation section")
	}

	// the draft carries an accommodation section on purpose; Create must drop it
	draft := testDraft(2, "other@veever.fr", models.ItineraryTypeNoHotel)
	draft.Accommodation = &models.AccommodationSection{Types: []string{"hotel"}, Budget: "economic", Style: "cosy"}
	withoutHotel, err := service.Create(draft)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if withoutHotel.DecodeAccommodation() != nil {
		t.Fatal("restaurant-activity itinerary must not carry an accommodation section")
	}
}

func TestCreateRejectsHotelItineraryWithoutAccommodation(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	draft := testDraft(1, "user@veever.fr", models.ItineraryTypeFull)
	draft.Accommodation = nil
	if _, err := service.Create(draft); !errors.Is(err, ErrAccommodationRequired) {
		t.Fatalf("expected ErrAccommodationRequired, got %v", err)
	}
}

func TestUpdateCannotSwitchToHotelTypeWithoutAccommodation(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = service.Update(experience.ID, &ExperiencePatch{
		UserID:        1,
		ItineraryType: models.ItineraryTypeFull,
	})
	if !errors.Is(err, ErrAccommodationRequired) {
		t.Fatalf("expected ErrAccommodationRequired, got %v", err)
	}

	stored, err := service.GetByID(experience.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ItineraryType != models.ItineraryTypeNoHotel || stored.DecodeAccommodation() != nil {
		t.Fatal("rejected patch must leave the record unchanged")
	}

	// carrying the section alongside the type change is accepted
	updated, err := service.Update(experience.ID, &ExperiencePatch{
		UserID:        1,
		ItineraryType: models.ItineraryTypeFull,
		Accommodation: &models.AccommodationSection{Types: []string{"boutique-hotel"}, Budget: "premium", Style: "romantic"},
	})
	if err != nil {
		t.Fatalf("update with accommodation failed: %v", err)
	}
	if updated.DecodeAccommodation() == nil {
		t.Fatal("expected the accommodation section on the updated record")
	}
}

func TestSetStatusAppendsWithoutRewritingHistory(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	statuses := []string{models.StatusProcessing, models.StatusCompleted, models.StatusCancelled}
	for i, status := range statuses {
		before, err := service.GetByID(experience.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		priorRaw := make([]byte, len(before.StatusHistory))
		copy(priorRaw, before.StatusHistory)

		updated, err := service.SetStatus(experience.ID, status, "admin@veever.fr", "")
		if err != nil {
			t.Fatalf("set status %q failed: %v", status, err)
		}

		history := updated.History()
		if len(history) != i+2 {
			t.Fatalf("expected %d history entries, got %d", i+2, len(history))
		}
		if history[len(history)-1].Status != status {
			t.Fatalf("expected last entry %q, got %q", status, history[len(history)-1].Status)
		}
		// prior entries are byte-identical, never mutated
		if !bytes.HasPrefix(bytes.TrimSuffix(updated.StatusHistory, []byte("]")), bytes.TrimSuffix(priorRaw, []byte("]"))) {
			t.Fatal("prior history entries were rewritten")
		}
	}
}

func TestUpdateRejectsForeignUser(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = service.Update(experience.ID, &ExperiencePatch{
		UserID:          99,
		Personalization: &models.PersonalizationSection{GroupDynamics: "family", Vibe: "festive"},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	stored, err := service.GetByID(experience.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.DecodePersonalization().GroupDynamics != "friends" {
		t.Fatal("rejected update must leave the record unchanged")
	}
}

func TestUpdateRequiresPendingStatus(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	for _, status := range []string{models.StatusProcessing, models.StatusCompleted, models.StatusCancelled} {
		experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if _, err := service.SetStatus(experience.ID, status, "admin@veever.fr", ""); err != nil {
			t.Fatalf("set status failed: %v", err)
		}

		_, err = service.Update(experience.ID, &ExperiencePatch{
			UserID:     1,
			Restaurant: &models.RestaurantSection{Budget: "premium"},
		})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("status %q: expected ErrInvalidState, got %v", status, err)
		}

		// admin status calls keep working regardless of current status
		if _, err := service.SetStatus(experience.ID, models.StatusCancelled, "admin@veever.fr", "override"); err != nil {
			t.Fatalf("status %q: admin override failed: %v", status, err)
		}
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	if _, err := service.Update(42, &ExperiencePatch{UserID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.SetStatus(42, models.StatusProcessing, "admin@veever.fr", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndCancelScenario(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(7, "owner@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if experience.Status != models.StatusPending {
		t.Fatalf("expected pending after create, got %q", experience.Status)
	}

	cancelled, err := service.SetStatus(experience.ID, models.StatusCancelled, "owner@veever.fr", CancelledByUserNote)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}
	history := cancelled.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	last := history[1]
	if last.Status != models.StatusCancelled || last.UpdatedBy != "owner@veever.fr" || last.Note != CancelledByUserNote {
		t.Fatalf("unexpected cancellation entry: %+v", last)
	}
}

func TestAttachItineraryCompletesWithNote(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := service.AttachItinerary(experience.ID, 42, "admin@veever.fr")
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if updated.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %q", updated.Status)
	}
	if updated.ItineraryID == nil || *updated.ItineraryID != 42 {
		t.Fatalf("expected itinerary id 42, got %v", updated.ItineraryID)
	}

	history := updated.History()
	last := history[len(history)-1]
	if last.UpdatedBy != "admin@veever.fr" {
		t.Fatalf("expected admin in history, got %q", last.UpdatedBy)
	}
	if !strings.Contains(last.Note, "42") {
		t.Fatalf("expected note to reference the itinerary id, got %q", last.Note)
	}
}

func TestNotesAreIndependentAndNewestFirst(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	experience, err := service.Create(testDraft(1, "user@veever.fr", models.ItineraryTypeNoHotel))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.AddNote(experience.ID, "called the client", "admin@veever.fr"); err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if _, err := service.AddNote(experience.ID, "waiting for partner reply", "admin@veever.fr"); err != nil {
		t.Fatalf("add note failed: %v", err)
	}

	notes, err := service.ListNotes(experience.ID)
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].ID < notes[1].ID {
		t.Fatal("expected notes ordered newest first")
	}

	// notes never touch the status history
	stored, _ := service.GetByID(experience.ID)
	if len(stored.History()) != 1 {
		t.Fatal("adding notes must not append history entries")
	}

	if _, err := service.AddNote(999, "orphan", "admin@veever.fr"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing record, got %v", err)
	}
}

func TestComputeStatistics(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	// empty collection: conversion rate is 0, not NaN
	stats, err := service.ComputeStatistics()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 0 || stats.ConversionRate != 0 {
		t.Fatalf("expected zeroed stats on empty collection, got %+v", stats)
	}

	first, _ := service.Create(testDraft(1, "a@veever.fr", models.ItineraryTypeNoHotel))
	second, _ := service.Create(testDraft(2, "b@veever.fr", models.ItineraryTypeFull))
	third, _ := service.Create(testDraft(3, "c@veever.fr", models.ItineraryTypeFull))
	_ = first
	service.SetStatus(second.ID, models.StatusCompleted, "admin@veever.fr", "")
	service.SetStatus(third.ID, models.StatusCompleted, "admin@veever.fr", "")

	stats, err = service.ComputeStatistics()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.ByStatus[models.StatusCompleted] != 2 {
		t.Fatalf("expected 2 completed, got %d", stats.ByStatus[models.StatusCompleted])
	}
	if stats.ByStatus[models.StatusPending] != 1 {
		t.Fatalf("expected 1 pending, got %d", stats.ByStatus[models.StatusPending])
	}
	if stats.ByType[models.ItineraryTypeFull] != 2 {
		t.Fatalf("expected 2 hotel itineraries, got %d", stats.ByType[models.ItineraryTypeFull])
	}
	if stats.CreatedLast30Days != 3 {
		t.Fatalf("expected 3 recent creations, got %d", stats.CreatedLast30Days)
	}
	want := 2.0 / 3.0
	if stats.ConversionRate < want-0.0001 || stats.ConversionRate > want+0.0001 {
		t.Fatalf("expected conversion rate 2/3, got %f", stats.ConversionRate)
	}
}

func TestExportRows(t *testing.T) {
	setupTestDB(t)
	service := NewExperienceService()

	if _, err := service.Create(testDraft(1, "client@veever.fr", models.ItineraryTypeFull)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rows, err := service.ExportRows()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}

	header := rows[0]
	if len(header) != 10 {
		t.Fatalf("expected 10 columns, got %d", len(header))
	}
	if header[1] != "Date de création" || header[9] != "Dernière mise à jour" {
		t.Fatalf("unexpected header: %v", header)
	}

	row := rows[1]
	if row[2] != "En attente" {
		t.Fatalf("expected localized status, got %q", row[2])
	}
	if row[4] != "client@veever.fr" {
		t.Fatalf("expected client column, got %q", row[4])
	}
	if row[5] != "Centre-ville" {
		t.Fatalf("expected localized zone, got %q", row[5])
	}
	if row[6] != "Économique" {
		t.Fatalf("expected localized restaurant budget, got %q", row[6])
	}
	if row[8] != "Premium" {
		t.Fatalf("expected localized accommodation budget, got %q", row[8])
	}
	// dd/mm/yyyy
	if len(row[1]) != 10 || row[1][2] != '/' || row[1][5] != '/' {
		t.Fatalf("expected dd/mm/yyyy creation date, got %q", row[1])
	}
}
