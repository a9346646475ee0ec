package services

import (
	"errors"
	"fmt"
	"time"

	"veever-server/models"
)

// Wizard steps, in order. StepAccommodation is bypassed in both directions
// when the draft's itinerary type does not include a hotel.
const (
	StepItineraryType   = 0
	StepAccommodation   = 1
	StepRestaurant      = 2
	StepActivity        = 3
	StepDateLocation    = 4
	StepPersonalization = 5
)

// SwipeOption is one card of a swipe step. Option ids are the keys recorded
// into the preference map.
type SwipeOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Fixed ordered card decks for the two swipe steps.
var CuisineOptions = []SwipeOption{
	{ID: "cuisine-french", Label: "Française"},
	{ID: "cuisine-italian", Label: "Italienne"},
	{ID: "cuisine-japanese", Label: "Japonaise"},
	{ID: "cuisine-lebanese", Label: "Libanaise"},
	{ID: "cuisine-mexican", Label: "Mexicaine"},
	{ID: "cuisine-vegetarian", Label: "Végétarienne"},
}

var ActivityOptions = []SwipeOption{
	{ID: "activity-escape-game", Label: "Escape game"},
	{ID: "activity-karaoke", Label: "Karaoké"},
	{ID: "activity-museum", Label: "Musée & expo"},
	{ID: "activity-spa", Label: "Spa & bien-être"},
	{ID: "activity-cooking-class", Label: "Cours de cuisine"},
	{ID: "activity-boat", Label: "Balade en bateau"},
}

// WizardDraft is the in-progress custom experience built step by step. It is
// persisted between requests and discarded on submit.
type WizardDraft struct {
	EditID *uint `json:"editID,omitempty"`
	Step   int   `json:"step"`

	ItineraryType      string                        `json:"itineraryType"`
	Accommodation      models.AccommodationSection   `json:"accommodation"`
	Restaurant         models.RestaurantSection      `json:"restaurant"`
	Activity           models.ActivitySection        `json:"activity"`
	DateAndConstraints models.DateConstraintsSection `json:"dateAndConstraints"`
	Personalization    models.PersonalizationSection `json:"personalization"`
	Preferences        map[string]bool               `json:"preferences"`

	// Cursors into the swipe decks
	CuisineIndex  int `json:"cuisineIndex"`
	ActivityIndex int `json:"activityIndex"`
}

func NewWizardDraft() *WizardDraft {
	return &WizardDraft{Preferences: map[string]bool{}}
}

// SeedDraftFromExperience builds an edit-mode draft from a stored record.
// The caller is responsible for the ownership and pending checks.
func SeedDraftFromExperience(e *models.CustomExperience) *WizardDraft {
	draft := NewWizardDraft()
	draft.EditID = &e.ID
	draft.ItineraryType = e.ItineraryType
	if accommodation := e.DecodeAccommodation(); accommodation != nil {
		draft.Accommodation = *accommodation
	}
	draft.Restaurant = e.DecodeRestaurant()
	draft.Activity = e.DecodeActivity()
	draft.DateAndConstraints = e.DecodeDateAndConstraints()
	draft.Personalization = e.DecodePersonalization()
	draft.Preferences = e.PreferenceMap()
	draft.CuisineIndex = len(CuisineOptions)
	draft.ActivityIndex = len(ActivityOptions)
	return draft
}

// SetItineraryType records the step-0 choice. Dropping the hotel clears any
// accommodation answers so the section never survives a type change.
func (d *WizardDraft) SetItineraryType(itineraryType string) error {
	if itineraryType != models.ItineraryTypeFull && itineraryType != models.ItineraryTypeNoHotel {
		return fmt.Errorf("unknown itinerary type %q", itineraryType)
	}
	d.ItineraryType = itineraryType
	if itineraryType == models.ItineraryTypeNoHotel {
		d.Accommodation = models.AccommodationSection{}
	}
	return nil
}

func (d *WizardDraft) requiresAccommodation() bool {
	return d.ItineraryType == models.ItineraryTypeFull
}

// ValidateStep checks the completion gate of one step. Swipe steps complete
// by exhausting their deck, the others by their required fields.
func (d *WizardDraft) ValidateStep(step int) error {
	switch step {
	case StepItineraryType:
		if d.ItineraryType == "" {
			return errors.New("itinerary type is required")
		}
	case StepAccommodation:
		if !d.requiresAccommodation() {
			return nil
		}
		if len(d.Accommodation.Types) == 0 || d.Accommodation.Budget == "" || d.Accommodation.Style == "" {
			return errors.New("lodging types, budget and style are required")
		}
	case StepRestaurant:
		if d.CuisineIndex < len(CuisineOptions) {
			return errors.New("swipe through the remaining cuisine cards first")
		}
	case StepActivity:
		if d.ActivityIndex < len(ActivityOptions) {
			return errors.New("swipe through the remaining activity cards first")
		}
	case StepDateLocation:
		section := d.DateAndConstraints
		if section.Date == "" || section.Time == "" || section.Zone == "" {
			return errors.New("date, time and zone are required")
		}
		if _, err := time.Parse("2006-01-02", section.Date); err != nil {
			return errors.New("invalid date format, expected yyyy-mm-dd")
		}
	case StepPersonalization:
		if d.Personalization.GroupDynamics == "" || d.Personalization.Vibe == "" {
			return errors.New("group dynamics and vibe are required")
		}
	}
	return nil
}

// NextStep validates the current step and advances, skipping the
// accommodation step for drafts without a hotel.
func (d *WizardDraft) NextStep() error {
	if err := d.ValidateStep(d.Step); err != nil {
		return err
	}
	if d.Step >= StepPersonalization {
		return errors.New("already on the last step")
	}
	next := d.Step + 1
	if next == StepAccommodation && !d.requiresAccommodation() {
		next++
	}
	d.Step = next
	return nil
}

// PrevStep moves back one step, undoing the same skip NextStep applied so
// back from the restaurant step lands on step 0 for hotel-less drafts.
func (d *WizardDraft) PrevStep() {
	if d.Step == 0 {
		return
	}
	prev := d.Step - 1
	if prev == StepAccommodation && !d.requiresAccommodation() {
		prev--
	}
	d.Step = prev
}

// CurrentDeck returns the swipe deck of the current step, or nil when the
// current step is not a swipe step.
func (d *WizardDraft) CurrentDeck() []SwipeOption {
	switch d.Step {
	case StepRestaurant:
		return CuisineOptions
	case StepActivity:
		return ActivityOptions
	}
	return nil
}

func (d *WizardDraft) deckCursor() *int {
	switch d.Step {
	case StepRestaurant:
		return &d.CuisineIndex
	case StepActivity:
		return &d.ActivityIndex
	}
	return nil
}

// Swipe records a like/dislike for the current card and advances the cursor.
// Exhausting the deck auto-advances to the next step; the returned flag
// reports that jump.
func (d *WizardDraft) Swipe(optionID string, liked bool) (advanced bool, err error) {
	deck := d.CurrentDeck()
	cursor := d.deckCursor()
	if deck == nil {
		return false, errors.New("current step is not a swipe step")
	}
	if *cursor >= len(deck) {
		return false, errors.New("no cards left on this step")
	}
	if deck[*cursor].ID != optionID {
		return false, fmt.Errorf("expected card %q", deck[*cursor].ID)
	}
	if d.Preferences == nil {
		d.Preferences = map[string]bool{}
	}
	d.Preferences[optionID] = liked
	*cursor++
	if *cursor == len(deck) {
		if err := d.NextStep(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
