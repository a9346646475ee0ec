package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Itinerary types selectable on the first wizard step. The second one skips
// the accommodation step entirely.
const (
	ItineraryTypeFull    = "hotel-restaurant-activity"
	ItineraryTypeNoHotel = "restaurant-activity"
)

// Custom experience statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// AccommodationSection is only present when the itinerary type includes a hotel.
type AccommodationSection struct {
	Types  []string `json:"types"`
	Budget string   `json:"budget"`
	Style  string   `json:"style"`
}

type RestaurantSection struct {
	Cuisines []string `json:"cuisines"`
	Ambiance string   `json:"ambiance"`
	Budget   string   `json:"budget"`
}

type ActivitySection struct {
	Types     []string `json:"types"`
	Intensity string   `json:"intensity"`
	Budget    string   `json:"budget"`
}

type DateConstraintsSection struct {
	Date string `json:"date"` // "2006-01-02"
	Time string `json:"time"` // "19:00"
	Zone string `json:"zone"` // "center", "outskirts"
}

type PersonalizationSection struct {
	GroupDynamics string `json:"groupDynamics"`
	Vibe          string `json:"vibe"`
	Request       string `json:"request,omitempty"`
}

// StatusHistoryEntry is one immutable audit record of a status transition.
// Entries are only ever appended, never rewritten.
type StatusHistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UpdatedBy string    `json:"updatedBy"`
	Note      string    `json:"note,omitempty"`
}

type CustomExperience struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"userID" gorm:"index;not null"`
	UserEmail string `json:"userEmail" gorm:"not null"`

	ItineraryType string `json:"itineraryType" gorm:"not null"`

	// Preference sections, stored as JSON documents
	Accommodation      datatypes.JSON `json:"accommodation"`
	Restaurant         datatypes.JSON `json:"restaurant"`
	Activity           datatypes.JSON `json:"activity"`
	DateAndConstraints datatypes.JSON `json:"dateAndConstraints"`
	Personalization    datatypes.JSON `json:"personalization"`
	Preferences        datatypes.JSON `json:"preferences"` // option id -> liked

	Status        string         `json:"status" gorm:"default:'pending';index"`
	StatusHistory datatypes.JSON `json:"statusHistory"`
	ItineraryID   *uint          `json:"itineraryID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Notes []ExperienceNote `json:"-" gorm:"foreignKey:ExperienceID"`
}

// ExperienceNote is an admin-only internal note, independent of the status
// history.
type ExperienceNote struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ExperienceID uint      `json:"experienceID" gorm:"index;not null"`
	Author       string    `json:"author" gorm:"not null"`
	Content      string    `json:"content" gorm:"type:text"`
	CreatedAt    time.Time `json:"createdAt"`
}

// History decodes the status history column. A record persisted through the
// service layer always has at least one entry.
func (e *CustomExperience) History() []StatusHistoryEntry {
	var entries []StatusHistoryEntry
	if e.StatusHistory != nil {
		json.Unmarshal(e.StatusHistory, &entries)
	}
	return entries
}

// PreferenceMap decodes the swipe preferences column.
func (e *CustomExperience) PreferenceMap() map[string]bool {
	prefs := map[string]bool{}
	if e.Preferences != nil {
		json.Unmarshal(e.Preferences, &prefs)
	}
	return prefs
}

// DecodeAccommodation returns nil when the section is absent
// (itineraryType = restaurant-activity).
func (e *CustomExperience) DecodeAccommodation() *AccommodationSection {
	if len(e.Accommodation) == 0 || string(e.Accommodation) == "null" {
		return nil
	}
	var section AccommodationSection
	if err := json.Unmarshal(e.Accommodation, &section); err != nil {
		return nil
	}
	return &section
}

func (e *CustomExperience) DecodeRestaurant() RestaurantSection {
	var section RestaurantSection
	if e.Restaurant != nil {
		json.Unmarshal(e.Restaurant, &section)
	}
	return section
}

func (e *CustomExperience) DecodeActivity() ActivitySection {
	var section ActivitySection
	if e.Activity != nil {
		json.Unmarshal(e.Activity, &section)
	}
	return section
}

func (e *CustomExperience) DecodeDateAndConstraints() DateConstraintsSection {
	var section DateConstraintsSection
	if e.DateAndConstraints != nil {
		json.Unmarshal(e.DateAndConstraints, &section)
	}
	return section
}

func (e *CustomExperience) DecodePersonalization() PersonalizationSection {
	var section PersonalizationSection
	if e.Personalization != nil {
		json.Unmarshal(e.Personalization, &section)
	}
	return section
}
