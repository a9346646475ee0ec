package services

import (
	"encoding/json"
	"strconv"
	"time"

	"veever-server/models"
	"veever-server/storage"

	"gorm.io/datatypes"
)

// ExperienceService is the sole point of contact with the database for
// custom experience records. Every mutating call is a single read-then-write
// round trip; there is no transaction spanning documents and no optimistic
// locking (a concurrent edit and status change can overwrite each other, an
// accepted limitation of the source behavior).
type ExperienceService struct{}

func NewExperienceService() *ExperienceService {
	return &ExperienceService{}
}

// ExperienceDraft is a not-yet-persisted record produced by the wizard. It
// lacks id, timestamps, status and history; Create stamps all of those.
type ExperienceDraft struct {
	UserID             uint
	UserEmail          string
	ItineraryType      string
	Accommodation      *models.AccommodationSection
	Restaurant         models.RestaurantSection
	Activity           models.ActivitySection
	DateAndConstraints models.DateConstraintsSection
	Personalization    models.PersonalizationSection
	Preferences        map[string]bool
}

// ExperiencePatch carries section-level changes for Update. Nil sections are
// left untouched; a non-nil section replaces the stored one.
type ExperiencePatch struct {
	UserID             uint
	ItineraryType      string
	Accommodation      *models.AccommodationSection
	Restaurant         *models.RestaurantSection
	Activity           *models.ActivitySection
	DateAndConstraints *models.DateConstraintsSection
	Personalization    *models.PersonalizationSection
	Preferences        map[string]bool
}

func marshalSection(section interface{}) datatypes.JSON {
	raw, err := json.Marshal(section)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// Create persists a draft as a pending record. The first history entry is
// always {pending, createdAt, owner email}.
func (s *ExperienceService) Create(draft *ExperienceDraft) (*models.CustomExperience, error) {
	if draft.ItineraryType == models.ItineraryTypeFull && draft.Accommodation == nil {
		return nil, ErrAccommodationRequired
	}

	now := time.Now()

	history := []models.StatusHistoryEntry{{
		Status:    models.StatusPending,
		Timestamp: now,
		UpdatedBy: draft.UserEmail,
	}}

	experience := models.CustomExperience{
		UserID:             draft.UserID,
		UserEmail:          draft.UserEmail,
		ItineraryType:      draft.ItineraryType,
		Restaurant:         marshalSection(draft.Restaurant),
		Activity:           marshalSection(draft.Activity),
		DateAndConstraints: marshalSection(draft.DateAndConstraints),
		Personalization:    marshalSection(draft.Personalization),
		Preferences:        marshalSection(draft.Preferences),
		Status:             models.StatusPending,
		StatusHistory:      marshalSection(history),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Accommodation is present iff the itinerary includes a hotel
	if draft.ItineraryType == models.ItineraryTypeFull && draft.Accommodation != nil {
		experience.Accommodation = marshalSection(draft.Accommodation)
	}

	if err := storage.DB.Create(&experience).Error; err != nil {
		return nil, &StoreWriteError{Err: err}
	}
	return &experience, nil
}

// GetByID loads one record, ErrNotFound when absent.
func (s *ExperienceService) GetByID(id uint) (*models.CustomExperience, error) {
	var experience models.CustomExperience
	result := storage.DB.Find(&experience, id)
	if result.Error != nil {
		return nil, &StoreReadError{Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &experience, nil
}

// ListByUser returns every record owned by the user. Order is unspecified
// here; sorting is a caller concern.
func (s *ExperienceService) ListByUser(userID uint) ([]models.CustomExperience, error) {
	var experiences []models.CustomExperience
	if err := storage.DB.Where("user_id = ?", userID).Find(&experiences).Error; err != nil {
		return nil, &StoreReadError{Err: err}
	}
	return experiences, nil
}

// ListAll returns every record, for the admin back office.
func (s *ExperienceService) ListAll() ([]models.CustomExperience, error) {
	var experiences []models.CustomExperience
	if err := storage.DB.Find(&experiences).Error; err != nil {
		return nil, &StoreReadError{Err: err}
	}
	return experiences, nil
}

// Update merges a section-level patch over a stored record. Only the owner
// may call it and only while the record is pending; status and history are
// never touched here.
func (s *ExperienceService) Update(id uint, patch *ExperiencePatch) (*models.CustomExperience, error) {
	experience, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.UserID != experience.UserID {
		return nil, ErrUnauthorized
	}
	if experience.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	if patch.ItineraryType != "" {
		experience.ItineraryType = patch.ItineraryType
	}
	if patch.Accommodation != nil {
		experience.Accommodation = marshalSection(patch.Accommodation)
	}
	// Dropping the hotel removes the accommodation section with it; taking
	// the hotel requires the patch to carry one.
	if experience.ItineraryType == models.ItineraryTypeNoHotel {
		experience.Accommodation = nil
	} else if experience.DecodeAccommodation() == nil {
		return nil, ErrAccommodationRequired
	}
	if patch.Restaurant != nil {
		experience.Restaurant = marshalSection(patch.Restaurant)
	}
	if patch.Activity != nil {
		experience.Activity = marshalSection(patch.Activity)
	}
	if patch.DateAndConstraints != nil {
		experience.DateAndConstraints = marshalSection(patch.DateAndConstraints)
	}
	if patch.Personalization != nil {
		experience.Personalization = marshalSection(patch.Personalization)
	}
	if patch.Preferences != nil {
		experience.Preferences = marshalSection(patch.Preferences)
	}
	experience.UpdatedAt = time.Now()

	if err := storage.DB.Save(experience).Error; err != nil {
		return nil, &StoreWriteError{Err: err}
	}
	return experience, nil
}

// SetStatus appends one history entry and moves the record to newStatus. No
// transition graph is enforced here; that policy lives in lifecycle.go and
// at the route call sites.
func (s *ExperienceService) SetStatus(id uint, newStatus, updatedBy, note string) (*models.CustomExperience, error) {
	experience, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	history := append(experience.History(), models.StatusHistoryEntry{
		Status:    newStatus,
		Timestamp: now,
		UpdatedBy: updatedBy,
		Note:      note,
	})

	experience.Status = newStatus
	experience.StatusHistory = marshalSection(history)
	experience.UpdatedAt = now

	if err := storage.DB.Save(experience).Error; err != nil {
		return nil, &StoreWriteError{Err: err}
	}
	return experience, nil
}

// AttachItinerary links a curated itinerary to the request and forces the
// status to completed, with a generated note referencing the itinerary.
func (s *ExperienceService) AttachItinerary(id, itineraryID uint, adminEmail string) (*models.CustomExperience, error) {
	experience, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note := "itinerary " + strconv.FormatUint(uint64(itineraryID), 10) + " attached"
	history := append(experience.History(), models.StatusHistoryEntry{
		Status:    models.StatusCompleted,
		Timestamp: now,
		UpdatedBy: adminEmail,
		Note:      note,
	})

	experience.ItineraryID = &itineraryID
	experience.Status = models.StatusCompleted
	experience.StatusHistory = marshalSection(history)
	experience.UpdatedAt = now

	if err := storage.DB.Save(experience).Error; err != nil {
		return nil, &StoreWriteError{Err: err}
	}
	return experience, nil
}

// AddNote appends an internal admin note, independent of the status history.
func (s *ExperienceService) AddNote(experienceID uint, content, author string) (*models.ExperienceNote, error) {
	if _, err := s.GetByID(experienceID); err != nil {
		return nil, err
	}
	note := models.ExperienceNote{
		ExperienceID: experienceID,
		Author:       author,
		Content:      content,
	}
	if err := storage.DB.Create(&note).Error; err != nil {
		return nil, &StoreWriteError{Err: err}
	}
	return &note, nil
}

// ListNotes returns the internal notes of a record, newest first.
func (s *ExperienceService) ListNotes(experienceID uint) ([]models.ExperienceNote, error) {
	var notes []models.ExperienceNote
	if err := storage.DB.Where("experience_id = ?", experienceID).Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, &StoreReadError{Err: err}
	}
	return notes, nil
}

// ExportHeader is the fixed column set of the tabular export.
var ExportHeader = []string{
	"ID",
	"Date de création",
	"Statut",
	"Type",
	"Client",
	"Zone",
	"Budget Restaurant",
	"Budget Activité",
	"Budget Hébergement",
	"Dernière mise à jour",
}

// ExportRows projects every record onto the fixed header, one row per
// record, values as human-readable localized strings.
func (s *ExperienceService) ExportRows() ([][]string, error) {
	experiences, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	rows := [][]string{ExportHeader}
	for i := range experiences {
		e := &experiences[i]

		accommodationBudget := ""
		if accommodation := e.DecodeAccommodation(); accommodation != nil {
			accommodationBudget = label(budgetLabels, accommodation.Budget)
		}

		rows = append(rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			FormatExportDate(e.CreatedAt),
			label(statusLabels, e.Status),
			label(itineraryTypeLabels, e.ItineraryType),
			e.UserEmail,
			label(zoneLabels, e.DecodeDateAndConstraints().Zone),
			label(budgetLabels, e.DecodeRestaurant().Budget),
			label(budgetLabels, e.DecodeActivity().Budget),
			accommodationBudget,
			FormatExportDate(e.UpdatedAt),
		})
	}
	return rows, nil
}

// ExperienceStatistics is the admin dashboard aggregate.
type ExperienceStatistics struct {
	Total             int            `json:"total"`
	ByStatus          map[string]int `json:"byStatus"`
	ByType            map[string]int `json:"byType"`
	CreatedLast30Days int            `json:"createdLast30Days"`
	ConversionRate    float64        `json:"conversionRate"`
}

// ComputeStatistics aggregates counts by status and itinerary type, the
// trailing 30 days of creations and completed/total as a conversion rate.
// An empty collection yields a conversion rate of 0, not NaN.
func (s *ExperienceService) ComputeStatistics() (*ExperienceStatistics, error) {
	experiences, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	stats := ExperienceStatistics{
		Total:    len(experiences),
		ByStatus: map[string]int{},
		ByType:   map[string]int{},
	}

	since := time.Now().AddDate(0, 0, -30)
	for i := range experiences {
		e := &experiences[i]
		stats.ByStatus[e.Status]++
		stats.ByType[e.ItineraryType]++
		if e.CreatedAt.After(since) {
			stats.CreatedLast30Days++
		}
	}
	if stats.Total > 0 {
		stats.ConversionRate = float64(stats.ByStatus[models.StatusCompleted]) / float64(stats.Total)
	}
	return &stats, nil
}
