package routes

import (
	"errors"
	"fmt"
	"sort"

	"veever-server/models"
	"veever-server/services"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/experiences?sort=asc|desc
// Sorting is stable and applied in memory over the full user-scoped set; the
// store itself returns records in unspecified order.
func GetUserExperiences(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	service := services.NewExperienceService()
	experiences, err := service.ListByUser(userID)
	if err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	order := ctx.URLParamDefault("sort", "desc")
	sort.SliceStable(experiences, func(i, j int) bool {
		if order == "asc" {
			return experiences[i].CreatedAt.Before(experiences[j].CreatedAt)
		}
		return experiences[i].CreatedAt.After(experiences[j].CreatedAt)
	})

	ctx.JSON(experiences)
}

// GET /api/experiences/:id
func GetExperience(ctx iris.Context) {
	experience, ok := loadOwnedExperience(ctx)
	if !ok {
		return
	}
	ctx.JSON(experience)
}

type ExperienceUpdateInput struct {
	ItineraryType      string                         `json:"itineraryType" validate:"omitempty,oneof=hotel-restaurant-activity restaurant-activity"`
	Accommodation      *models.AccommodationSection   `json:"accommodation"`
	Restaurant         *models.RestaurantSection      `json:"restaurant"`
	Activity           *models.ActivitySection        `json:"activity"`
	DateAndConstraints *models.DateConstraintsSection `json:"dateAndConstraints"`
	Personalization    *models.PersonalizationSection `json:"personalization"`
	Preferences        map[string]bool                `json:"preferences"`
}

// PATCH /api/experiences/:id — the "modify" action, pending records only.
func UpdateExperience(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input ExperienceUpdateInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	service := services.NewExperienceService()
	experience, err := service.Update(id, &services.ExperiencePatch{
		UserID:             userID,
		ItineraryType:      input.ItineraryType,
		Accommodation:      input.Accommodation,
		Restaurant:         input.Restaurant,
		Activity:           input.Activity,
		DateAndConstraints: input.DateAndConstraints,
		Personalization:    input.Personalization,
		Preferences:        input.Preferences,
	})
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}
	ctx.JSON(experience)
}

// POST /api/experiences/:id/cancel — self-service cancellation, pending only.
func CancelExperience(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	experience, ok := loadOwnedExperience(ctx)
	if !ok {
		return
	}

	if !services.CanUserCancel(experience, userID) {
		utils.CreateError(
			iris.StatusConflict,
			"Conflict", services.ErrInvalidState.Error(), ctx)
		return
	}

	service := services.NewExperienceService()
	updated, err := service.SetStatus(experience.ID, models.StatusCancelled, experience.UserEmail, services.CancelledByUserNote)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}
	ctx.JSON(updated)
}

// GET /api/experiences/:id/document — formatted document export.
func ExportExperienceDocument(ctx iris.Context) {
	experience, ok := loadOwnedExperience(ctx)
	if !ok {
		return
	}

	document := services.BuildExperienceDocument(experience)

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=veever-experience-%d.txt", experience.ID))
	ctx.ContentType("text/plain; charset=utf-8")
	ctx.WriteString(document)
}

// loadOwnedExperience fetches the :id record and enforces ownership. Admins
// go through the /api/admin party instead; this one is owner-only and does
// not leak whether a foreign record exists.
func loadOwnedExperience(ctx iris.Context) (*models.CustomExperience, bool) {
	userID := ctx.Values().Get("userID").(uint)
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return nil, false
	}

	service := services.NewExperienceService()
	experience, err := service.GetByID(id)
	if err != nil {
		handleExperienceError(err, ctx)
		return nil, false
	}
	if experience.UserID != userID {
		utils.CreateForbidden(ctx)
		return nil, false
	}
	return experience, true
}

// handleExperienceError translates the service error taxonomy once, at the
// call site. Nothing is retried.
func handleExperienceError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrUnauthorized):
		utils.CreateForbidden(ctx)
	case errors.Is(err, services.ErrInvalidState):
		utils.CreateError(
			iris.StatusConflict,
			"Conflict", err.Error(), ctx)
	case errors.Is(err, services.ErrAccommodationRequired):
		utils.CreateError(
			iris.StatusUnprocessableEntity,
			"Validation error", err.Error(), ctx)
	case errors.Is(err, services.ErrAuthRequired):
		utils.CreateAuthRequired(ctx)
	default:
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
	}
}
