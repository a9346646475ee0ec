package routes

import (
	"fmt"
	"log"
	"sort"

	"veever-server/models"
	"veever-server/services"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// adminEmail resolves the acting admin's email for history entries and notes.
// When the profile lookup fails the token subject keeps the entry attributable.
func adminEmail(ctx iris.Context) string {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	var admin models.User
	if err := storage.DB.Select("id, email").First(&admin, claims.ID).Error; err != nil {
		log.Printf("admin %d: email lookup failed: %v", claims.ID, err)
		return fmt.Sprintf("admin:%d", claims.ID)
	}
	return admin.Email
}

// GET /api/admin/experiences?sort=asc|desc&status=
func AdminListExperiences(ctx iris.Context) {
	service := services.NewExperienceService()
	experiences, err := service.ListAll()
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	if status := ctx.URLParam("status"); status != "" {
		filtered := experiences[:0]
		for _, e := range experiences {
			if e.Status == status {
				filtered = append(filtered, e)
			}
		}
		experiences = filtered
	}

	order := ctx.URLParamDefault("sort", "desc")
	sort.SliceStable(experiences, func(i, j int) bool {
		if order == "asc" {
			return experiences[i].CreatedAt.Before(experiences[j].CreatedAt)
		}
		return experiences[i].CreatedAt.After(experiences[j].CreatedAt)
	})

	ctx.JSON(iris.Map{"data": experiences, "meta": iris.Map{}, "links": iris.Map{}})
}

// GET /api/admin/experiences/:id — detail with internal notes.
func AdminGetExperience(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	service := services.NewExperienceService()
	experience, err := service.GetByID(id)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	notes, notesErr := service.ListNotes(id)
	if notesErr != nil {
		handleExperienceError(notesErr, ctx)
		return
	}

	ctx.JSON(iris.Map{"data": iris.Map{"experience": experience, "notes": notes}, "meta": iris.Map{}, "links": iris.Map{}})
}

type AdminSetStatusInput struct {
	Status string `json:"status" validate:"required,oneof=processing completed cancelled"`
	Note   string `json:"note"`
}

// PATCH /api/admin/experiences/:id/status
func AdminSetExperienceStatus(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input AdminSetStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	service := services.NewExperienceService()
	experience, err := service.GetByID(id)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	if !services.AdminCanSetStatus(experience.Status, input.Status) {
		utils.CreateError(
			iris.StatusConflict,
			"Conflict", "transition from "+experience.Status+" to "+input.Status+" is not available", ctx)
		return
	}

	before := *experience
	updated, err := service.SetStatus(id, input.Status, adminEmail(ctx), input.Note)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	utils.Audit(ctx, "experience.status", "custom_experience", id, before, updated)
	go services.NewNotificationService().SendStatusUpdateToUser(updated.UserID, updated.ID, updated.Status)

	ctx.JSON(updated)
}

type AdminAttachItineraryInput struct {
	ItineraryID uint `json:"itineraryID" validate:"required"`
}

// POST /api/admin/experiences/:id/itinerary — links a curated itinerary and
// completes the request.
func AdminAttachItinerary(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input AdminAttachItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var itinerary models.Itinerary
	itineraryExists := storage.DB.Find(&itinerary, input.ItineraryID)
	if itineraryExists.RowsAffected == 0 {
		utils.CreateError(
			iris.StatusUnprocessableEntity,
			"Validation error", "itinerary does not exist", ctx)
		return
	}

	service := services.NewExperienceService()
	experience, err := service.GetByID(id)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	before := *experience
	updated, err := service.AttachItinerary(id, input.ItineraryID, adminEmail(ctx))
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}

	utils.Audit(ctx, "experience.attach_itinerary", "custom_experience", id, before, updated)
	go services.NewNotificationService().SendStatusUpdateToUser(updated.UserID, updated.ID, updated.Status)

	ctx.JSON(updated)
}

type AdminNoteInput struct {
	Content string `json:"content" validate:"required"`
}

// POST /api/admin/experiences/:id/notes
func AdminAddExperienceNote(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input AdminNoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	service := services.NewExperienceService()
	note, err := service.AddNote(id, input.Content, adminEmail(ctx))
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}
	ctx.JSON(note)
}

// GET /api/admin/experiences/:id/notes — newest first.
func AdminListExperienceNotes(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	service := services.NewExperienceService()
	if _, err := service.GetByID(id); err != nil {
		handleExperienceError(err, ctx)
		return
	}

	notes, err := service.ListNotes(id)
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}
	ctx.JSON(notes)
}

// GET /api/admin/stats
func AdminStats(ctx iris.Context) {
	service := services.NewExperienceService()
	stats, err := service.ComputeStatistics()
	if err != nil {
		handleExperienceError(err, ctx)
		return
	}
	ctx.JSON(iris.Map{"data": stats, "meta": iris.Map{}, "links": iris.Map{}})
}
