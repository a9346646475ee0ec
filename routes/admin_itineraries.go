package routes

import (
	"encoding/json"

	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

type ItineraryInput struct {
	Title       string   `json:"title" validate:"required,max=256"`
	Slug        string   `json:"slug" validate:"required,max=256"`
	Description string   `json:"description"`
	City        string   `json:"city" validate:"required"`
	Zone        string   `json:"zone" validate:"omitempty,oneof=center outskirts"`
	Type        string   `json:"type" validate:"required,oneof=hotel-restaurant-activity restaurant-activity"`
	PriceTier   string   `json:"priceTier" validate:"omitempty,oneof=economic standard premium luxury"`
	Price       float64  `json:"price"`
	Photos      []string `json:"photos"`
	PartnerID   *uint    `json:"partnerID"`
	Published   bool     `json:"published"`
}

func applyItineraryInput(itinerary *models.Itinerary, input *ItineraryInput) {
	itinerary.Title = input.Title
	itinerary.Slug = input.Slug
	itinerary.Description = input.Description
	itinerary.City = input.City
	itinerary.Zone = input.Zone
	itinerary.Type = input.Type
	itinerary.PriceTier = input.PriceTier
	itinerary.Price = input.Price
	itinerary.PartnerID = input.PartnerID
	itinerary.Published = input.Published
	if input.Photos != nil {
		raw, _ := json.Marshal(input.Photos)
		itinerary.Photos = datatypes.JSON(raw)
	}
}

// GET /api/admin/itineraries — unpublished included.
func AdminListItineraries(ctx iris.Context) {
	var itineraries []models.Itinerary
	if err := storage.DB.Preload("Partner").Order("created_at DESC").Find(&itineraries).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(iris.Map{"data": itineraries, "meta": iris.Map{}, "links": iris.Map{}})
}

// POST /api/admin/itineraries
func AdminCreateItinerary(ctx iris.Context) {
	var input ItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var itinerary models.Itinerary
	applyItineraryInput(&itinerary, &input)

	if err := storage.DB.Create(&itinerary).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "itinerary.create", "itinerary", itinerary.ID, nil, itinerary)
	ctx.JSON(itinerary)
}

// PATCH /api/admin/itineraries/:id
func AdminUpdateItinerary(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var itinerary models.Itinerary
	itineraryExists := storage.DB.Find(&itinerary, id)
	if itineraryExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var input ItineraryInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := itinerary
	applyItineraryInput(&itinerary, &input)

	if err := storage.DB.Save(&itinerary).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "itinerary.update", "itinerary", itinerary.ID, before, itinerary)
	ctx.JSON(itinerary)
}

// DELETE /api/admin/itineraries/:id
func AdminDeleteItinerary(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var itinerary models.Itinerary
	itineraryExists := storage.DB.Find(&itinerary, id)
	if itineraryExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&models.Itinerary{}, id).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "itinerary.delete", "itinerary", id, itinerary, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
