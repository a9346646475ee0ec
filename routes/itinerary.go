package routes

import (
	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/itineraries?city=&zone=&type=
func GetItineraries(ctx iris.Context) {
	query := storage.DB.Where("published = ?", true)
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if zone := ctx.URLParam("zone"); zone != "" {
		query = query.Where("zone = ?", zone)
	}
	if itineraryType := ctx.URLParam("type"); itineraryType != "" {
		query = query.Where("type = ?", itineraryType)
	}

	var itineraries []models.Itinerary
	if err := query.Preload("Partner").Order("created_at DESC").Find(&itineraries).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(itineraries)
}

// GET /api/itineraries/:id
func GetItinerary(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var itinerary models.Itinerary
	result := storage.DB.Preload("Partner").Where("published = ?", true).Find(&itinerary, id)
	if result.Error != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", result.Error.Error(), ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(itinerary)
}
