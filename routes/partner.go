package routes

import (
	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/partners?category=
func GetPartners(ctx iris.Context) {
	query := storage.DB.Where("active = ?", true)
	if category := ctx.URLParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var partners []models.Partner
	if err := query.Order("name ASC").Find(&partners).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(partners)
}
