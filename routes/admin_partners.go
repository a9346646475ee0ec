package routes

import (
	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

type PartnerInput struct {
	Name         string `json:"name" validate:"required,max=256"`
	Category     string `json:"category" validate:"required,oneof=hotel restaurant activity"`
	City         string `json:"city"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	Active       bool   `json:"active"`
}

func applyPartnerInput(partner *models.Partner, input *PartnerInput) {
	partner.Name = input.Name
	partner.Category = input.Category
	partner.City = input.City
	partner.ContactEmail = input.ContactEmail
	partner.Phone = input.Phone
	partner.Website = input.Website
	partner.Active = input.Active
}

// GET /api/admin/partners — inactive included.
func AdminListPartners(ctx iris.Context) {
	var partners []models.Partner
	if err := storage.DB.Order("name ASC").Find(&partners).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}
	ctx.JSON(iris.Map{"data": partners, "meta": iris.Map{}, "links": iris.Map{}})
}

// POST /api/admin/partners
func AdminCreatePartner(ctx iris.Context) {
	var input PartnerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var partner models.Partner
	applyPartnerInput(&partner, &input)

	if err := storage.DB.Create(&partner).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "partner.create", "partner", partner.ID, nil, partner)
	ctx.JSON(partner)
}

// PATCH /api/admin/partners/:id
func AdminUpdatePartner(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var partner models.Partner
	partnerExists := storage.DB.Find(&partner, id)
	if partnerExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var input PartnerInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := partner
	applyPartnerInput(&partner, &input)

	if err := storage.DB.Save(&partner).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "partner.update", "partner", partner.ID, before, partner)
	ctx.JSON(partner)
}

// DELETE /api/admin/partners/:id
func AdminDeletePartner(ctx iris.Context) {
	id, idErr := ctx.Params().GetUint("id")
	if idErr != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var partner models.Partner
	partnerExists := storage.DB.Find(&partner, id)
	if partnerExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if err := storage.DB.Delete(&models.Partner{}, id).Error; err != nil {
		utils.CreateError(
			iris.StatusInternalServerError,
			"Error", err.Error(), ctx)
		return
	}

	utils.Audit(ctx, "partner.delete", "partner", id, partner, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
