package routes

import (
	"net/http"
	"strings"

	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
)

// ListUsers - GET /api/admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	// Basic pagination
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		ctx.StatusCode(http.StatusInternalServerError)
		ctx.JSON(iris.Map{"error": "server_error", "message": err.Error()})
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

// Change role - PATCH /api/admin/users/:id/role (super_admin only)
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || (body.Role != "user" && body.Role != "admin" && body.Role != "super_admin") {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.role", "user", user.ID, before, user)
	ctx.JSON(iris.Map{"data": user})
}

// GET /api/admin/users/:id — profile plus the user's experience requests.
func AdminGetUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	var experiences []models.CustomExperience
	storage.DB.Where("user_id = ?", id).Order("created_at DESC").Find(&experiences)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"user":        user,
			"experiences": experiences,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /api/admin/activity — recent admin actions, newest first.
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
