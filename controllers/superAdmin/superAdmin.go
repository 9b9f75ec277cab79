package superAdminController

import (
	"strings"

	"coursemart/database"
	"coursemart/middleware"
	"coursemart/models"
	"coursemart/services"
	superAdminValidator "coursemart/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("list").(*superAdminValidator.UserListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page, limit := services.NormalizePage(reqData.Page, reqData.Limit)

	query := database.Database.Db.Model(&models.User{})
	if reqData.Role != "" {
		query = query.Where("role = ?", reqData.Role)
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ?)", like, like, like)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var users []models.User
	if err := query.Order("created_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users":      users,
		"pagination": services.NewPagination(page, limit, total),
	})
}

func setActive(c *fiber.Ctx, active bool) error {
	targetID := c.Locals("id").(uint)
	if targetID == middleware.CurrentUserID(c) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot change your own account status!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.First(&user, targetID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if err := db.Model(&user).Update("is_active", active).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	user.IsActive = active
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated successfully!", user)
}

func DeactivateUser(c *fiber.Ctx) error { return setActive(c, false) }

func ReactivateUser(c *fiber.Ctx) error { return setActive(c, true) }

func RevenueStats(c *fiber.Ctx) error {
	r := c.Locals("dateRange").(*superAdminValidator.DateRange)
	stats, err := services.GetRevenueStats(database.Database.Db, r.From, r.To)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Revenue stats fetched successfully!", stats)
}

func CertificateStats(c *fiber.Ctx) error {
	r := c.Locals("dateRange").(*superAdminValidator.DateRange)
	stats, err := services.GetCertificateStats(database.Database.Db, r.From, r.To)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate stats fetched successfully!", stats)
}
