package userController

import (
	"strings"
	"time"

	"coursemart/database"
	"coursemart/middleware"
	"coursemart/services"
	userValidator "coursemart/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func GetProfile(c *fiber.Ctx) error {
	user, err := services.LoadActiveUser(database.Database.Db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedProfile").(*userValidator.ProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	user, err := services.LoadActiveUser(db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if reqData.FirstName != nil {
		user.FirstName = strings.TrimSpace(*reqData.FirstName)
	}
	if reqData.LastName != nil {
		user.LastName = strings.TrimSpace(*reqData.LastName)
	}
	if reqData.Bio != nil {
		user.Bio = *reqData.Bio
	}
	if reqData.Location != nil {
		user.Location = *reqData.Location
	}
	if reqData.Website != nil {
		user.Website = *reqData.Website
	}
	if reqData.Skills != nil {
		user.Skills = datatypes.JSONSlice[string](reqData.Skills)
	}
	if reqData.Interests != nil {
		user.Interests = datatypes.JSONSlice[string](reqData.Interests)
	}
	if reqData.AvatarPublicID != nil {
		user.Avatar.PublicID = *reqData.AvatarPublicID
	}
	if reqData.AvatarURL != nil {
		user.Avatar.URL = *reqData.AvatarURL
	}

	if err := db.Save(user).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully.", user)
}

func GetEnrollments(c *fiber.Ctx) error {
	enrollments, err := services.ListEnrollments(database.Database.Db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

func GetCertificates(c *fiber.Ctx) error {
	certificates, err := services.ListUserCertificates(database.Database.Db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

func GetOrders(c *fiber.Ctx) error {
	orders, err := services.ListUserOrders(database.Database.Db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", orders)
}

func GetWishlist(c *fiber.Ctx) error {
	items, err := services.ListWishlist(database.Database.Db, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Wishlist fetched successfully!", items)
}

func AddToWishlist(c *fiber.Ctx) error {
	courseID := c.Locals("course_id").(uint)
	if err := services.AddToWishlist(database.Database.Db, middleware.CurrentUserID(c), courseID, time.Now()); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course added to wishlist!", nil)
}

func RemoveFromWishlist(c *fiber.Ctx) error {
	courseID := c.Locals("course_id").(uint)
	if err := services.RemoveFromWishlist(database.Database.Db, middleware.CurrentUserID(c), courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course removed from wishlist!", nil)
}
