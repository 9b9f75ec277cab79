package userProfileRoutes

import (
	userController "coursemart/controllers/userControllers"
	"coursemart/middleware"
	"coursemart/validators"
	userValidator "coursemart/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware)

	userGroup.Get("/profile", userController.GetProfile)
	userGroup.Put("/profile", userValidator.UpdateProfile(), userController.UpdateProfile)

	userGroup.Get("/enrollments", userController.GetEnrollments)
	userGroup.Get("/certificates", userController.GetCertificates)
	userGroup.Get("/orders", userController.GetOrders)

	userGroup.Get("/wishlist", userController.GetWishlist)
	userGroup.Post("/wishlist/:course_id", validators.IDParams("course_id"), userController.AddToWishlist)
	userGroup.Delete("/wishlist/:course_id", validators.IDParams("course_id"), userController.RemoveFromWishlist)
}
