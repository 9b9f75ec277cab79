package authRoutes

import (
	authControllers "coursemart/controllers/auth"
	"coursemart/middleware"
	"coursemart/validators"
	authValidators "coursemart/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Get("/login-history", middleware.JWTMiddleware, validators.Pagination(), authControllers.LoginHistoryList)
}
