package superAdminRoutes

import (
	controllers "coursemart/controllers/course"
	orderController "coursemart/controllers/order"
	superAdminController "coursemart/controllers/superAdmin"
	"coursemart/middleware"
	"coursemart/models"
	"coursemart/validators"
	orderValidator "coursemart/validators/order"
	superAdminValidator "coursemart/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	// Users
	adminGroup.Get("/users", superAdminValidator.List(), superAdminController.UserList)
	adminGroup.Post("/users/:id/deactivate", validators.IDParams("id"), superAdminController.DeactivateUser)
	adminGroup.Post("/users/:id/reactivate", validators.IDParams("id"), superAdminController.ReactivateUser)

	// Orders
	adminGroup.Get("/orders", orderValidator.OrderList(), orderController.ListOrders)
	adminGroup.Post("/order/:id/refund", validators.IDParams("id"), orderValidator.Refund(), orderController.RefundOrder)

	// Catalogue
	adminGroup.Put("/course/:id/featured", validators.IDParams("id"), superAdminValidator.SetFeatured(), controllers.SetFeatured)

	// Reports
	adminGroup.Get("/stats/revenue", superAdminValidator.StatsRange(), superAdminController.RevenueStats)
	adminGroup.Get("/stats/certificates", superAdminValidator.StatsRange(), superAdminController.CertificateStats)
}
