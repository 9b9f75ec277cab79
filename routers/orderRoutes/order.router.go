package orderRoutes

import (
	orderController "coursemart/controllers/order"
	"coursemart/middleware"
	"coursemart/validators"
	orderValidator "coursemart/validators/order"

	"github.com/gofiber/fiber/v2"
)

func SetupOrderRoutes(app *fiber.App) {
	orderGroup := app.Group("/order", middleware.JWTMiddleware)

	orderGroup.Post("/checkout", orderValidator.Checkout(), orderController.Checkout)
	orderGroup.Get("/:id", validators.IDParams("id"), orderController.GetOrder)
	orderGroup.Post("/:id/process", validators.IDParams("id"), orderController.StartProcessing)
	orderGroup.Post("/:id/pay", validators.IDParams("id"), orderValidator.Pay(), orderController.PayOrder)
	orderGroup.Post("/:id/payment-failed", validators.IDParams("id"), orderController.RecordPaymentFailure)
	orderGroup.Post("/:id/fail", validators.IDParams("id"), orderController.FailOrder)
	orderGroup.Post("/:id/cancel", validators.IDParams("id"), orderController.CancelOrder)
}
