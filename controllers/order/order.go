package orderController

import (
	"time"

	"coursemart/config"
	"coursemart/database"
	"coursemart/logger"
	"coursemart/middleware"
	"coursemart/models/course"
	"coursemart/models/order"
	"coursemart/services"
	"coursemart/utils"
	orderValidator "coursemart/validators/order"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func Checkout(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCheckout").(*orderValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	created, err := services.Checkout(database.Database.Db, services.CheckoutInput{
		UserID:         middleware.CurrentUserID(c),
		CourseID:       reqData.CourseID,
		PaymentMethod:  reqData.PaymentMethod,
		CouponCode:     reqData.CouponCode,
		BillingAddress: reqData.BillingAddress.Model(),
		Notes:          reqData.Notes,
		Metadata:       reqData.Metadata,
		IPAddress:      c.IP(),
		UserAgent:      c.Get("User-Agent"),
		TaxRate:        config.AppConfig.TaxRate,
		Expiry:         config.AppConfig.OrderExpiry,
	}, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Order created successfully!", created)
}

func GetOrder(c *fiber.Ctx) error {
	o, err := services.GetOrder(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order fetched successfully!", o)
}

func StartProcessing(c *fiber.Ctx) error {
	o, err := services.StartOrderProcessing(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order is processing.", o)
}

// PayOrder marks the order paid and enrolls its owner. An enrollment failure
// does not undo the payment; it is logged for support to resolve.
func PayOrder(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*orderValidator.PayRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	now := time.Now()
	paid, err := services.PayOrder(c.UserContext(), db, utils.PaymentConfirmer(), middleware.CurrentUserID(c), c.Locals("id").(uint), reqData.TransactionID, now)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	enrollment, err := services.Enroll(db, paid.UserID, paid.CourseID, now)
	if err != nil {
		logger.L().Warn("enrollment after payment failed",
			"order_number", paid.OrderNumber,
			"user_id", paid.UserID,
			"course_id", paid.CourseID,
			"error", err.Error(),
		)
	}

	notifyPaid(db, paid)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment completed successfully!", fiber.Map{
		"order":      paid,
		"enrollment": enrollment,
	})
}

func RecordPaymentFailure(c *fiber.Ctx) error {
	o, err := services.RecordPaymentFailure(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment attempt recorded.", o)
}

func FailOrder(c *fiber.Ctx) error {
	o, err := services.FailOrder(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order marked as failed.", o)
}

func CancelOrder(c *fiber.Ctx) error {
	o, err := services.CancelOrder(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order cancelled successfully!", o)
}

func RefundOrder(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRefund").(*orderValidator.RefundRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	refunded, err := services.RefundOrder(db, middleware.CurrentUserID(c), c.Locals("id").(uint),
		reqData.RefundID, reqData.Amount, reqData.Reason, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if owner, err := services.LoadActiveUser(db, refunded.UserID); err == nil {
		utils.SendRefundEmail(owner.Email, owner.FullName(), refunded.OrderNumber, reqData.Amount.StringFixed(2), refunded.Currency)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Order refunded successfully!", refunded)
}

func ListOrders(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOrderList").(*orderValidator.OrderListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	orders, pagination, err := services.ListOrdersByStatus(database.Database.Db, reqData.Status, reqData.Page, reqData.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Orders fetched successfully!", fiber.Map{
		"orders":     orders,
		"pagination": pagination,
	})
}

func notifyPaid(db *gorm.DB, o *order.Order) {
	owner, err := services.LoadActiveUser(db, o.UserID)
	if err != nil {
		return
	}
	var purchased course.Course
	if err := db.Select("id", "title").First(&purchased, o.CourseID).Error; err != nil {
		return
	}
	utils.SendOrderConfirmationEmail(owner.Email, owner.FullName(), o.OrderNumber, purchased.Title, o.Total.StringFixed(2), o.Currency)
}
