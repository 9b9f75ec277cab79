package orderValidator

import (
	"coursemart/models/order"
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type BillingAddressRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Address   string `json:"address" validate:"omitempty,max=200"`
	City      string `json:"city" validate:"omitempty,max=100"`
	State     string `json:"state" validate:"omitempty,max=100"`
	Country   string `json:"country" validate:"omitempty,max=100"`
	ZipCode   string `json:"zip_code" validate:"omitempty,max=20"`
}

func (b BillingAddressRequest) Model() order.BillingAddress {
	return order.BillingAddress{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Email:     b.Email,
		Phone:     b.Phone,
		Address:   b.Address,
		City:      b.City,
		State:     b.State,
		Country:   b.Country,
		ZipCode:   b.ZipCode,
	}
}

type CheckoutRequest struct {
	CourseID       uint                   `json:"course_id" validate:"required,min=1"`
	PaymentMethod  string                 `json:"payment_method" validate:"required,payment_method"`
	CouponCode     string                 `json:"coupon_code" validate:"omitempty,max=50"`
	BillingAddress BillingAddressRequest  `json:"billing_address"`
	Notes          string                 `json:"notes" validate:"omitempty,max=500"`
	Metadata       map[string]interface{} `json:"metadata"`
}

func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CheckoutRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedCheckout", reqData)
		return c.Next()
	}
}

type PayRequest struct {
	TransactionID string `json:"transaction_id" validate:"required,max=200"`
}

func Pay() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PayRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}

type RefundRequest struct {
	RefundID string          `json:"refund_id" validate:"required,max=200"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Reason   string          `json:"reason" validate:"required,max=500"`
}

func Refund() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RefundRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedRefund", reqData)
		return c.Next()
	}
}

type OrderListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending processing completed failed refunded cancelled"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

func OrderList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(OrderListQuery)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}

		c.Locals("validatedOrderList", reqData)
		return c.Next()
	}
}
