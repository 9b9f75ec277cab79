package services

import (
	"context"
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/order"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentConfirmer checks a transaction id with the payment provider before
// an order is marked paid.
type PaymentConfirmer interface {
	ConfirmTransaction(ctx context.Context, transactionID string, amount decimal.Decimal, currency string) error
}

type CheckoutInput struct {
	UserID         uint
	CourseID       uint
	PaymentMethod  string
	CouponCode     string
	BillingAddress order.BillingAddress
	Notes          string
	Metadata       map[string]interface{}
	IPAddress      string
	UserAgent      string
	TaxRate        float64
	Expiry         time.Duration
}

// Checkout opens a pending order for the course at its current price.
func Checkout(db *gorm.DB, in CheckoutInput, now time.Time) (*order.Order, error) {
	if !order.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, apierr.Validation("payment_method", "Payment method must be one of stripe, paypal, bank_transfer, crypto")
	}
	if _, err := LoadActiveUser(db, in.UserID); err != nil {
		return nil, err
	}
	c, err := loadCourse(db, in.CourseID)
	if err != nil {
		return nil, err
	}
	if !c.IsAvailable() {
		return nil, apierr.BusinessRule("Course is not available for purchase")
	}
	enrolled, err := IsEnrolled(db, in.UserID, in.CourseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apierr.BusinessRule(msgAlreadyEnrolled)
	}
	if c.Price.IsZero() {
		return nil, apierr.BusinessRule("Free courses do not require payment")
	}

	o := order.Order{
		OrderNumber:    order.NewOrderNumber(now),
		UserID:         in.UserID,
		CourseID:       in.CourseID,
		Amount:         c.Price,
		TaxAmount:      c.Price.Mul(decimal.NewFromFloat(in.TaxRate)).Round(2),
		DiscountAmount: decimal.Zero,
		CouponCode:     strings.ToUpper(strings.TrimSpace(in.CouponCode)),
		CouponDiscount: decimal.Zero,
		Currency:       c.Currency,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  order.PaymentPending,
		OrderStatus:    order.StatusPending,
		BillingAddress: in.BillingAddress,
		Notes:          in.Notes,
		Metadata:       datatypes.JSONMap(in.Metadata),
		IPAddress:      in.IPAddress,
		UserAgent:      in.UserAgent,
		ExpiresAt:      now.Add(in.Expiry),
	}
	o.CalculateTotals()

	if err := db.Create(&o).Error; err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return &o, nil
}

// GetOrder returns an order visible to the actor.
func GetOrder(db *gorm.DB, actorID, orderID uint) (*order.Order, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	var o order.Order
	if err := db.Preload("Course").First(&o, orderID).Error; err != nil {
		return nil, notFoundOr(err, msgOrderNotFound, "load order")
	}
	if err := checkOrderAccess(actor, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func checkOrderAccess(actor *models.User, o *order.Order) error {
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return apierr.Forbidden("You are not allowed to access this order")
	}
	return nil
}

// transitionOrder locks the order, checks access and applies fn. The row is
// saved only when fn succeeds.
func transitionOrder(db *gorm.DB, actorID, orderID uint, fn func(o *order.Order) error) (*order.Order, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	var o order.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&o, orderID).Error; err != nil {
			return notFoundOr(err, msgOrderNotFound, "lock order")
		}
		if err := checkOrderAccess(actor, &o); err != nil {
			return err
		}
		if err := fn(&o); err != nil {
			return err
		}
		return errors.Wrap(tx.Save(&o).Error, "save order")
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func StartOrderProcessing(db *gorm.DB, actorID, orderID uint) (*order.Order, error) {
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.StartProcessing()
	})
}

// PayOrder confirms the transaction with the provider when a confirmer is
// given, then moves the order to completed.
func PayOrder(ctx context.Context, db *gorm.DB, confirmer PaymentConfirmer, actorID, orderID uint, transactionID string, now time.Time) (*order.Order, error) {
	current, err := GetOrder(db, actorID, orderID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, apierr.Validation("transaction_id", "Transaction ID is required")
	}
	if confirmer != nil && current.IsOpen() && !current.IsExpired(now) {
		if err := confirmer.ConfirmTransaction(ctx, transactionID, current.Total, current.Currency); err != nil {
			return nil, err
		}
	}
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.MarkAsPaid(transactionID, now)
	})
}

func RecordPaymentFailure(db *gorm.DB, actorID, orderID uint, now time.Time) (*order.Order, error) {
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.RecordFailedAttempt(now)
	})
}

func FailOrder(db *gorm.DB, actorID, orderID uint, now time.Time) (*order.Order, error) {
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.MarkAsFailed(now)
	})
}

func CancelOrder(db *gorm.DB, actorID, orderID uint) (*order.Order, error) {
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.Cancel()
	})
}

// RefundOrder is reserved for admins.
func RefundOrder(db *gorm.DB, actorID, orderID uint, refundID string, amount decimal.Decimal, reason string, now time.Time) (*order.Order, error) {
	actor, err := LoadActiveUser(db, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apierr.Forbidden("Only admins can refund orders")
	}
	return transitionOrder(db, actorID, orderID, func(o *order.Order) error {
		return o.MarkAsRefunded(refundID, amount, reason, now)
	})
}

// ExpireStaleOrders cancels every open order whose expiry has passed and
// returns how many were cancelled.
func ExpireStaleOrders(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&order.Order{}).
		Where("payment_status IN ? AND expires_at < ?", []string{order.PaymentPending, order.PaymentProcessing}, now).
		Updates(map[string]interface{}{
			"payment_status": order.PaymentCancelled,
			"order_status":   order.StatusCancelled,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "expire stale orders")
	}
	return res.RowsAffected, nil
}

func ListUserOrders(db *gorm.DB, userID uint) ([]order.Order, error) {
	var orders []order.Order
	err := db.Where("user_id = ?", userID).Preload("Course").Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}
	return orders, nil
}

// ListOrdersByStatus pages through orders, optionally filtered by payment status.
func ListOrdersByStatus(db *gorm.DB, status string, page, limit int) ([]order.Order, Pagination, error) {
	page, limit = NormalizePage(page, limit)
	q := db.Model(&order.Order{})
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, errors.Wrap(err, "count orders")
	}
	var orders []order.Order
	err := q.Preload("User").Preload("Course").Order("created_at desc, id desc").
		Offset((page - 1) * limit).Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, Pagination{}, errors.Wrap(err, "list orders")
	}
	return orders, NewPagination(page, limit, total), nil
}
