package order

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/course"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment status values.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
	PaymentCancelled  = "cancelled"
)

// Order status values.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var PaymentMethods = []string{"stripe", "paypal", "bank_transfer", "crypto"}

type BillingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zip_code"`
}

type Order struct {
	gorm.Model
	OrderNumber        string              `json:"order_number" gorm:"uniqueIndex;size:64;not null"`
	UserID             uint                `json:"user_id" gorm:"index;not null"`
	User               *models.User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CourseID           uint                `json:"course_id" gorm:"index;not null"`
	Course             *course.Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Amount             decimal.Decimal     `json:"amount" gorm:"type:decimal(12,2);not null"`
	Subtotal           decimal.Decimal     `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount          decimal.Decimal     `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	CouponCode         string              `json:"coupon_code" gorm:"size:50"`
	CouponDiscount     decimal.Decimal     `json:"coupon_discount" gorm:"type:decimal(12,2);not null"`
	Total              decimal.Decimal     `json:"total" gorm:"type:decimal(12,2);not null"`
	Currency           string              `json:"currency" gorm:"size:3;default:'USD'"`
	PaymentMethod      string              `json:"payment_method" gorm:"size:20;not null"`
	PaymentStatus      string              `json:"payment_status" gorm:"size:20;index;default:'pending'"`
	OrderStatus        string              `json:"order_status" gorm:"size:20;default:'pending'"`
	TransactionID      string              `json:"transaction_id" gorm:"index"`
	PaidAt             *time.Time          `json:"paid_at"`
	RefundID           string              `json:"refund_id"`
	RefundAmount       decimal.NullDecimal `json:"refund_amount" gorm:"type:decimal(12,2)"`
	RefundReason       string              `json:"refund_reason"`
	RefundedAt         *time.Time          `json:"refunded_at"`
	BillingAddress     BillingAddress      `json:"billing_address" gorm:"embedded;embeddedPrefix:billing_"`
	Notes              string              `json:"notes" gorm:"size:500"`
	Metadata           datatypes.JSONMap   `json:"metadata"`
	IPAddress          string              `json:"ip_address"`
	UserAgent          string              `json:"user_agent"`
	PaymentAttempts    int                 `json:"payment_attempts" gorm:"default:0"`
	LastPaymentAttempt *time.Time          `json:"last_payment_attempt"`
	ExpiresAt          time.Time           `json:"expires_at" gorm:"index;not null"`
}

// NewOrderNumber builds ORD-<unix ms>-<8 upper hex>.
func NewOrderNumber(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(random))
}

func IsValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// CalculateTotals sets subtotal to amount and total to
// subtotal + tax - discount - coupon discount.
func (o *Order) CalculateTotals() {
	o.Subtotal = o.Amount
	o.Total = o.Subtotal.Add(o.TaxAmount).Sub(o.DiscountAmount).Sub(o.CouponDiscount)
}

func (o *Order) IsPaid() bool { return o.PaymentStatus == PaymentCompleted }

func (o *Order) IsRefunded() bool { return o.PaymentStatus == PaymentRefunded }

// IsOpen reports whether payment may still progress.
func (o *Order) IsOpen() bool {
	return o.PaymentStatus == PaymentPending || o.PaymentStatus == PaymentProcessing
}

// IsExpired is evaluated at read time; only open orders expire.
func (o *Order) IsExpired(now time.Time) bool {
	return o.IsOpen() && !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}

func (o *Order) transitionError(action string) error {
	return apierr.BusinessRule(fmt.Sprintf("Cannot %s an order with payment status %s", action, o.PaymentStatus))
}

func (o *Order) StartProcessing() error {
	if o.PaymentStatus != PaymentPending {
		return o.transitionError("process")
	}
	o.PaymentStatus = PaymentProcessing
	o.OrderStatus = StatusProcessing
	return nil
}

// MarkAsPaid is the only way into the completed payment status.
func (o *Order) MarkAsPaid(transactionID string, now time.Time) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return apierr.Validation("transaction_id", "Transaction ID is required")
	}
	if !o.IsOpen() {
		return o.transitionError("pay")
	}
	if o.IsExpired(now) {
		return apierr.BusinessRule("Order has expired")
	}
	o.PaymentStatus = PaymentCompleted
	o.OrderStatus = StatusConfirmed
	o.TransactionID = transactionID
	o.PaidAt = &now
	return nil
}

// RecordFailedAttempt counts a declined payment without leaving the open states.
func (o *Order) RecordFailedAttempt(now time.Time) error {
	if !o.IsOpen() {
		return o.transitionError("record a payment attempt on")
	}
	o.PaymentAttempts++
	o.LastPaymentAttempt = &now
	return nil
}

func (o *Order) MarkAsFailed(now time.Time) error {
	if !o.IsOpen() {
		return o.transitionError("fail")
	}
	o.PaymentAttempts++
	o.LastPaymentAttempt = &now
	o.PaymentStatus = PaymentFailed
	return nil
}

func (o *Order) MarkAsRefunded(refundID string, amount decimal.Decimal, reason string, now time.Time) error {
	if o.PaymentStatus != PaymentCompleted {
		return o.transitionError("refund")
	}
	if strings.TrimSpace(refundID) == "" {
		return apierr.Validation("refund_id", "Refund ID is required")
	}
	if !amount.IsPositive() || amount.GreaterThan(o.Total) {
		return apierr.Validation("amount", "Refund amount must be greater than 0 and at most the order total")
	}
	if strings.TrimSpace(reason) == "" {
		return apierr.Validation("reason", "Refund reason is required")
	}
	o.PaymentStatus = PaymentRefunded
	o.OrderStatus = StatusCancelled
	o.RefundID = strings.TrimSpace(refundID)
	o.RefundAmount = decimal.NewNullDecimal(amount)
	o.RefundReason = strings.TrimSpace(reason)
	o.RefundedAt = &now
	return nil
}

func (o *Order) Cancel() error {
	if !o.IsOpen() {
		return o.transitionError("cancel")
	}
	o.PaymentStatus = PaymentCancelled
	o.OrderStatus = StatusCancelled
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		IsPaid     bool `json:"is_paid"`
		IsRefunded bool `json:"is_refunded"`
		IsExpired  bool `json:"is_expired"`
	}{
		plain:      plain(o),
		IsPaid:     o.IsPaid(),
		IsRefunded: o.IsRefunded(),
		IsExpired:  o.IsExpired(time.Now()),
	})
}
