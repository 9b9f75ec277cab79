package order

import (
	"testing"
	"time"

	"coursemart/apierr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func newOrder() *Order {
	o := &Order{
		Amount:         decimal.NewFromInt(100),
		TaxAmount:      decimal.NewFromInt(10),
		DiscountAmount: decimal.NewFromInt(5),
		PaymentStatus:  PaymentPending,
		OrderStatus:    StatusPending,
		ExpiresAt:      base.Add(24 * time.Hour),
	}
	o.CalculateTotals()
	return o
}

func TestCalculateTotalsAndPay(t *testing.T) {
	o := newOrder()
	assert.True(t, decimal.NewFromInt(105).Equal(o.Total), o.Total.String())
	assert.True(t, decimal.NewFromInt(100).Equal(o.Subtotal))

	require.NoError(t, o.MarkAsPaid("tx_1", base.Add(time.Hour)))
	assert.Equal(t, PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, StatusConfirmed, o.OrderStatus)
	assert.Equal(t, "tx_1", o.TransactionID)
	assert.True(t, o.IsPaid())
	require.NotNil(t, o.PaidAt)
}

func TestCouponDiscountReducesTotal(t *testing.T) {
	o := newOrder()
	o.CouponDiscount = decimal.RequireFromString("2.50")
	o.CalculateTotals()
	assert.Equal(t, "102.5", o.Total.String())
}

func TestMarkAsPaidRules(t *testing.T) {
	o := newOrder()
	err := o.MarkAsPaid("  ", base)
	assert.True(t, apierr.Is(err, apierr.KindValidation))

	err = o.MarkAsPaid("tx_1", base.Add(25*time.Hour))
	require.Error(t, err)
	assert.Equal(t, "Order has expired", err.Error())
	assert.Equal(t, PaymentPending, o.PaymentStatus)

	require.NoError(t, o.Cancel())
	err = o.MarkAsPaid("tx_1", base)
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))
}

func TestProcessingThenPaid(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.StartProcessing())
	assert.Equal(t, PaymentProcessing, o.PaymentStatus)
	assert.Equal(t, StatusProcessing, o.OrderStatus)

	assert.Error(t, o.StartProcessing())
	require.NoError(t, o.MarkAsPaid("tx_9", base))
}

func TestFailedAttemptsAndFailure(t *testing.T) {
	o := newOrder()
	require.NoError(t, o.RecordFailedAttempt(base))
	require.NoError(t, o.RecordFailedAttempt(base.Add(time.Minute)))
	assert.Equal(t, 2, o.PaymentAttempts)
	assert.Equal(t, PaymentPending, o.PaymentStatus)

	require.NoError(t, o.MarkAsFailed(base.Add(2*time.Minute)))
	assert.Equal(t, PaymentFailed, o.PaymentStatus)
	assert.Equal(t, 3, o.PaymentAttempts)

	// failed is terminal
	assert.Error(t, o.MarkAsPaid("tx", base))
	assert.Error(t, o.Cancel())
	assert.Error(t, o.RecordFailedAttempt(base))
}

func TestRefund(t *testing.T) {
	o := newOrder()
	err := o.MarkAsRefunded("re_1", decimal.NewFromInt(10), "changed mind", base)
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))

	require.NoError(t, o.MarkAsPaid("tx_1", base))

	err = o.MarkAsRefunded("re_1", decimal.NewFromInt(200), "changed mind", base)
	assert.True(t, apierr.Is(err, apierr.KindValidation))
	err = o.MarkAsRefunded("re_1", decimal.NewFromInt(50), "", base)
	assert.True(t, apierr.Is(err, apierr.KindValidation))

	require.NoError(t, o.MarkAsRefunded("re_1", decimal.NewFromInt(105), "changed mind", base))
	assert.Equal(t, PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, StatusCancelled, o.OrderStatus)
	assert.True(t, o.IsRefunded())
	assert.False(t, o.IsPaid())

	assert.Error(t, o.MarkAsRefunded("re_2", decimal.NewFromInt(1), "again", base))
}

func TestIsExpiredOnlyForOpenOrders(t *testing.T) {
	o := newOrder()
	late := base.Add(48 * time.Hour)
	assert.True(t, o.IsExpired(late))

	require.NoError(t, o.Cancel())
	assert.False(t, o.IsExpired(late))
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber(base)
	assert.Regexp(t, `^ORD-\d+-[0-9A-F]{8}$`, n)
}
