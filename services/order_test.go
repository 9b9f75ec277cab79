package services

import (
	"context"
	"testing"
	"time"

	"coursemart/apierr"
	"coursemart/models"
	"coursemart/models/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubConfirmer struct {
	err   error
	calls []string
}

func (s *stubConfirmer) ConfirmTransaction(_ context.Context, transactionID string, _ decimal.Decimal, _ string) error {
	s.calls = append(s.calls, transactionID)
	return s.err
}

func checkout(t *testing.T, db *gorm.DB, userID, courseID uint) *order.Order {
	t.Helper()
	o, err := Checkout(db, CheckoutInput{
		UserID:        userID,
		CourseID:      courseID,
		PaymentMethod: "stripe",
		TaxRate:       0.1,
		Expiry:        24 * time.Hour,
	}, now)
	require.NoError(t, err)
	return o
}

func TestCheckoutComputesTotals(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor, withPrice(100))
	student := newUser(t, db, models.RoleStudent)

	o := checkout(t, db, student.ID, c.ID)
	assert.True(t, decimal.NewFromInt(110).Equal(o.Total), o.Total.String())
	assert.True(t, decimal.NewFromInt(10).Equal(o.TaxAmount))
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Equal(t, order.StatusPending, o.OrderStatus)
	assert.Equal(t, now.Add(24*time.Hour), o.ExpiresAt)
	assert.Regexp(t, `^ORD-`, o.OrderNumber)
}

func TestCheckoutRejections(t *testing.T) {
	db, instructor := setup(t)
	student := newUser(t, db, models.RoleStudent)
	c := newCourse(t, db, instructor)

	_, err := Checkout(db, CheckoutInput{UserID: student.ID, CourseID: c.ID, PaymentMethod: "cash"}, now)
	assert.True(t, apierr.Is(err, apierr.KindValidation))

	free := newCourse(t, db, instructor, withPrice(0))
	_, err = Checkout(db, CheckoutInput{UserID: student.ID, CourseID: free.ID, PaymentMethod: "paypal"}, now)
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))

	_, err = Enroll(db, student.ID, c.ID, now)
	require.NoError(t, err)
	_, err = Checkout(db, CheckoutInput{UserID: student.ID, CourseID: c.ID, PaymentMethod: "paypal"}, now)
	require.Error(t, err)
	assert.Equal(t, "You are already enrolled in this course", err.Error())
}

func TestPayOrderWithConfirmation(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	student := newUser(t, db, models.RoleStudent)
	o := checkout(t, db, student.ID, c.ID)

	confirmer := &stubConfirmer{err: apierr.BusinessRule("Payment could not be confirmed")}
	_, err := PayOrder(context.Background(), db, confirmer, student.ID, o.ID, "tx_1", now)
	require.Error(t, err)
	assert.Equal(t, []string{"tx_1"}, confirmer.calls)

	current, err := GetOrder(db, student.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPending, current.PaymentStatus)

	confirmer.err = nil
	paid, err := PayOrder(context.Background(), db, confirmer, student.ID, o.ID, "tx_1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, paid.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, paid.OrderStatus)
	assert.Equal(t, "tx_1", paid.TransactionID)
}

func TestOrderAccessAndTransitions(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	owner := newUser(t, db, models.RoleStudent)
	other := newUser(t, db, models.RoleStudent)
	admin := newUser(t, db, models.RoleAdmin)
	o := checkout(t, db, owner.ID, c.ID)

	_, err := CancelOrder(db, other.ID, o.ID)
	assert.True(t, apierr.Is(err, apierr.KindForbidden))
	_, err = GetOrder(db, other.ID, 123456)
	assert.True(t, apierr.Is(err, apierr.KindNotFound))

	got, err := StartOrderProcessing(db, owner.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentProcessing, got.PaymentStatus)

	got, err = RecordPaymentFailure(db, owner.ID, o.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PaymentAttempts)
	assert.Equal(t, order.PaymentProcessing, got.PaymentStatus)

	_, err = PayOrder(context.Background(), db, nil, owner.ID, o.ID, "tx_2", now)
	require.NoError(t, err)

	_, err = RefundOrder(db, owner.ID, o.ID, "re_1", decimal.NewFromInt(10), "requested", now)
	assert.True(t, apierr.Is(err, apierr.KindForbidden))

	refunded, err := RefundOrder(db, admin.ID, o.ID, "re_1", decimal.NewFromInt(10), "requested", now)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentRefunded, refunded.PaymentStatus)
	assert.Equal(t, order.StatusCancelled, refunded.OrderStatus)

	_, err = CancelOrder(db, owner.ID, o.ID)
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))
}

func TestFailOrderIsTerminal(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	owner := newUser(t, db, models.RoleStudent)
	o := checkout(t, db, owner.ID, c.ID)

	failed, err := FailOrder(db, owner.ID, o.ID, now)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentFailed, failed.PaymentStatus)

	_, err = PayOrder(context.Background(), db, nil, owner.ID, o.ID, "tx", now)
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))
}

func TestExpiredOrders(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor)
	owner := newUser(t, db, models.RoleStudent)
	stale := checkout(t, db, owner.ID, c.ID)
	paid := checkout(t, db, owner.ID, c.ID)
	_, err := PayOrder(context.Background(), db, nil, owner.ID, paid.ID, "tx_3", now)
	require.NoError(t, err)

	later := now.Add(25 * time.Hour)
	_, err = PayOrder(context.Background(), db, nil, owner.ID, stale.ID, "tx_4", later)
	require.Error(t, err)
	assert.Equal(t, "Order has expired", err.Error())

	n, err := ExpireStaleOrders(db, later)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := GetOrder(db, owner.ID, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCancelled, got.PaymentStatus)

	got, err = GetOrder(db, owner.ID, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, got.PaymentStatus)
}

func TestRevenueStatsAndListings(t *testing.T) {
	db, instructor := setup(t)
	c := newCourse(t, db, instructor, withPrice(50))
	owner := newUser(t, db, models.RoleStudent)

	a := checkout(t, db, owner.ID, c.ID)
	b := checkout(t, db, owner.ID, c.ID)
	checkout(t, db, owner.ID, c.ID)
	for _, o := range []*order.Order{a, b} {
		_, err := PayOrder(context.Background(), db, nil, owner.ID, o.ID, "tx", now)
		require.NoError(t, err)
	}

	stats, err := GetRevenueStats(db, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrderCount)
	assert.True(t, decimal.NewFromInt(110).Equal(stats.TotalRevenue), stats.TotalRevenue.String())
	assert.True(t, decimal.NewFromInt(55).Equal(stats.AverageOrderValue), stats.AverageOrderValue.String())

	mine, err := ListUserOrders(db, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	pending, page, err := ListOrdersByStatus(db, order.PaymentPending, 1, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, int64(1), page.Total)
}
