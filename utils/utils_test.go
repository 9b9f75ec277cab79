package utils

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursemart/apierr"
	"coursemart/database"
	"coursemart/models"
	"coursemart/models/course"
	"coursemart/models/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatewayServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/tx_1", r.URL.Path)
		assert.Equal(t, "Bearer gw-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConfirmTransaction(t *testing.T) {
	total := decimal.RequireFromString("105.00")

	srv := gatewayServer(t, http.StatusOK, `{"id":"tx_1","status":"succeeded","amount":"105.00","currency":"usd"}`)
	gw := NewPaymentGateway(srv.URL, "gw-key")
	assert.NoError(t, gw.ConfirmTransaction(context.Background(), "tx_1", total, "USD"))

	srv = gatewayServer(t, http.StatusOK, `{"id":"tx_1","status":"succeeded","amount":"99.00","currency":"USD"}`)
	err := NewPaymentGateway(srv.URL, "gw-key").ConfirmTransaction(context.Background(), "tx_1", total, "USD")
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))

	srv = gatewayServer(t, http.StatusOK, `{"id":"tx_1","status":"pending","amount":"105.00","currency":"USD"}`)
	err = NewPaymentGateway(srv.URL, "gw-key").ConfirmTransaction(context.Background(), "tx_1", total, "USD")
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))

	srv = gatewayServer(t, http.StatusNotFound, `{"error":"not found"}`)
	err = NewPaymentGateway(srv.URL, "gw-key").ConfirmTransaction(context.Background(), "tx_1", total, "USD")
	assert.True(t, apierr.Is(err, apierr.KindBusinessRule))

	srv = gatewayServer(t, http.StatusBadGateway, `{}`)
	err = NewPaymentGateway(srv.URL, "gw-key").ConfirmTransaction(context.Background(), "tx_1", total, "USD")
	require.Error(t, err)
	_, isAPIErr := apierr.As(err)
	assert.False(t, isAPIErr)
}

func TestMailerSend(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := &Mailer{APIKey: "sg-key", Host: srv.URL, FromEmail: "no-reply@example.com", FromName: "CourseMart", Timeout: time.Second}
	require.NoError(t, m.Send(context.Background(), "ada@example.com", "Ada", "Hello", "<p>hi</p>"))
	assert.Equal(t, "Hello", got["subject"])
	assert.Equal(t, "no-reply@example.com", got["from"].(map[string]interface{})["email"])
}

func TestMailerWithoutKeySkips(t *testing.T) {
	var m *Mailer
	assert.False(t, m.Enabled())
	assert.NoError(t, m.Send(context.Background(), "ada@example.com", "Ada", "Hello", "<p>hi</p>"))
}

func TestExpireOrders(t *testing.T) {
	db := database.OpenTestDB(t)
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	u := &models.User{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "x", Role: models.RoleInstructor, IsActive: true}
	require.NoError(t, db.Create(u).Error)
	c := &course.Course{Title: "Go", Slug: "go", Description: "Go course", InstructorID: u.ID, Category: "programming", Level: "beginner", Price: decimal.NewFromInt(10)}
	c.ApplyDefaults()
	require.NoError(t, db.Create(c).Error)

	mk := func(number string, status string, expires time.Time) {
		o := &order.Order{OrderNumber: number, UserID: u.ID, CourseID: c.ID, Amount: decimal.NewFromInt(10), PaymentMethod: "stripe", PaymentStatus: status, OrderStatus: order.StatusPending, ExpiresAt: expires}
		o.CalculateTotals()
		require.NoError(t, db.Create(o).Error)
	}
	mk("ORD-1", order.PaymentPending, now.Add(-time.Minute))
	mk("ORD-2", order.PaymentProcessing, now.Add(-time.Hour))
	mk("ORD-3", order.PaymentPending, now.Add(time.Hour))
	mk("ORD-4", order.PaymentCompleted, now.Add(-time.Hour))

	assert.Equal(t, int64(2), ExpireOrders(db, now))

	var cancelled int64
	require.NoError(t, db.Model(&order.Order{}).Where("payment_status = ?", order.PaymentCancelled).Count(&cancelled).Error)
	assert.Equal(t, int64(2), cancelled)
}

func TestOrderSchedulerOff(t *testing.T) {
	c, err := InitializeOrderScheduler(nil, "off")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = InitializeOrderScheduler(nil, "not a schedule")
	assert.Error(t, err)
}

func TestNilCacheMisses(t *testing.T) {
	var c *Cache
	var dst []string
	assert.False(t, c.Get(context.Background(), "k", &dst))
	c.Set(context.Background(), "k", []string{"a"})
	c.Delete(context.Background(), "k*")
	assert.NoError(t, c.Close())

	c, err := NewCache("", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, c)
}
