package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type sample struct {
	Title    string          `json:"title" validate:"required,min=3"`
	Email    string          `json:"email" validate:"omitempty,email"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Category string          `json:"category" validate:"omitempty,category"`
	Method   string          `json:"payment_method" validate:"omitempty,payment_method"`
	Address  address         `json:"billing_address"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	errs := Struct(&sample{
		Title:    "Go",
		Email:    "nope",
		Price:    decimal.NewFromInt(-1),
		Category: "cooking",
		Method:   "cash",
	})

	assert.Equal(t, "Title must be at least 3 characters long!", errs["title"])
	assert.Equal(t, "Invalid email!", errs["email"])
	assert.Equal(t, "Price must be greater than or equal to 0!", errs["price"])
	assert.Equal(t, "Invalid category!", errs["category"])
	assert.Equal(t, "Invalid payment method!", errs["payment_method"])
	assert.Equal(t, "City is required!", errs["billing_address.city"])
}

func TestStructAcceptsValidRequest(t *testing.T) {
	errs := Struct(&sample{
		Title:    "Go basics",
		Price:    decimal.NewFromInt(10),
		Category: "programming",
		Method:   "stripe",
		Address:  address{City: "Lisbon"},
	})
	assert.Empty(t, errs)
}

func TestIDParams(t *testing.T) {
	app := fiber.New()
	app.Get("/course/:id", IDParams("id"), func(c *fiber.Ctx) error {
		assert.Equal(t, uint(42), c.Locals("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/course/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	for _, bad := range []string{"0", "abc", "-3"} {
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/course/"+bad, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestBodyRejectsMalformedJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		if ok, err := Body(c, new(sample)); !ok {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Go basics","price":"12.50","billing_address":{"city":"Porto"}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
