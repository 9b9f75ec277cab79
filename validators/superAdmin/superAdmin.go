package superAdminValidator

import (
	"time"

	"coursemart/middleware"
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
)

type UserListQuery struct {
	Role   string `query:"role" validate:"omitempty,oneof=student instructor admin"`
	Search string `query:"search" validate:"omitempty,max=100"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListQuery)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}

		c.Locals("list", reqData)
		return c.Next()
	}
}

type DateRangeQuery struct {
	From string `query:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to" validate:"required,datetime=2006-01-02"`
}

// DateRange is an inclusive range of whole UTC days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// StatsRange validates ?from=YYYY-MM-DD&to=YYYY-MM-DD and stores a *DateRange
// covering both days completely.
func StatsRange() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(DateRangeQuery)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}

		from, _ := time.Parse("2006-01-02", reqData.From)
		to, _ := time.Parse("2006-01-02", reqData.To)
		if to.Before(from) {
			return middleware.ValidationErrorResponse(c, map[string]string{"to": "To must not be before from!"})
		}

		c.Locals("dateRange", &DateRange{From: from, To: to.Add(24*time.Hour - time.Nanosecond)})
		return c.Next()
	}
}

type FeaturedRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

func SetFeatured() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(FeaturedRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedFeatured", reqData)
		return c.Next()
	}
}
