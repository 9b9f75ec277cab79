package courseValidator

import (
	"coursemart/models/course"
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
)

type SectionRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Order       int    `json:"order" validate:"gte=0"`
}

func AddSection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SectionRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedSection", reqData)
		return c.Next()
	}
}

type LessonRequest struct {
	Title       string                 `json:"title" validate:"required,min=1,max=200"`
	Description string                 `json:"description" validate:"omitempty,max=2000"`
	Type        string                 `json:"type" validate:"required,lesson_type"`
	Content     map[string]interface{} `json:"content"`
	Order       int                    `json:"order" validate:"gte=0"`
	IsPreview   bool                   `json:"is_preview"`
	Duration    int                    `json:"duration" validate:"gte=0"`
	Resources   []course.Resource      `json:"resources" validate:"omitempty,max=20"`
}

func SaveLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}
