package middleware

import (
	"coursemart/apierr"
	"coursemart/logger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, success bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusBadRequest, false, "Validation failed!", errors)
}

// ErrorResponse answers with the status an apierr.Error carries. Anything
// else is logged and reported as a 500.
func ErrorResponse(c *fiber.Ctx, err error) error {
	if e, ok := apierr.As(err); ok {
		if e.Kind == apierr.KindValidation && e.Field != "" {
			return JsonResponse(c, e.Status, false, e.Error(), map[string]string{e.Field: e.Error()})
		}
		return JsonResponse(c, e.Status, false, e.Error(), nil)
	}

	logger.L().Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"user_id", CurrentUserID(c),
		"error", err.Error(),
	)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}
