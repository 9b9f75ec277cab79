// Package validators holds the request validation shared by the per-route
// validator middlewares.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coursemart/middleware"
	"coursemart/models/course"
	"coursemart/models/order"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by the name clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return course.IsValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return course.IsValidLevel(fl.Field().String())
	})
	_ = v.RegisterValidation("lesson_type", func(fl validator.FieldLevel) bool {
		return course.IsValidLessonType(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return order.IsValidPaymentMethod(fl.Field().String())
	})
	return v
}

// Struct validates req and returns one message per failing field, keyed by
// the field's JSON path. An empty map means the request is valid.
func Struct(req interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(req)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["request"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := errs[key]; !seen {
			errs[key] = message(fe)
		}
	}
	return errs
}

func label(field string) string {
	words := strings.Split(field, "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	return strings.Join(words, " ")
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", name)
	case "email":
		return "Invalid email!"
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", name)
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters long!", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items!", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", name, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters long!", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items!", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s!", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s!", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as %s!", name, fe.Param())
	case "category":
		return "Invalid category!"
	case "level":
		return "Invalid level!"
	case "lesson_type":
		return "Lesson type must be one of video, text, quiz, assignment!"
	case "payment_method":
		return "Invalid payment method!"
	}
	return fmt.Sprintf("%s is invalid!", name)
}

// Body parses the request body into req and validates it. It writes the
// error response itself and reports false when the request was rejected.
func Body(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errs := Struct(req); len(errs) > 0 {
		return false, middleware.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

// Query is Body for query strings.
func Query(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.QueryParser(req); err != nil {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}
	if errs := Struct(req); len(errs) > 0 {
		return false, middleware.ValidationErrorResponse(c, errs)
	}
	return true, nil
}

// PageQuery is the page/limit pair accepted by every listing.
type PageQuery struct {
	Page  int `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// Pagination validates page/limit and stores the *PageQuery under
// Locals("pagination").
func Pagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PageQuery)
		if ok, err := Query(c, reqData); !ok {
			return err
		}
		c.Locals("pagination", reqData)
		return c.Next()
	}
}

// IDParams checks that each named route param is a positive integer and
// stores it as a uint under Locals(name).
func IDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := make(map[string]string)
		for _, name := range names {
			id, err := strconv.ParseUint(c.Params(name), 10, 64)
			if err != nil || id == 0 {
				errs[name] = fmt.Sprintf("Invalid %s!", label(name))
				continue
			}
			c.Locals(name, uint(id))
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		return c.Next()
	}
}
