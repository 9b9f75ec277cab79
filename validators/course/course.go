package courseValidator

import (
	"time"

	"coursemart/middleware"
	"coursemart/models"
	"coursemart/models/course"
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CourseListQuery struct {
	Category  string   `query:"category" validate:"omitempty,category"`
	Level     string   `query:"level" validate:"omitempty,level"`
	Search    string   `query:"search" validate:"omitempty,max=100"`
	MinPrice  *float64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `query:"max_price" validate:"omitempty,gte=0"`
	MinRating *float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
	Sort      string   `query:"sort" validate:"omitempty,oneof=price rating students date"`
	Order     string   `query:"order" validate:"omitempty,oneof=asc desc"`
	Page      int      `query:"page" validate:"omitempty,min=1"`
	Limit     int      `query:"limit" validate:"omitempty,min=1,max=100"`
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListQuery)
		if ok, err := validators.Query(c, reqData); !ok {
			return err
		}
		if reqData.MinPrice != nil && reqData.MaxPrice != nil && *reqData.MaxPrice < *reqData.MinPrice {
			return middleware.ValidationErrorResponse(c, map[string]string{"max_price": "Max price must not be below min price!"})
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

// CategoryParam checks the :category route param.
func CategoryParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !course.IsValidCategory(c.Params("category")) {
			return middleware.ValidationErrorResponse(c, map[string]string{"category": "Invalid category!"})
		}
		return c.Next()
	}
}

// CourseRequest is the full editable course document. Updates replace every
// field.
type CourseRequest struct {
	Title               string           `json:"title" validate:"required,min=3,max=200"`
	Description         string           `json:"description" validate:"required,min=10,max=5000"`
	ShortDescription    string           `json:"short_description" validate:"omitempty,max=300"`
	Category            string           `json:"category" validate:"required,category"`
	Subcategory         string           `json:"subcategory" validate:"omitempty,max=100"`
	Level               string           `json:"level" validate:"required,level"`
	Language            string           `json:"language" validate:"omitempty,max=50"`
	Price               decimal.Decimal  `json:"price" validate:"gte=0"`
	OriginalPrice       *decimal.Decimal `json:"original_price" validate:"omitempty,gte=0"`
	Currency            string           `json:"currency" validate:"omitempty,len=3"`
	Requirements        []string         `json:"requirements" validate:"omitempty,dive,max=300"`
	LearningOutcomes    []string         `json:"learning_outcomes" validate:"omitempty,dive,max=300"`
	TargetAudience      []string         `json:"target_audience" validate:"omitempty,dive,max=300"`
	Tags                []string         `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	MaxStudents         *int             `json:"max_students" validate:"omitempty,min=1"`
	EnrollmentDeadline  *time.Time       `json:"enrollment_deadline"`
	StartDate           *time.Time       `json:"start_date"`
	EndDate             *time.Time       `json:"end_date"`
	CertificatesEnabled *bool            `json:"certificates_enabled"`
	CertificateTemplate string           `json:"certificate_template" validate:"omitempty,max=100"`
	CompletionRate      *float64         `json:"completion_rate" validate:"omitempty,gte=0,lte=100"`
	MinimumScore        *float64         `json:"minimum_score" validate:"omitempty,gte=0,lte=100"`
	MetaTitle           string           `json:"meta_title" validate:"omitempty,max=60"`
	MetaDescription     string           `json:"meta_description" validate:"omitempty,max=160"`
}

func SaveCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		if reqData.StartDate != nil && reqData.EndDate != nil && reqData.EndDate.Before(*reqData.StartDate) {
			return middleware.ValidationErrorResponse(c, map[string]string{"end_date": "End date must not be before start date!"})
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

type MediaRequest struct {
	Thumbnail    *models.MediaRef `json:"thumbnail"`
	PreviewVideo *models.VideoRef `json:"preview_video"`
}

func SetMedia() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MediaRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}
		if reqData.Thumbnail == nil && reqData.PreviewVideo == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"thumbnail": "Thumbnail or preview video is required!"})
		}

		c.Locals("validatedMedia", reqData)
		return c.Next()
	}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

func AddReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}
