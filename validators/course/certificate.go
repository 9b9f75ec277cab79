package courseValidator

import (
	"coursemart/middleware"
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
)

// IssueCertificateRequest names the learner to certify. UserID defaults to
// the caller.
type IssueCertificateRequest struct {
	UserID         uint                   `json:"user_id"`
	Score          *float64               `json:"score" validate:"required,gte=0,lte=100"`
	CompletionRate *float64               `json:"completion_rate" validate:"omitempty,gte=0,lte=100"`
	Template       string                 `json:"template" validate:"omitempty,max=100"`
	Metadata       map[string]interface{} `json:"metadata"`
}

func IssueCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(IssueCertificateRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedCertificate", reqData)
		return c.Next()
	}
}

type RevokeRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

func RevokeCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RevokeRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedRevoke", reqData)
		return c.Next()
	}
}

// CertificateIDParam checks the public CERT-... identifier.
func CertificateIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &struct {
			CertificateID string `json:"certificate_id" validate:"required,startswith=CERT-,max=64"`
		}{CertificateID: c.Params("certificate_id")}
		if errs := validators.Struct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals("certificateId", reqData.CertificateID)
		return c.Next()
	}
}
