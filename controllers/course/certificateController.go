package controllers

import (
	"time"

	"coursemart/config"
	"coursemart/database"
	"coursemart/middleware"
	"coursemart/services"
	"coursemart/utils"
	courseValidator "coursemart/validators/course"

	"github.com/gofiber/fiber/v2"
)

// RequestCertificate issues the certificate for a finished enrollment. The
// learner requests their own; the course owner or an admin may name a
// user_id.
func RequestCertificate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCertificate").(*courseValidator.IssueCertificateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	actorID := middleware.CurrentUserID(c)
	learnerID := reqData.UserID
	if learnerID == 0 {
		learnerID = actorID
	}

	db := database.Database.Db
	cert, err := services.IssueCertificate(db, services.IssueInput{
		ActorID:        actorID,
		UserID:         learnerID,
		CourseID:       c.Locals("id").(uint),
		Score:          *reqData.Score,
		CompletionRate: reqData.CompletionRate,
		Template:       reqData.Template,
		Metadata:       reqData.Metadata,
		BaseURL:        config.AppConfig.PublicBaseURL,
		Now:            time.Now(),
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if learner, err := services.LoadActiveUser(db, learnerID); err == nil && cert.Course != nil {
		utils.SendCertificateEmail(learner.Email, learner.FullName(), cert.Course.Title, cert.CertificateID, cert.VerificationURL)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully!", cert)
}

// VerifyCertificatePublic is the unauthenticated lookup behind the
// verification URL.
func VerifyCertificatePublic(c *fiber.Ctx) error {
	cert, err := services.LookupCertificate(database.Database.Db, c.Locals("certificateId").(string))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid.", cert)
}

func VerifyCertificate(c *fiber.Ctx) error {
	cert, err := services.VerifyCertificate(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified successfully!", cert)
}

func RevokeCertificate(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRevoke").(*courseValidator.RevokeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	cert, err := services.RevokeCertificate(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), reqData.Reason, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked successfully!", cert)
}

func ReactivateCertificate(c *fiber.Ctx) error {
	cert, err := services.ReactivateCertificate(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate reactivated successfully!", cert)
}

func GetCourseCertificates(c *fiber.Ctx) error {
	certs, err := services.ListCourseCertificates(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certs)
}
