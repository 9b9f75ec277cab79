package controllers

import (
	"coursemart/database"
	"coursemart/middleware"
	"coursemart/services"
	courseValidator "coursemart/validators/course"
	superAdminValidator "coursemart/validators/superAdmin"

	"github.com/gofiber/fiber/v2"
)

func courseInput(r *courseValidator.CourseRequest) services.CourseInput {
	return services.CourseInput{
		Title:               r.Title,
		Description:         r.Description,
		ShortDescription:    r.ShortDescription,
		Category:            r.Category,
		Subcategory:         r.Subcategory,
		Level:               r.Level,
		Language:            r.Language,
		Price:               r.Price,
		OriginalPrice:       r.OriginalPrice,
		Currency:            r.Currency,
		Requirements:        r.Requirements,
		LearningOutcomes:    r.LearningOutcomes,
		TargetAudience:      r.TargetAudience,
		Tags:                r.Tags,
		MaxStudents:         r.MaxStudents,
		EnrollmentDeadline:  r.EnrollmentDeadline,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		CertificatesEnabled: r.CertificatesEnabled,
		CertificateTemplate: r.CertificateTemplate,
		CompletionRate:      r.CompletionRate,
		MinimumScore:        r.MinimumScore,
		MetaTitle:           r.MetaTitle,
		MetaDescription:     r.MetaDescription,
	}
}

func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	created, err := services.CreateCourse(database.Database.Db, middleware.CurrentUserID(c), courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", created)
}

func UpdateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updated, err := services.UpdateCourse(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

// DeleteCourse archives the course.
func DeleteCourse(c *fiber.Ctx) error {
	archived, err := services.ArchiveCourse(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course archived successfully!", archived)
}

func PublishCourse(c *fiber.Ctx) error {
	published, err := services.PublishCourse(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", published)
}

func SetCourseMedia(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedMedia").(*courseValidator.MediaRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updated, err := services.SetMedia(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), reqData.Thumbnail, reqData.PreviewVideo)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course media updated successfully!", updated)
}

func SetFeatured(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedFeatured").(*superAdminValidator.FeaturedRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	updated, err := services.SetFeatured(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), *reqData.Featured)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course featured flag updated!", updated)
}
