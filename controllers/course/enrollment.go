package controllers

import (
	"time"

	"coursemart/config"
	"coursemart/database"
	"coursemart/logger"
	"coursemart/middleware"
	"coursemart/services"
	"coursemart/utils"
	courseValidator "coursemart/validators/course"

	"github.com/gofiber/fiber/v2"
)

func EnrollInCourse(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	courseID := c.Locals("id").(uint)

	db := database.Database.Db
	enrollment, err := services.Enroll(db, userID, courseID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if user, err := services.LoadActiveUser(db, userID); err == nil && enrollment.Course != nil {
		utils.SendEnrollmentEmail(user.Email, user.FullName(), enrollment.Course.Title, config.AppConfig.PublicBaseURL+enrollment.Course.URL())
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

func GetUserProgress(c *fiber.Ctx) error {
	courseID := c.Locals("id").(uint)

	progress, err := services.GetCourseProgress(database.Database.Db, middleware.CurrentUserID(c), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"course_id": courseID,
		"progress":  progress,
	})
}

func MarkLessonComplete(c *fiber.Ctx) error {
	courseID := c.Locals("course_id").(uint)
	lessonID := c.Locals("lesson_id").(uint)

	enrollment, err := services.CompleteLesson(database.Database.Db, middleware.CurrentUserID(c), courseID, lessonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as complete!", enrollment)
}

func AddReview(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReview").(*courseValidator.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	courseID := c.Locals("id").(uint)

	review, err := services.AddReview(database.Database.Db, middleware.CurrentUserID(c), courseID, reqData.Rating, reqData.Comment, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	// featured listing is ordered by rating
	invalidateFeatured(c)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review saved successfully!", review)
}

func DeleteReview(c *fiber.Ctx) error {
	courseID := c.Locals("id").(uint)
	reviewID := c.Locals("review_id").(uint)

	if err := services.DeleteReview(database.Database.Db, middleware.CurrentUserID(c), courseID, reviewID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	invalidateFeatured(c)
	logger.L().Info("review deleted", "course_id", courseID, "review_id", reviewID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}
