package controllers

import (
	"coursemart/database"
	"coursemart/middleware"
	"coursemart/services"
	courseValidator "coursemart/validators/course"

	"github.com/gofiber/fiber/v2"
)

func AddSection(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSection").(*courseValidator.SectionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	section, err := services.AddSection(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), services.SectionInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		Order:       reqData.Order,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section added successfully!", section)
}

func lessonInput(r *courseValidator.LessonRequest) services.LessonInput {
	return services.LessonInput{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Content:     r.Content,
		Order:       r.Order,
		IsPreview:   r.IsPreview,
		Duration:    r.Duration,
		Resources:   r.Resources,
	}
}

func AddLesson(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := services.AddLesson(database.Database.Db, middleware.CurrentUserID(c),
		c.Locals("id").(uint), c.Locals("section_id").(uint), lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson added successfully!", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := services.UpdateLesson(database.Database.Db, middleware.CurrentUserID(c),
		c.Locals("id").(uint), c.Locals("lesson_id").(uint), lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	err := services.DeleteLesson(database.Database.Db, middleware.CurrentUserID(c), c.Locals("id").(uint), c.Locals("lesson_id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}
