package controllers

import (
	"fmt"

	"coursemart/database"
	"coursemart/middleware"
	"coursemart/models/course"
	"coursemart/services"
	"coursemart/utils"
	"coursemart/validators"
	courseValidator "coursemart/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const featuredLimit = 8

func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourseList").(*courseValidator.CourseListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	filter := services.CourseFilter{
		Category:  reqData.Category,
		Level:     reqData.Level,
		Search:    reqData.Search,
		MinRating: reqData.MinRating,
		Sort:      reqData.Sort,
		Order:     reqData.Order,
		Page:      reqData.Page,
		Limit:     reqData.Limit,
	}
	if reqData.MinPrice != nil {
		p := decimal.NewFromFloat(*reqData.MinPrice)
		filter.MinPrice = &p
	}
	if reqData.MaxPrice != nil {
		p := decimal.NewFromFloat(*reqData.MaxPrice)
		filter.MaxPrice = &p
	}

	courses, pagination, err := services.ListCourses(database.Database.Db, filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": pagination,
	})
}

// GetFeaturedCourses serves from the course cache when one is configured.
func GetFeaturedCourses(c *fiber.Ctx) error {
	key := fmt.Sprintf("courses:featured:%d", featuredLimit)

	var courses []course.Course
	if utils.CourseCache().Get(c.UserContext(), key, &courses) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Featured courses fetched successfully!", courses)
	}

	courses, err := services.FeaturedCourses(database.Database.Db, featuredLimit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	utils.CourseCache().Set(c.UserContext(), key, courses)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Featured courses fetched successfully!", courses)
}

// pageOf returns the validated page query, zero values meaning defaults.
func pageOf(c *fiber.Ctx) validators.PageQuery {
	if reqData, ok := c.Locals("pagination").(*validators.PageQuery); ok {
		return *reqData
	}
	return validators.PageQuery{}
}

func invalidateFeatured(c *fiber.Ctx) {
	utils.CourseCache().Delete(c.UserContext(), utils.FeaturedCoursesKey)
}

func GetCoursesByCategory(c *fiber.Ctx) error {
	page := pageOf(c)
	courses, pagination, err := services.CoursesByCategory(database.Database.Db, c.Params("category"), page.Page, page.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": pagination,
	})
}

func GetInstructorCourses(c *fiber.Ctx) error {
	instructorID := c.Locals("id").(uint)

	courses, err := services.InstructorCourses(database.Database.Db, instructorID, middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// GetCourseDetails accepts a numeric id or a slug.
func GetCourseDetails(c *fiber.Ctx) error {
	detail, err := services.GetCourse(database.Database.Db, c.Params("id"), middleware.CurrentUserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", detail)
}

func GetReviews(c *fiber.Ctx) error {
	courseID := c.Locals("id").(uint)
	page := pageOf(c)
	reviews, pagination, err := services.ListReviews(database.Database.Db, courseID, page.Page, page.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":    reviews,
		"pagination": pagination,
	})
}
