package courseRoutes

import (
	controllers "coursemart/controllers/course"
	"coursemart/middleware"
	"coursemart/models"
	"coursemart/validators"
	courseValidators "coursemart/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalogue and learner routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalogue (static paths before /:id)
	courseGroup.Get("/list", courseValidators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/featured", controllers.GetFeaturedCourses)
	courseGroup.Get("/category/:category", courseValidators.CategoryParam(), validators.Pagination(), controllers.GetCoursesByCategory)
	courseGroup.Get("/instructor/:id", middleware.OptionalJWT, validators.IDParams("id"), controllers.GetInstructorCourses)

	// Detail by id or slug
	courseGroup.Get("/:id", middleware.OptionalJWT, controllers.GetCourseDetails)

	// Reviews
	courseGroup.Get("/:id/reviews", validators.IDParams("id"), validators.Pagination(), controllers.GetReviews)
	courseGroup.Post("/:id/reviews", middleware.JWTMiddleware, validators.IDParams("id"), courseValidators.AddReview(), controllers.AddReview)
	courseGroup.Delete("/:id/reviews/:review_id", middleware.JWTMiddleware, validators.IDParams("id", "review_id"), controllers.DeleteReview)

	// Enrollment and progress
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.IDParams("id"), controllers.EnrollInCourse)
	courseGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.IDParams("id"), controllers.GetUserProgress)
	courseGroup.Post("/:course_id/lessons/:lesson_id/complete", middleware.JWTMiddleware, validators.IDParams("course_id", "lesson_id"), controllers.MarkLessonComplete)

	// Certificate request
	courseGroup.Post("/:id/certificate", middleware.JWTMiddleware, validators.IDParams("id"), courseValidators.IssueCertificate(), controllers.RequestCertificate)

	// Public certificate verification
	app.Get("/certificate/verify/:certificate_id", courseValidators.CertificateIDParam(), controllers.VerifyCertificatePublic)
}

// SetupInstructorRoutes sets up course authoring and certificate management
func SetupInstructorRoutes(app *fiber.App) {
	instructorGroup := app.Group("/instructor", middleware.JWTMiddleware, middleware.RequireRole(models.RoleInstructor, models.RoleAdmin))

	instructorGroup.Post("/course", courseValidators.SaveCourse(), controllers.CreateCourse)
	instructorGroup.Put("/course/:id", validators.IDParams("id"), courseValidators.SaveCourse(), controllers.UpdateCourse)
	instructorGroup.Delete("/course/:id", validators.IDParams("id"), controllers.DeleteCourse)
	instructorGroup.Post("/course/:id/publish", validators.IDParams("id"), controllers.PublishCourse)
	instructorGroup.Put("/course/:id/media", validators.IDParams("id"), courseValidators.SetMedia(), controllers.SetCourseMedia)

	// Curriculum
	instructorGroup.Post("/course/:id/sections", validators.IDParams("id"), courseValidators.AddSection(), controllers.AddSection)
	instructorGroup.Post("/course/:id/sections/:section_id/lessons", validators.IDParams("id", "section_id"), courseValidators.SaveLesson(), controllers.AddLesson)
	instructorGroup.Put("/course/:id/lessons/:lesson_id", validators.IDParams("id", "lesson_id"), courseValidators.SaveLesson(), controllers.UpdateLesson)
	instructorGroup.Delete("/course/:id/lessons/:lesson_id", validators.IDParams("id", "lesson_id"), controllers.DeleteLesson)

	// Certificates
	instructorGroup.Get("/course/:id/certificates", validators.IDParams("id"), controllers.GetCourseCertificates)
	instructorGroup.Post("/certificate/:id/verify", validators.IDParams("id"), controllers.VerifyCertificate)
	instructorGroup.Post("/certificate/:id/revoke", validators.IDParams("id"), courseValidators.RevokeCertificate(), controllers.RevokeCertificate)
	instructorGroup.Post("/certificate/:id/reactivate", validators.IDParams("id"), controllers.ReactivateCertificate)
}
