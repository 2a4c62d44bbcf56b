package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details (published courses)
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseParam(), controllers.GetCourseDetails)

	// Progress tracking
	courseGroup.Post("/:course_id/chapter/:chapter_id/progress", middleware.JWTMiddleware, validators.ChapterParams(), validators.RecordProgress(), controllers.RecordProgress)
	courseGroup.Post("/:course_id/chapter/:chapter_id/complete", middleware.JWTMiddleware, validators.ChapterParams(), controllers.MarkChapterComplete)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseParam(), controllers.GetCourseProgress)

	// Exam eligibility, submission and attempt history
	courseGroup.Get("/:course_id/exam", middleware.JWTMiddleware, validators.CourseParam(), controllers.GetCourseExam)
	courseGroup.Post("/:course_id/exam/submit", middleware.JWTMiddleware, validators.CourseParam(), validators.SubmitExam(), controllers.SubmitExamAttempt)
	courseGroup.Get("/:course_id/exam/attempts", middleware.JWTMiddleware, validators.CourseParam(), controllers.GetExamAttempts)

	// Earned certificates
	userGroup := app.Group("/user")
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
