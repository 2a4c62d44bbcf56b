package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminExamRoutes sets up the admin exam management routes
func SetupAdminExamRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	// Course and chapter management
	adminGroup.Post("/", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Patch("/:course_id/published", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), controllers.SetCoursePublished)
	adminGroup.Post("/:course_id/chapter", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), controllers.AddChapter)
	adminGroup.Delete("/:course_id/chapter/:chapter_id", middleware.JWTMiddleware, middleware.RequireAdmin, validators.ChapterParams(), controllers.DeleteChapter)

	// Exam management
	adminGroup.Post("/:course_id/exam", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), validators.CreateOrUpdateExam(), controllers.CreateExam)
	adminGroup.Put("/:course_id/exam", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), validators.CreateOrUpdateExam(), controllers.UpdateExam)
	adminGroup.Patch("/:course_id/exam/enabled", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), controllers.SetExamEnabled)
	adminGroup.Get("/:course_id/exam", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), controllers.GetExamWithAnswers)

	adminGroup.Post("/:course_id/exam/question", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), validators.CreateOrUpdateQuestion(), controllers.AddExamQuestion)
	adminGroup.Put("/:course_id/exam/question/:question_id", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), validators.CreateOrUpdateQuestion(), controllers.UpdateExamQuestion)
	adminGroup.Delete("/:course_id/exam/question/:question_id", middleware.JWTMiddleware, middleware.RequireAdmin, validators.CourseParam(), controllers.DeleteExamQuestion)
}
