package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetUserCertificates lists the certificates the student has earned
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var certificates []courseModels.Certificate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).
		Order("issued_at DESC").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	type certView struct {
		courseModels.Certificate
		CourseTitle string `json:"course_title"`
	}

	views := make([]certView, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		db.Where("id = ?", cert.CourseID).First(&course)
		views[i] = certView{Certificate: cert, CourseTitle: course.Title}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": views,
	})
}
