package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a new unpublished course
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var existing courseModels.Course
	if err := db.Where("slug = ? AND is_deleted = false", reqData.Slug).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Slug is already in use!", nil)
	}

	course := courseModels.Course{
		Title:       reqData.Title,
		Slug:        reqData.Slug,
		Description: reqData.Description,
	}

	if err := db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created!", course)
}

// SetCoursePublished publishes or unpublishes a course
func SetCoursePublished(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData := new(struct {
		Published bool `json:"published"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.IsPublished = reqData.Published
	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated!", course)
}

// AddChapter adds a chapter to a course
func AddChapter(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData := new(struct {
		Title           string `json:"title"`
		OrderIndex      int    `json:"order_index"`
		VideoURL        string `json:"video_url"`
		DurationSeconds int    `json:"duration_seconds"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if strings.TrimSpace(reqData.Title) == "" {
		return middleware.ValidationErrorResponse(c, map[string]string{"title": "Title is required!"})
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	chapter := courseModels.Chapter{
		CourseID:        uint(courseID),
		Title:           reqData.Title,
		OrderIndex:      reqData.OrderIndex,
		VideoURL:        reqData.VideoURL,
		DurationSeconds: reqData.DurationSeconds,
	}

	if err := db.Create(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add chapter!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Chapter added!", chapter)
}

// DeleteChapter soft-deletes a chapter
func DeleteChapter(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	chapterID := c.Locals("chapterID").(int)

	db := database.Database.Db

	var chapter courseModels.Chapter
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = false", chapterID, courseID).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	if err := db.Model(&chapter).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete chapter!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapter deleted!", nil)
}
