package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RecordProgress upserts the playback progress for one chapter
func RecordProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	chapterID := c.Locals("chapterID").(int)

	reqData, ok := c.Locals("validatedProgress").(*struct {
		ProgressPercent     int `json:"progress_percent"`
		LastPositionSeconds int `json:"last_position_seconds"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var chapter courseModels.Chapter
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = false", chapterID, courseID).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	// Clamp to 0-100, no other validation
	percent := reqData.ProgressPercent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	var progress courseModels.ChapterProgress
	err := db.Where("user_id = ? AND chapter_id = ? AND is_deleted = false", userID, chapterID).First(&progress).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
		}
		progress = courseModels.ChapterProgress{
			UserID:              userID,
			ChapterID:           uint(chapterID),
			CourseID:            uint(courseID),
			ProgressPercent:     percent,
			LastPositionSeconds: reqData.LastPositionSeconds,
			Completed:           percent == 100,
		}
		if err := db.Create(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
		}
	} else {
		// A completed chapter stays at 100; later pings only move the position
		if !progress.Completed {
			progress.ProgressPercent = percent
			if percent == 100 {
				progress.Completed = true
			}
		}
		progress.LastPositionSeconds = reqData.LastPositionSeconds
		if err := db.Save(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record progress!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recorded!", progress)
}

// MarkChapterComplete sets a chapter completed. Calling it again is a no-op.
func MarkChapterComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	chapterID := c.Locals("chapterID").(int)

	db := database.Database.Db

	var chapter courseModels.Chapter
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = false", chapterID, courseID).First(&chapter).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Chapter not found!", nil)
	}

	var progress courseModels.ChapterProgress
	err := db.Where("user_id = ? AND chapter_id = ? AND is_deleted = false", userID, chapterID).First(&progress).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark chapter complete!", nil)
		}
		progress = courseModels.ChapterProgress{
			UserID:          userID,
			ChapterID:       uint(chapterID),
			CourseID:        uint(courseID),
			Completed:       true,
			ProgressPercent: 100,
		}
		if err := db.Create(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark chapter complete!", nil)
		}
	} else if !progress.Completed || progress.ProgressPercent != 100 {
		progress.Completed = true
		progress.ProgressPercent = 100
		if err := db.Save(&progress).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark chapter complete!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chapter marked complete!", progress)
}

// GetCourseProgress returns per-chapter progress plus the completion fraction
func GetCourseProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var chapters []courseModels.Chapter
	db.Where("course_id = ? AND is_deleted = false", courseID).Order("order_index asc").Find(&chapters)

	var progressRows []courseModels.ChapterProgress
	db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).Find(&progressRows)

	progressByChapter := make(map[uint]courseModels.ChapterProgress, len(progressRows))
	completed := 0
	for _, p := range progressRows {
		progressByChapter[p.ChapterID] = p
		if p.Completed {
			completed++
		}
	}

	fraction := float64(0)
	if len(chapters) > 0 {
		fraction = float64(completed) / float64(len(chapters))
	}

	type chapterStatus struct {
		ChapterID           uint   `json:"chapter_id"`
		Title               string `json:"title"`
		Completed           bool   `json:"completed"`
		ProgressPercent     int    `json:"progress_percent"`
		LastPositionSeconds int    `json:"last_position_seconds"`
	}

	statuses := make([]chapterStatus, len(chapters))
	for i, ch := range chapters {
		p := progressByChapter[ch.ID]
		statuses[i] = chapterStatus{
			ChapterID:           ch.ID,
			Title:               ch.Title,
			Completed:           p.Completed,
			ProgressPercent:     p.ProgressPercent,
			LastPositionSeconds: p.LastPositionSeconds,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"course_id":           course.ID,
		"total_chapters":      len(chapters),
		"completed_chapters":  completed,
		"completion_fraction": fraction,
		"chapters":            statuses,
	})
}

// IsCourseComplete reports whether every chapter of the course has a completed
// progress row for the user. A course with no chapters is never complete.
func IsCourseComplete(db *gorm.DB, userID, courseID uint) (bool, error) {
	var totalChapters int64
	if err := db.Model(&courseModels.Chapter{}).
		Where("course_id = ? AND is_deleted = false", courseID).
		Count(&totalChapters).Error; err != nil {
		return false, err
	}
	if totalChapters == 0 {
		return false, nil
	}

	var completedChapters int64
	if err := db.Model(&courseModels.ChapterProgress{}).
		Where("user_id = ? AND course_id = ? AND completed = ? AND is_deleted = false", userID, courseID, true).
		Count(&completedChapters).Error; err != nil {
		return false, err
	}

	return completedChapters >= totalChapters, nil
}

// CourseCompletionFraction returns completed/total chapters for the user
func CourseCompletionFraction(db *gorm.DB, userID, courseID uint) (float64, error) {
	var totalChapters int64
	if err := db.Model(&courseModels.Chapter{}).
		Where("course_id = ? AND is_deleted = false", courseID).
		Count(&totalChapters).Error; err != nil {
		return 0, err
	}
	if totalChapters == 0 {
		return 0, nil
	}

	var completedChapters int64
	if err := db.Model(&courseModels.ChapterProgress{}).
		Where("user_id = ? AND course_id = ? AND completed = ? AND is_deleted = false", userID, courseID, true).
		Count(&completedChapters).Error; err != nil {
		return 0, err
	}

	return float64(completedChapters) / float64(totalChapters), nil
}
