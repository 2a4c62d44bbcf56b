package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	controllers "lms/controllers/course"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestIsCourseComplete(t *testing.T) {
	_, db := setupCourseApp(t)
	user, _ := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 2)

	complete, err := controllers.IsCourseComplete(db, user.ID, course.ID)
	require.NoError(t, err)
	require.False(t, complete)

	completeAllChapters(t, db, user.ID, course, chapters)

	complete, err = controllers.IsCourseComplete(db, user.ID, course.ID)
	require.NoError(t, err)
	require.True(t, complete)

	// Adding one more chapter flips the course back to incomplete
	extra := courseModels.Chapter{CourseID: course.ID, Title: "Chapter 3", OrderIndex: 2}
	require.NoError(t, db.Create(&extra).Error)

	complete, err = controllers.IsCourseComplete(db, user.ID, course.ID)
	require.NoError(t, err)
	require.False(t, complete)
}

func TestIsCourseCompleteEmptyCourse(t *testing.T) {
	_, db := setupCourseApp(t)
	user, _ := createStudent(t, db, "a@test.com")
	course, _ := seedCourse(t, db, 0)

	complete, err := controllers.IsCourseComplete(db, user.ID, course.ID)
	require.NoError(t, err)
	require.False(t, complete)
}

func TestMarkChapterCompleteIdempotent(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)

	path := fmt.Sprintf("/course/%d/chapter/%d/complete", course.ID, chapters[0].ID)

	resp := httpDo(t, app, "POST", path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second call leaves state identical to the first
	resp = httpDo(t, app, "POST", path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []courseModels.ChapterProgress
	require.NoError(t, db.Where("user_id = ? AND chapter_id = ?", user.ID, chapters[0].ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Completed)
	require.Equal(t, 100, rows[0].ProgressPercent)
}

func TestRecordProgressClampsPercent(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)

	path := fmt.Sprintf("/course/%d/chapter/%d/progress", course.ID, chapters[0].ID)

	resp := httpDo(t, app, "POST", path, token, fiber.Map{"progress_percent": 150, "last_position_seconds": 42})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var row courseModels.ChapterProgress
	require.NoError(t, db.Where("user_id = ? AND chapter_id = ?", user.ID, chapters[0].ID).First(&row).Error)
	require.Equal(t, 100, row.ProgressPercent)
	require.Equal(t, 42, row.LastPositionSeconds)
	// Reaching 100 marks the chapter completed
	require.True(t, row.Completed)

	// A later ping never un-completes the chapter
	resp = httpDo(t, app, "POST", path, token, fiber.Map{"progress_percent": -5, "last_position_seconds": 7})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, db.Where("user_id = ? AND chapter_id = ?", user.ID, chapters[0].ID).First(&row).Error)
	require.Equal(t, 100, row.ProgressPercent)
	require.True(t, row.Completed)
	require.Equal(t, 7, row.LastPositionSeconds)
}

func TestRecordProgressClampsNegative(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)

	path := fmt.Sprintf("/course/%d/chapter/%d/progress", course.ID, chapters[0].ID)

	resp := httpDo(t, app, "POST", path, token, fiber.Map{"progress_percent": -5, "last_position_seconds": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var row courseModels.ChapterProgress
	require.NoError(t, db.Where("user_id = ? AND chapter_id = ?", user.ID, chapters[0].ID).First(&row).Error)
	require.Equal(t, 0, row.ProgressPercent)
	require.False(t, row.Completed)
}

func TestGetCourseProgressFraction(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 4)

	p := courseModels.ChapterProgress{UserID: user.ID, ChapterID: chapters[0].ID, CourseID: course.ID, Completed: true, ProgressPercent: 100}
	require.NoError(t, db.Create(&p).Error)

	resp := httpDo(t, app, "GET", fmt.Sprintf("/course/%d/progress", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(4), data["total_chapters"])
	require.Equal(t, float64(1), data["completed_chapters"])
	require.InDelta(t, 0.25, data["completion_fraction"].(float64), 0.001)
	require.Len(t, data["chapters"].([]interface{}), 4)
}
