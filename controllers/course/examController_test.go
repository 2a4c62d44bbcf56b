package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/config"
	controllers "lms/controllers/course"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseRoutes "lms/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCourseApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	config.LoadConfig()
	// Per-test in-memory database to avoid cross-test interference
	db, err := database.ConnectTestDb(t.Name())
	require.NoError(t, err)

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminExamRoutes(app)
	return app, db
}

func createStudent(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()
	user := models.User{Name: "Student", Email: email, Password: "x", Role: "STUDENT"}
	require.NoError(t, db.Create(&user).Error)
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return user, token
}

func httpDo(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

// seedCourse creates a course with the given number of chapters
func seedCourse(t *testing.T, db *gorm.DB, chapters int) (courseModels.Course, []courseModels.Chapter) {
	t.Helper()
	course := courseModels.Course{Title: "Go Basics", Slug: fmt.Sprintf("go-basics-%s", t.Name()), IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	out := make([]courseModels.Chapter, chapters)
	for i := 0; i < chapters; i++ {
		ch := courseModels.Chapter{CourseID: course.ID, Title: fmt.Sprintf("Chapter %d", i+1), OrderIndex: i}
		require.NoError(t, db.Create(&ch).Error)
		out[i] = ch
	}
	return course, out
}

func completeAllChapters(t *testing.T, db *gorm.DB, userID uint, course courseModels.Course, chapters []courseModels.Chapter) {
	t.Helper()
	for _, ch := range chapters {
		p := courseModels.ChapterProgress{UserID: userID, ChapterID: ch.ID, CourseID: course.ID, Completed: true, ProgressPercent: 100}
		require.NoError(t, db.Create(&p).Error)
	}
}

// seedExam creates an enabled exam with the given correct indices, one question each
func seedExam(t *testing.T, db *gorm.DB, courseID uint, passingPercentage int, correctIndices []int) (courseModels.Exam, []courseModels.ExamQuestion) {
	t.Helper()
	exam := courseModels.Exam{CourseID: courseID, Title: "Final Exam", PassingPercentage: passingPercentage, IsEnabled: true}
	require.NoError(t, db.Create(&exam).Error)

	questions := make([]courseModels.ExamQuestion, len(correctIndices))
	for i, correct := range correctIndices {
		q := courseModels.ExamQuestion{
			ExamID:             exam.ID,
			QuestionText:       fmt.Sprintf("Question %d", i+1),
			OptionA:            "A", OptionB: "B", OptionC: "C", OptionD: "D",
			CorrectOptionIndex: correct,
			OrderIndex:         i,
		}
		require.NoError(t, db.Create(&q).Error)
		questions[i] = q
	}
	return exam, questions
}

func TestExamEligibilityIncompleteCourse(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 2)
	seedExam(t, db, course.ID, 70, []int{0, 1})

	// Only one of two chapters completed
	p := courseModels.ChapterProgress{UserID: user.ID, ChapterID: chapters[0].ID, CourseID: course.ID, Completed: true, ProgressPercent: 100}
	require.NoError(t, db.Create(&p).Error)

	resp := httpDo(t, app, "GET", fmt.Sprintf("/course/%d/exam", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, false, data["eligible"])
	require.Equal(t, "incomplete_course", data["reason"])
	require.InDelta(t, 0.5, data["completion_fraction"].(float64), 0.001)
}

func TestExamEligibilityNoExam(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)

	resp := httpDo(t, app, "GET", fmt.Sprintf("/course/%d/exam", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, false, data["eligible"])
	require.Equal(t, "no_exam", data["reason"])
}

func TestExamEligibilityDisabled(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	exam, _ := seedExam(t, db, course.ID, 70, []int{0})
	require.NoError(t, db.Model(&exam).Update("is_enabled", false).Error)

	resp := httpDo(t, app, "GET", fmt.Sprintf("/course/%d/exam", course.ID), token, nil)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, false, data["eligible"])
	require.Equal(t, "exam_disabled", data["reason"])
}

func TestExamEligibilityEligiblePayload(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	seedExam(t, db, course.ID, 70, []int{0, 1, 2})

	resp := httpDo(t, app, "GET", fmt.Sprintf("/course/%d/exam", course.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, true, data["eligible"])
	require.Equal(t, float64(0), data["attempt_count"].(float64))
	require.Equal(t, false, data["already_passed"])

	exam := data["exam"].(map[string]interface{})
	require.Equal(t, float64(3), exam["question_count"].(float64))

	// Correct indices must never reach the student
	questions := exam["questions"].([]interface{})
	for _, q := range questions {
		_, leaked := q.(map[string]interface{})["correct_option_index"]
		require.False(t, leaked)
	}
}

func TestSubmitAttemptScoringAndPass(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	_, questions := seedExam(t, db, course.ID, 70, []int{0, 1, 2, 3})

	// 3 of 4 correct -> 75%, passing 70 -> passed
	answers := map[string]int{
		fmt.Sprint(questions[0].ID): 0,
		fmt.Sprint(questions[1].ID): 1,
		fmt.Sprint(questions[2].ID): 2,
		fmt.Sprint(questions[3].ID): 0,
	}
	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token, fiber.Map{"answers": answers})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(3), data["score"])
	require.Equal(t, float64(75), data["percentage"])
	require.Equal(t, true, data["passed"])
	require.Len(t, data["breakdown"].([]interface{}), 4)

	var attempt courseModels.ExamAttempt
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&attempt).Error)
	require.Equal(t, 75, attempt.Percentage)
	require.Equal(t, 70, attempt.PassingPercentage)
	require.True(t, attempt.Passed)

	// Passing issues the certificate
	var cert courseModels.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&cert).Error)
	require.NotEmpty(t, cert.CertificateNumber)
}

func TestSubmitAttemptEmptyAnswersScoresZero(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	seedExam(t, db, course.ID, 70, []int{0, 1, 2, 3, 0})

	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token, fiber.Map{"answers": map[string]int{}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(0), data["score"])
	require.Equal(t, float64(0), data["percentage"])
	require.Equal(t, false, data["passed"])
}

func TestSubmitAttemptMalformedAnswers(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	_, questions := seedExam(t, db, course.ID, 70, []int{0})

	// Option index out of range is rejected before any row is written
	answers := map[string]int{fmt.Sprint(questions[0].ID): 7}
	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token, fiber.Map{"answers": answers})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	db.Model(&courseModels.ExamAttempt{}).Where("user_id = ?", user.ID).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestSubmitAttemptIneligibleForbidden(t *testing.T) {
	app, db := setupCourseApp(t)
	_, token := createStudent(t, db, "a@test.com")
	course, _ := seedCourse(t, db, 2)
	_, questions := seedExam(t, db, course.ID, 70, []int{0})

	answers := map[string]int{fmt.Sprint(questions[0].ID): 0}
	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token, fiber.Map{"answers": answers})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubmitAttemptRetriesAndBestScore(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	_, questions := seedExam(t, db, course.ID, 90, []int{0, 1})

	// First attempt: 1/2 -> 50
	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token,
		fiber.Map{"answers": map[string]int{fmt.Sprint(questions[0].ID): 0}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Second attempt: 0/2 -> 0; best stays 50
	resp = httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token,
		fiber.Map{"answers": map[string]int{fmt.Sprint(questions[0].ID): 3}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(2), data["attempt_number"])

	resp = httpDo(t, app, "GET", fmt.Sprintf("/course/%d/exam/attempts", course.ID), token, nil)
	attempts := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(50), attempts["best_percentage"])
}

func TestScoreAnswersRounding(t *testing.T) {
	questions := []courseModels.ExamQuestion{
		{QuestionText: "q1", CorrectOptionIndex: 0},
		{QuestionText: "q2", CorrectOptionIndex: 1},
		{QuestionText: "q3", CorrectOptionIndex: 2},
	}
	questions[0].ID = 1
	questions[1].ID = 2
	questions[2].ID = 3

	// 1/3 correct -> round(33.33) = 33
	score, pct, breakdown := controllers.ScoreAnswers(questions, map[uint]int{1: 0})
	require.Equal(t, 1, score)
	require.Equal(t, 33, pct)
	require.Len(t, breakdown, 3)

	// 2/3 correct -> round(66.67) = 67
	_, pct, _ = controllers.ScoreAnswers(questions, map[uint]int{1: 0, 2: 1})
	require.Equal(t, 67, pct)

	// Half rounds up: 1/8 correct -> round(12.5) = 13
	eight := make([]courseModels.ExamQuestion, 8)
	for i := range eight {
		eight[i].ID = uint(i + 1)
		eight[i].CorrectOptionIndex = 0
	}
	_, pct, _ = controllers.ScoreAnswers(eight, map[uint]int{1: 0})
	require.Equal(t, 13, pct)
}

func TestPassBoundaryInclusive(t *testing.T) {
	app, db := setupCourseApp(t)
	user, token := createStudent(t, db, "a@test.com")
	course, chapters := seedCourse(t, db, 1)
	completeAllChapters(t, db, user.ID, course, chapters)
	_, questions := seedExam(t, db, course.ID, 75, []int{0, 1, 2, 3})

	// Exactly 75% against a 75 threshold passes
	answers := map[string]int{
		fmt.Sprint(questions[0].ID): 0,
		fmt.Sprint(questions[1].ID): 1,
		fmt.Sprint(questions[2].ID): 2,
	}
	resp := httpDo(t, app, "POST", fmt.Sprintf("/course/%d/exam/submit", course.ID), token, fiber.Map{"answers": answers})
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	require.Equal(t, float64(75), data["percentage"])
	require.Equal(t, true, data["passed"])
}

func TestDeleteLastQuestionDisablesExam(t *testing.T) {
	app, db := setupCourseApp(t)
	admin := models.User{Name: "Admin", Email: "admin@test.com", Password: "x", Role: "ADMIN"}
	require.NoError(t, db.Create(&admin).Error)
	adminToken, err := middleware.GenerateJWT(admin.ID, admin.Name, admin.Role, admin.Email)
	require.NoError(t, err)

	course, _ := seedCourse(t, db, 1)
	exam, questions := seedExam(t, db, course.ID, 70, []int{0})

	resp := httpDo(t, app, "DELETE", fmt.Sprintf("/admin/course/%d/exam/question/%d", course.ID, questions[0].ID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded courseModels.Exam
	require.NoError(t, db.First(&reloaded, exam.ID).Error)
	require.False(t, reloaded.IsEnabled)
}
