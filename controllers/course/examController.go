package controllers

import (
	"encoding/json"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Eligibility reasons returned by GetCourseExam
const (
	ReasonIncompleteCourse = "incomplete_course"
	ReasonNoExam           = "no_exam"
	ReasonExamDisabled     = "exam_disabled"
	ReasonError            = "error"
)

// questionView is a question as shown to a student: no correct index
type questionView struct {
	ID           uint     `json:"id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	OrderIndex   int      `json:"order_index"`
}

// answerBreakdown is the stored per-question review detail of an attempt
type answerBreakdown struct {
	QuestionID    uint `json:"question_id"`
	SelectedIndex int  `json:"selected_index"` // -1 when unanswered
	CorrectIndex  int  `json:"correct_index"`
	Correct       bool `json:"correct"`
}

// GetCourseExam is the exam eligibility gate. It never reports eligible on a
// lookup failure.
func GetCourseExam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check eligibility!", fiber.Map{"eligible": false, "reason": ReasonError})
	}

	complete, err := IsCourseComplete(db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check eligibility!", fiber.Map{"eligible": false, "reason": ReasonError})
	}
	if !complete {
		fraction, err := CourseCompletionFraction(db, userID, uint(courseID))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check eligibility!", fiber.Map{"eligible": false, "reason": ReasonError})
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Course not completed yet!", fiber.Map{
			"eligible":            false,
			"reason":              ReasonIncompleteCourse,
			"completion_fraction": fraction,
		})
	}

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "This course has no exam.", fiber.Map{
				"eligible": false,
				"reason":   ReasonNoExam,
			})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check eligibility!", fiber.Map{"eligible": false, "reason": ReasonError})
	}

	if !exam.IsEnabled {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam is currently disabled.", fiber.Map{
			"eligible": false,
			"reason":   ReasonExamDisabled,
		})
	}

	var questions []courseModels.ExamQuestion
	if err := db.Where("exam_id = ? AND is_deleted = false", exam.ID).Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check eligibility!", fiber.Map{"eligible": false, "reason": ReasonError})
	}

	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options(),
			OrderIndex:   q.OrderIndex,
		}
	}

	// Prior-attempt stats
	var attempts []courseModels.ExamAttempt
	db.Where("user_id = ? AND exam_id = ? AND is_deleted = false", userID, exam.ID).Find(&attempts)

	bestPercentage := 0
	alreadyPassed := false
	for _, a := range attempts {
		if a.Percentage > bestPercentage {
			bestPercentage = a.Percentage
		}
		if a.Passed {
			alreadyPassed = true
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully!", fiber.Map{
		"eligible": true,
		"exam": fiber.Map{
			"id":                 exam.ID,
			"title":              exam.Title,
			"description":        exam.Description,
			"passing_percentage": exam.PassingPercentage,
			"question_count":     len(questions),
			"questions":          views,
		},
		"attempt_count":   len(attempts),
		"best_percentage": bestPercentage,
		"already_passed":  alreadyPassed,
	})
}

// ScoreAnswers scores a submitted answers map against the exam's questions.
// An unanswered or unknown question counts as incorrect. Percentage uses
// round half up, so 1/3 correct gives 33 and 1/8 gives 13.
func ScoreAnswers(questions []courseModels.ExamQuestion, answers map[uint]int) (score int, percentage int, breakdown []answerBreakdown) {
	breakdown = make([]answerBreakdown, len(questions))
	for i, q := range questions {
		selected, answered := answers[q.ID]
		if !answered {
			selected = -1
		}
		correct := answered && selected == q.CorrectOptionIndex
		if correct {
			score++
		}
		breakdown[i] = answerBreakdown{
			QuestionID:    q.ID,
			SelectedIndex: selected,
			CorrectIndex:  q.CorrectOptionIndex,
			Correct:       correct,
		}
	}

	if len(questions) > 0 {
		percentage = int(math.Round(float64(score) / float64(len(questions)) * 100))
	}
	return score, percentage, breakdown
}

// SubmitExamAttempt scores one submission and persists it as a new immutable
// attempt. Retries are unlimited; earlier attempts are never modified.
func SubmitExamAttempt(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	answers, ok := c.Locals("validatedAnswers").(map[uint]int)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Re-run the eligibility gate; the exam must still be open to this student
	complete, err := IsCourseComplete(db, userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}
	if !complete {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Complete all chapters before taking the exam!", fiber.Map{"reason": ReasonIncompleteCourse})
	}

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This course has no exam.", fiber.Map{"reason": ReasonNoExam})
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}
	if !exam.IsEnabled {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Exam is currently disabled.", fiber.Map{"reason": ReasonExamDisabled})
	}

	// Correct answers live server-side only
	var questions []courseModels.ExamQuestion
	if err := db.Where("exam_id = ? AND is_deleted = false", exam.ID).Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Exam has no questions.", fiber.Map{"reason": ReasonExamDisabled})
	}

	score, percentage, breakdown := ScoreAnswers(questions, answers)
	passed := percentage >= exam.PassingPercentage

	var attemptCount int64
	db.Model(&courseModels.ExamAttempt{}).Where("user_id = ? AND exam_id = ? AND is_deleted = false", userID, exam.ID).Count(&attemptCount)

	answersJSON, _ := json.Marshal(answers)
	breakdownJSON, _ := json.Marshal(breakdown)

	attempt := courseModels.ExamAttempt{
		UserID:            userID,
		ExamID:            exam.ID,
		Score:             score,
		TotalQuestions:    len(questions),
		Percentage:        percentage,
		PassingPercentage: exam.PassingPercentage,
		Passed:            passed,
		Answers:           string(answersJSON),
		Breakdown:         string(breakdownJSON),
		AttemptNumber:     int(attemptCount) + 1,
	}

	if err := db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit attempt!", nil)
	}

	// First passing attempt earns the certificate
	if passed {
		issueCertificate(db, userID, uint(courseID), attempt.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt submitted!", fiber.Map{
		"attempt_id":         attempt.ID,
		"score":              score,
		"total_questions":    len(questions),
		"percentage":         percentage,
		"passing_percentage": exam.PassingPercentage,
		"passed":             passed,
		"attempt_number":     attempt.AttemptNumber,
		"breakdown":          breakdown,
	})
}

// GetExamAttempts lists the student's own attempts for a course exam, newest first
func GetExamAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var attempts []courseModels.ExamAttempt
	if err := db.Where("user_id = ? AND exam_id = ? AND is_deleted = false", userID, exam.ID).
		Order("created_at DESC").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	bestPercentage := 0
	for _, a := range attempts {
		if a.Percentage > bestPercentage {
			bestPercentage = a.Percentage
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts":        attempts,
		"best_percentage": bestPercentage,
	})
}

// issueCertificate creates the course certificate if the user has none yet
func issueCertificate(db *gorm.DB, userID, courseID, attemptID uint) {
	var existing courseModels.Certificate
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&existing).Error
	if err == nil {
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Error checking certificate for user %d course %d: %v", userID, courseID, err)
		return
	}

	cert := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		ExamAttemptID:     attemptID,
		CertificateNumber: utils.GenerateCertificateNumber(),
		IssuedAt:          time.Now(),
	}
	if err := db.Create(&cert).Error; err != nil {
		log.Printf("Error issuing certificate for user %d course %d: %v", userID, courseID, err)
	}
}
