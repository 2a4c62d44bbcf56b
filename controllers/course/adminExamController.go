package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateExam creates the exam for a course. One exam per course.
func CreateExam(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedExam").(*struct {
		Title             string `json:"title"`
		Description       string `json:"description"`
		PassingPercentage int    `json:"passing_percentage"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var existing courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already has an exam!", nil)
	}

	exam := courseModels.Exam{
		CourseID:          uint(courseID),
		Title:             reqData.Title,
		Description:       reqData.Description,
		PassingPercentage: reqData.PassingPercentage,
		IsEnabled:         false, // enabled explicitly once questions exist
	}

	if err := db.Create(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created!", exam)
}

// UpdateExam updates exam title, description or passing percentage.
// Changing the passing percentage never re-evaluates earlier attempts.
func UpdateExam(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedExam").(*struct {
		Title             string `json:"title"`
		Description       string `json:"description"`
		PassingPercentage int    `json:"passing_percentage"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	exam.Title = reqData.Title
	exam.Description = reqData.Description
	exam.PassingPercentage = reqData.PassingPercentage

	if err := db.Save(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated!", exam)
}

// SetExamEnabled enables or disables the exam. Enabling requires at least one question.
func SetExamEnabled(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData := new(struct {
		Enabled bool `json:"enabled"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	if reqData.Enabled {
		var questionCount int64
		db.Model(&courseModels.ExamQuestion{}).Where("exam_id = ? AND is_deleted = false", exam.ID).Count(&questionCount)
		if questionCount == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot enable an exam with no questions!", nil)
		}
	}

	exam.IsEnabled = reqData.Enabled
	if err := db.Save(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated!", exam)
}

// AddExamQuestion adds one question with its four options
func AddExamQuestion(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedQuestion").(*struct {
		QuestionText       string   `json:"question_text"`
		Options            []string `json:"options"`
		CorrectOptionIndex int      `json:"correct_option_index"`
		OrderIndex         int      `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	question := courseModels.ExamQuestion{
		ExamID:             exam.ID,
		QuestionText:       reqData.QuestionText,
		OptionA:            reqData.Options[0],
		OptionB:            reqData.Options[1],
		OptionC:            reqData.Options[2],
		OptionD:            reqData.Options[3],
		CorrectOptionIndex: reqData.CorrectOptionIndex,
		OrderIndex:         reqData.OrderIndex,
	}

	if err := db.Create(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added!", question)
}

// UpdateExamQuestion updates a question's text, options or correct index
func UpdateExamQuestion(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question id!", nil)
	}

	reqData, ok := c.Locals("validatedQuestion").(*struct {
		QuestionText       string   `json:"question_text"`
		Options            []string `json:"options"`
		CorrectOptionIndex int      `json:"correct_option_index"`
		OrderIndex         int      `json:"order_index"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var question courseModels.ExamQuestion
	if err := db.Where("id = ? AND exam_id = ? AND is_deleted = false", questionID, exam.ID).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	question.QuestionText = reqData.QuestionText
	question.OptionA = reqData.Options[0]
	question.OptionB = reqData.Options[1]
	question.OptionC = reqData.Options[2]
	question.OptionD = reqData.Options[3]
	question.CorrectOptionIndex = reqData.CorrectOptionIndex
	question.OrderIndex = reqData.OrderIndex

	if err := db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated!", question)
}

// DeleteExamQuestion soft-deletes a question. Removing the last question
// disables the exam so it can never be served empty.
func DeleteExamQuestion(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question id!", nil)
	}

	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var question courseModels.ExamQuestion
	if err := db.Where("id = ? AND exam_id = ? AND is_deleted = false", questionID, exam.ID).First(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&question).Update("is_deleted", true).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&courseModels.ExamQuestion{}).
			Where("exam_id = ? AND is_deleted = false", exam.ID).
			Count(&remaining).Error; err != nil {
			return err
		}

		if remaining == 0 && exam.IsEnabled {
			if err := tx.Model(&exam).Update("is_enabled", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted!", nil)
}

// GetExamWithAnswers returns the exam with correct indices for admin review
func GetExamWithAnswers(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var exam courseModels.Exam
	if err := db.Where("course_id = ? AND is_deleted = false", courseID).First(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}

	var questions []courseModels.ExamQuestion
	db.Where("exam_id = ? AND is_deleted = false", exam.ID).Order("order_index asc").Find(&questions)

	type adminQuestion struct {
		courseModels.ExamQuestion
		CorrectOptionIndex int `json:"correct_option_index"`
	}
	withAnswers := make([]adminQuestion, len(questions))
	for i, q := range questions {
		withAnswers[i] = adminQuestion{ExamQuestion: q, CorrectOptionIndex: q.CorrectOptionIndex}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully!", fiber.Map{
		"exam":      exam,
		"questions": withAnswers,
	})
}
