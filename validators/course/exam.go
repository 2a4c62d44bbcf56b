package courseValidator

import (
	"lms/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SubmitExam validates the answers map shape before it reaches the scoring
// logic: JSON object of questionId -> option index, every index in [0,3].
// An empty map is allowed; unanswered questions score as incorrect.
func SubmitExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers map[string]int `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Answers == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answers map is required!", nil)
		}

		errors := make(map[string]string)
		answers := make(map[uint]int, len(reqData.Answers))

		for questionIDStr, selectedIndex := range reqData.Answers {
			questionID, err := strconv.ParseUint(questionIDStr, 10, 32)
			if err != nil || questionID == 0 {
				errors[questionIDStr] = "Question ID must be a positive number!"
				continue
			}
			if selectedIndex < 0 || selectedIndex > 3 {
				errors[questionIDStr] = "Selected option index must be between 0 and 3!"
				continue
			}
			answers[uint(questionID)] = selectedIndex
		}

		if len(errors) > 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Malformed answers map!", errors)
		}

		c.Locals("validatedAnswers", answers)
		return c.Next()
	}
}

// CreateOrUpdateExam validates admin exam create/update payloads
func CreateOrUpdateExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title             string `json:"title"`
			Description       string `json:"description"`
			PassingPercentage int    `json:"passing_percentage"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.PassingPercentage < 0 || reqData.PassingPercentage > 100 {
			errors["passing_percentage"] = "Passing percentage must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExam", reqData)
		return c.Next()
	}
}

// CreateOrUpdateQuestion validates an exam question with exactly four options
func CreateOrUpdateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionText       string   `json:"question_text"`
			Options            []string `json:"options"`
			CorrectOptionIndex int      `json:"correct_option_index"`
			OrderIndex         int      `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.QuestionText) == "" {
			errors["question_text"] = "Question text is required!"
		}
		if len(reqData.Options) != 4 {
			errors["options"] = "Exactly 4 options are required!"
		} else {
			for i, opt := range reqData.Options {
				if strings.TrimSpace(opt) == "" {
					errors["options"] = "Option " + strconv.Itoa(i+1) + " is empty!"
					break
				}
			}
		}
		if reqData.CorrectOptionIndex < 0 || reqData.CorrectOptionIndex > 3 {
			errors["correct_option_index"] = "Correct option index must be between 0 and 3!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}
