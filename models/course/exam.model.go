package course

import "gorm.io/gorm"

// Exam is the final test of a course. One exam per course.
// IsEnabled is forced back to false whenever the last question is removed.
type Exam struct {
	gorm.Model
	CourseID          uint   `json:"course_id" gorm:"unique;not null"`
	Title             string `json:"title" gorm:"not null"`
	Description       string `json:"description" gorm:"type:text"`
	PassingPercentage int    `json:"passing_percentage" gorm:"default:70"` // 0-100
	IsEnabled         bool   `json:"is_enabled" gorm:"default:false"`
	IsDeleted         bool   `gorm:"default:false"`
}

// ExamQuestion holds one multiple-choice question with exactly four options.
// Question order matters for display only, never for scoring.
type ExamQuestion struct {
	gorm.Model
	ExamID             uint   `json:"exam_id" gorm:"index;not null"`
	QuestionText       string `json:"question_text" gorm:"type:text;not null"`
	OptionA            string `json:"option_a" gorm:"not null"`
	OptionB            string `json:"option_b" gorm:"not null"`
	OptionC            string `json:"option_c" gorm:"not null"`
	OptionD            string `json:"option_d" gorm:"not null"`
	CorrectOptionIndex int    `json:"-" gorm:"not null"` // 0-3, never serialized to students
	OrderIndex         int    `json:"order_index" gorm:"default:0"`
	IsDeleted          bool   `gorm:"default:false"`
}

// Options returns the four option texts in display order.
func (q ExamQuestion) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// ExamAttempt is one immutable scored submission. A retry creates a new row.
// PassingPercentage is frozen at submission time; later threshold changes
// never re-evaluate old attempts.
type ExamAttempt struct {
	gorm.Model
	UserID            uint   `json:"user_id" gorm:"index;not null"`
	ExamID            uint   `json:"exam_id" gorm:"index;not null"`
	Score             int    `json:"score"`
	TotalQuestions    int    `json:"total_questions"`
	Percentage        int    `json:"percentage"` // 0-100, round half up
	PassingPercentage int    `json:"passing_percentage"`
	Passed            bool   `json:"passed" gorm:"default:false"`
	Answers           string `json:"answers" gorm:"type:text"`   // JSON map questionId -> selected index
	Breakdown         string `json:"breakdown" gorm:"type:text"` // JSON per-question review detail
	AttemptNumber     int    `json:"attempt_number" gorm:"default:1"`
	IsDeleted         bool   `gorm:"default:false"`
}
