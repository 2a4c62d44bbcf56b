package course

import "gorm.io/gorm"

// ChapterProgress tracks a student's playback position for one chapter.
// One row per (user, chapter); created on the first progress ping.
// Completed implies ProgressPercent == 100.
type ChapterProgress struct {
	gorm.Model
	UserID              uint `json:"user_id" gorm:"index:idx_user_chapter,unique;not null"`
	ChapterID           uint `json:"chapter_id" gorm:"index:idx_user_chapter,unique;not null"`
	CourseID            uint `json:"course_id" gorm:"index;not null"`
	Completed           bool `json:"completed" gorm:"default:false"`
	ProgressPercent     int  `json:"progress_percent" gorm:"default:0"` // 0-100
	LastPositionSeconds int  `json:"last_position_seconds" gorm:"default:0"`
	IsDeleted           bool `gorm:"default:false"`
}

func (ChapterProgress) TableName() string {
	return "chapter_progresses"
}
