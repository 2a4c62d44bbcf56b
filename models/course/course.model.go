package course

import "gorm.io/gorm"

// Course is a published learning track made of ordered chapters
type Course struct {
	gorm.Model
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"unique;not null"`
	Description string `json:"description" gorm:"type:text"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	IsDeleted   bool   `gorm:"default:false"`
}

// Chapter is a single video lesson inside a course
type Chapter struct {
	gorm.Model
	CourseID        uint   `json:"course_id" gorm:"index;not null"`
	Title           string `json:"title" gorm:"not null"`
	OrderIndex      int    `json:"order_index" gorm:"default:0"`
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds" gorm:"default:0"`
	IsDeleted       bool   `gorm:"default:false"`
}
