package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage   string `gorm:"default:''"`
	Name           string `gorm:"default:''"`
	Email          string `gorm:"unique;not null"`
	Role           string `gorm:"default:'STUDENT'"` // STUDENT, ADMIN
	Password       string `gorm:"not null"`
	ReferredByCode string `gorm:"default:''"` // referral code captured at signup
	LastLogin      time.Time
	IsDeleted      bool `gorm:"default:false"`
}
