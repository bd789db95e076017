package models

import (
	"time"
)

// Student is created once per test attempt; emails are intentionally not
// deduplicated.
type Student struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"student_name" gorm:"column:student_name;not null;size:255"`
	Email     string `json:"email" gorm:"size:255"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`

	Subject Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

// AdminAccount holds a console login. Passwords are stored as bcrypt hashes
// and never serialized.
type AdminAccount struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:255"`
	Email        string `json:"email" gorm:"size:255"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`

	CreatedAt time.Time `json:"created_at"`
}

func (AdminAccount) TableName() string {
	return "admins"
}
