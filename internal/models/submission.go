package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one scored answer. A student resubmitting the same question
// overwrites the previous row (last write wins), enforced by the composite
// unique index.
type Submission struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	StudentID  uint   `json:"student_id" gorm:"not null;uniqueIndex:idx_student_question"`
	QuestionID uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_student_question"`
	Answer     string `json:"answer" gorm:"type:text;not null"`

	// Scoring
	AIScore     float64        `json:"ai_score"`
	LostMarks   float64        `json:"lost_marks"`
	MaxMarks    int            `json:"max_marks"`
	Improvement datatypes.JSON `json:"improvement" gorm:"type:jsonb"` // []string of suggestions

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student  Student  `json:"-" gorm:"foreignKey:StudentID"`
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}
