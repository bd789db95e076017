package models

import (
	"time"
)

// Question belongs to one Subject. QuestionImage is either a relative
// "/uploads/..." path for a stored file or an external URL; nil when the
// question has no image.
type Question struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	SubjectID     uint    `json:"subject_id" gorm:"not null;index"`
	QuestionText  string  `json:"question_text" gorm:"type:text;not null"`
	QuestionImage *string `json:"question_image" gorm:"type:text"`
	ModelAnswer   string  `json:"model_answer" gorm:"type:text;not null"`
	MaxMarks      int     `json:"max_marks" gorm:"default:10"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subject Subject `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

// PracticeQuestion has the same shape as Question but hangs off the
// practice-subject hierarchy.
type PracticeQuestion struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	SubjectID     uint    `json:"subject_id" gorm:"not null;index"`
	QuestionText  string  `json:"question_text" gorm:"type:text;not null"`
	QuestionImage *string `json:"question_image" gorm:"type:text"`
	ModelAnswer   string  `json:"model_answer" gorm:"type:text;not null"`
	MaxMarks      int     `json:"max_marks" gorm:"default:10"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subject PracticeSubject `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

// HasUploadedImage reports whether the question image points at a file we
// stored ourselves, as opposed to an external URL.
func (q *Question) HasUploadedImage() bool {
	return IsUploadedImage(q.QuestionImage)
}

func (q *PracticeQuestion) HasUploadedImage() bool {
	return IsUploadedImage(q.QuestionImage)
}

// IsUploadedImage distinguishes stored "/uploads/..." paths from external
// URLs; external images are never deleted on replace.
func IsUploadedImage(image *string) bool {
	if image == nil {
		return false
	}
	return len(*image) > 0 && (*image)[0] == '/'
}
