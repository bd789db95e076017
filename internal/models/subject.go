package models

import (
	"time"
)

// Subject is a node in the course catalog tree. The hierarchy is
// self-referential; deleting a subject cascades to its children and
// questions at the database level.
type Subject struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"subject_name" gorm:"column:subject_name;not null;size:255"`
	Description     string `json:"subject_description" gorm:"column:subject_description;type:text"`
	ParentID        *uint  `json:"parent_id" gorm:"index"`
	DisplayOrder    int    `json:"display_order" gorm:"default:1"`
	DurationMinutes int    `json:"duration_minutes" gorm:"default:90"` // timed-test length

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Parent    *Subject   `json:"-" gorm:"foreignKey:ParentID"`
	Children  []Subject  `json:"children,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Questions []Question `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

// PracticeSubject mirrors Subject in a parallel hierarchy used by the
// unscored practice flow. Rows may be auto-created with an explicit ID
// copied from the main subject table, so the backing sequence is advanced
// after such inserts.
type PracticeSubject struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"subject_name" gorm:"column:subject_name;not null;size:255"`
	Description     string `json:"subject_description" gorm:"column:subject_description;type:text"`
	ParentID        *uint  `json:"parent_id" gorm:"index"`
	DisplayOrder    int    `json:"display_order" gorm:"default:1"`
	DurationMinutes int    `json:"duration_minutes" gorm:"default:90"`

	CreatedAt time.Time `json:"created_at"`

	Children  []PracticeSubject  `json:"children,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Questions []PracticeQuestion `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

func (PracticeSubject) TableName() string {
	return "practice_subjects"
}
