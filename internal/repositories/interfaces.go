package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	SubjectID *uint      `json:"subject_id"`
	Search    *string    `json:"search"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "id", "max_marks"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	StudentID *uint   `json:"student_id"`
	SubjectID *uint   `json:"subject_id"`
	Status    *string `json:"status"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type SubmissionFilters struct {
	StudentID  *uint `json:"student_id"`
	QuestionID *uint `json:"question_id"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
