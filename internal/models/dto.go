package models

import (
	"time"
)

// ScoreResult is the evaluation of one answer against its model answer.
type ScoreResult struct {
	AIScore     float64  `json:"ai_score"`
	LostMarks   float64  `json:"lost_marks"`
	Improvement []string `json:"improvement"`
}

// AdminInfo is the public view of an admin account, both inside the login
// response and when echoing decoded token claims.
type AdminInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AdminLoginResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	Admin   AdminInfo `json:"admin"`
}

type AdminVerifyResponse struct {
	Success bool      `json:"success"`
	Admin   AdminInfo `json:"admin"`
}

// SessionState is the wire representation of a test session, including the
// derived countdown value so clients never compute it from wall clocks.
type SessionState struct {
	ID               uint                   `json:"id"`
	StudentID        uint                   `json:"student_id"`
	SubjectID        uint                   `json:"subject_id"`
	Practice         bool                   `json:"practice"`
	Status           SessionStatus          `json:"status"`
	CurrentIndex     int                    `json:"current_question_index"`
	TotalQuestions   int                    `json:"total_questions"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	Answers          map[string]string      `json:"answers"`
	Scores           map[string]ScoreResult `json:"scores"`
	StartedAt        *time.Time             `json:"started_at,omitempty"`
	Deadline         *time.Time             `json:"deadline,omitempty"`
	SubmittedAt      *time.Time             `json:"submitted_at,omitempty"`
	EndReason        *string                `json:"end_reason,omitempty"`
}

// QuestionImportReport summarizes a spreadsheet import.
type QuestionImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
