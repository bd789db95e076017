package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionSubmitted  SessionStatus = "submitted"
)

const (
	SessionEndReasonTimeout   = "time_out"
	SessionEndReasonCompleted = "completed"
	SessionEndReasonForced    = "forced"
)

// TestSession is the server-side record of one test run: which question the
// student is on, what they answered, what each answer scored, and when the
// clock runs out. Status moves not_started -> in_progress -> submitted, with
// retake looping submitted back to a fresh in_progress.
type TestSession struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	StudentID uint          `json:"student_id" gorm:"not null;index"`
	SubjectID uint          `json:"subject_id" gorm:"not null;index"`
	Practice  bool          `json:"practice"`
	Status    SessionStatus `json:"status" gorm:"default:not_started;index"`

	// Progress
	CurrentIndex   int `json:"current_question_index"`
	TotalQuestions int `json:"total_questions"`

	// Answers and scores are keyed by question id.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Scores  datatypes.JSON `json:"scores" gorm:"type:jsonb"`

	// Timing
	StartedAt   *time.Time `json:"started_at"`
	Deadline    *time.Time `json:"deadline"`
	SubmittedAt *time.Time `json:"submitted_at"`
	EndReason   *string    `json:"end_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student Student `json:"-" gorm:"foreignKey:StudentID"`
	Subject Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

// AnswerMap decodes the stored answers; an empty column decodes to an empty
// map, never nil.
func (s *TestSession) AnswerMap() (map[string]string, error) {
	out := make(map[string]string)
	if len(s.Answers) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Answers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TestSession) SetAnswerMap(answers map[string]string) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	s.Answers = raw
	return nil
}

// ScoreMap decodes the cached per-question scoring results.
func (s *TestSession) ScoreMap() (map[string]ScoreResult, error) {
	out := make(map[string]ScoreResult)
	if len(s.Scores) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Scores, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TestSession) SetScoreMap(scores map[string]ScoreResult) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	s.Scores = raw
	return nil
}

// RemainingSeconds reports the time left on the clock at now, floored at
// zero. Sessions without an armed deadline report zero.
func (s *TestSession) RemainingSeconds(now time.Time) int {
	if s.Deadline == nil {
		return 0
	}
	remaining := int(s.Deadline.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
