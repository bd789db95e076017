package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "learning-service"
	eventVersion = "1.0"
)

// Event types published by this service.
const (
	TypeStudentRegistered = "student.registered"
	TypeSubmissionScored  = "submission.scored"
	TypeSessionSubmitted  = "test_session.submitted"
	TypeQuestionImported  = "question.imported"
)

// Topics, one per aggregate.
const (
	TopicStudents    = "learning.students"
	TopicSubmissions = "learning.submissions"
	TopicSessions    = "learning.sessions"
	TopicQuestions   = "learning.questions"
)

// Event is the envelope for every message this service publishes.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with identity and timing filled in.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type StudentRegisteredEvent struct {
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	Email       string `json:"email"`
	SubjectID   uint   `json:"subject_id"`
}

type SubmissionScoredEvent struct {
	StudentID   uint     `json:"student_id"`
	QuestionID  uint     `json:"question_id"`
	AIScore     float64  `json:"ai_score"`
	LostMarks   float64  `json:"lost_marks"`
	MaxMarks    int      `json:"max_marks"`
	Improvement []string `json:"improvement"`
}

type SessionSubmittedEvent struct {
	SessionID         uint   `json:"session_id"`
	StudentID         uint   `json:"student_id"`
	SubjectID         uint   `json:"subject_id"`
	QuestionsAnswered int    `json:"questions_answered"`
	TotalQuestions    int    `json:"total_questions"`
	EndReason         string `json:"end_reason"`
}

type QuestionImportedEvent struct {
	SubjectIDs []uint `json:"subject_ids"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}
