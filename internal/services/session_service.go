package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	now       func() time.Time
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) SessionService {
	return &sessionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// ===== LIFECYCLE OPERATIONS =====

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest) (*models.SessionState, error) {
	s.logger.Info("Creating test session", "student_id", req.StudentID, "subject_id", req.SubjectID, "practice", req.Practice)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	studentExists, err := s.repo.Student().Exists(ctx, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	}
	if !studentExists {
		return nil, ErrStudentNotFound
	}

	if _, err := s.subjectDuration(ctx, req.SubjectID, req.Practice); err != nil {
		return nil, err
	}

	questions, err := s.loadQuestions(ctx, req.SubjectID, req.Practice)
	if err != nil {
		return nil, err
	}

	session := &models.TestSession{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		Practice:       req.Practice,
		Status:         models.SessionNotStarted,
		TotalQuestions: len(questions),
		Answers:        []byte("{}"),
		Scores:         []byte("{}"),
	}

	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	s.logger.Info("Test session created", "session_id", session.ID, "total_questions", session.TotalQuestions)

	return s.toState(session)
}

func (s *sessionService) Get(ctx context.Context, id uint) (*models.SessionState, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.autoSubmitIfExpired(ctx, session); err != nil {
		return nil, err
	}

	return s.toState(session)
}

func (s *sessionService) Start(ctx context.Context, id uint) (*models.SessionState, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionNotStarted {
		return nil, NewBusinessRuleError("session_already_started", "test session has already been started")
	}

	duration, err := s.subjectDuration(ctx, session.SubjectID, session.Practice)
	if err != nil {
		return nil, err
	}

	questions, err := s.loadQuestions(ctx, session.SubjectID, session.Practice)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deadline := now.Add(time.Duration(duration) * time.Minute)

	session.Status = models.SessionInProgress
	session.CurrentIndex = 0
	session.TotalQuestions = len(questions)
	session.StartedAt = &now
	session.Deadline = &deadline

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start test session: %w", err)
	}

	s.logger.Info("Test session started", "session_id", id, "deadline", deadline, "total_questions", session.TotalQuestions)

	return s.toState(session)
}

func (s *sessionService) Answer(ctx context.Context, id uint, req *SessionAnswerRequest) (*models.SessionState, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateAnswer(req.Answer); len(errs) > 0 {
		return nil, errs
	}

	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireInProgress(ctx, session); err != nil {
		return nil, err
	}

	question, position, err := s.findQuestion(ctx, session, req.QuestionID)
	if err != nil {
		return nil, err
	}

	answers, err := session.AnswerMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode session answers: %w", err)
	}
	key := strconv.FormatUint(uint64(req.QuestionID), 10)
	answers[key] = req.Answer
	if err := session.SetAnswerMap(answers); err != nil {
		return nil, fmt.Errorf("failed to encode session answers: %w", err)
	}

	// Practice runs keep answers in the session only; timed tests score
	// and persist each answer as it lands.
	if !session.Practice {
		result := ScoreAnswer(req.Answer, question.ModelAnswer, question.MaxMarks)

		improvement, err := json.Marshal(result.Improvement)
		if err != nil {
			return nil, fmt.Errorf("failed to encode improvement list: %w", err)
		}
		submission := &models.Submission{
			StudentID:   session.StudentID,
			QuestionID:  req.QuestionID,
			Answer:      req.Answer,
			AIScore:     result.AIScore,
			LostMarks:   result.LostMarks,
			MaxMarks:    question.MaxMarks,
			Improvement: improvement,
		}
		if err := s.repo.Submission().Upsert(ctx, submission); err != nil {
			return nil, fmt.Errorf("failed to store submission: %w", err)
		}

		scores, err := session.ScoreMap()
		if err != nil {
			return nil, fmt.Errorf("failed to decode session scores: %w", err)
		}
		scores[key] = result
		if err := session.SetScoreMap(scores); err != nil {
			return nil, fmt.Errorf("failed to encode session scores: %w", err)
		}
	}

	// Only answering the current question moves the cursor forward;
	// re-answering an earlier question after navigating back updates it
	// in place. The session completes when the cursor passes the last
	// question, never from a repeat answer.
	if position == session.CurrentIndex {
		session.CurrentIndex++
		if session.CurrentIndex >= session.TotalQuestions {
			s.markSubmitted(session, models.SessionEndReasonCompleted)
		}
	}

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update test session: %w", err)
	}

	if session.Status == models.SessionSubmitted {
		s.publishSubmitted(ctx, session)
	}

	return s.toState(session)
}

func (s *sessionService) Back(ctx context.Context, id uint) (*models.SessionState, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireInProgress(ctx, session); err != nil {
		return nil, err
	}

	if session.CurrentIndex > 0 {
		session.CurrentIndex--
	}

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update test session: %w", err)
	}

	return s.toState(session)
}

func (s *sessionService) Submit(ctx context.Context, id uint) (*models.SessionState, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireInProgress(ctx, session); err != nil {
		return nil, err
	}

	s.markSubmitted(session, models.SessionEndReasonForced)

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to submit test session: %w", err)
	}

	s.publishSubmitted(ctx, session)

	return s.toState(session)
}

func (s *sessionService) Retake(ctx context.Context, id uint) (*models.SessionState, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status != models.SessionSubmitted {
		return nil, NewBusinessRuleError("session_not_submitted", "only a submitted test session can be retaken")
	}

	duration, err := s.subjectDuration(ctx, session.SubjectID, session.Practice)
	if err != nil {
		return nil, err
	}

	questions, err := s.loadQuestions(ctx, session.SubjectID, session.Practice)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deadline := now.Add(time.Duration(duration) * time.Minute)

	session.Status = models.SessionInProgress
	session.CurrentIndex = 0
	session.TotalQuestions = len(questions)
	session.Answers = []byte("{}")
	session.Scores = []byte("{}")
	session.StartedAt = &now
	session.Deadline = &deadline
	session.SubmittedAt = nil
	session.EndReason = nil

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to retake test session: %w", err)
	}

	s.logger.Info("Test session retaken", "session_id", id, "deadline", deadline)

	return s.toState(session)
}

// ===== HELPERS =====

func (s *sessionService) loadSession(ctx context.Context, id uint) (*models.TestSession, error) {
	session, err := s.repo.Session().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}
	return session, nil
}

// requireInProgress guards mutating operations. A session whose clock has run
// out is force-submitted first, and the operation is rejected.
func (s *sessionService) requireInProgress(ctx context.Context, session *models.TestSession) error {
	expired, err := s.autoSubmitIfExpired(ctx, session)
	if err != nil {
		return err
	}
	if expired {
		return NewBusinessRuleError("session_time_out", "test session time has run out")
	}
	if session.Status != models.SessionInProgress {
		return NewBusinessRuleError("session_not_in_progress", fmt.Sprintf("test session is %s", session.Status))
	}
	return nil
}

// autoSubmitIfExpired persists the timeout transition the first time any
// operation observes an in-progress session past its deadline.
func (s *sessionService) autoSubmitIfExpired(ctx context.Context, session *models.TestSession) (bool, error) {
	if session.Status != models.SessionInProgress || session.Deadline == nil {
		return false, nil
	}
	if s.now().Before(*session.Deadline) {
		return false, nil
	}

	s.markSubmitted(session, models.SessionEndReasonTimeout)

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return false, fmt.Errorf("failed to auto-submit test session: %w", err)
	}

	s.logger.Info("Test session auto-submitted on timeout", "session_id", session.ID)

	s.publishSubmitted(ctx, session)

	return true, nil
}

func (s *sessionService) markSubmitted(session *models.TestSession, reason string) {
	now := s.now()
	session.Status = models.SessionSubmitted
	session.SubmittedAt = &now
	session.EndReason = &reason
}

func (s *sessionService) publishSubmitted(ctx context.Context, session *models.TestSession) {
	answers, err := session.AnswerMap()
	if err != nil {
		s.logger.Warn("Failed to decode answers for submitted event", "session_id", session.ID, "error", err)
		answers = map[string]string{}
	}

	reason := ""
	if session.EndReason != nil {
		reason = *session.EndReason
	}

	event := events.NewEvent(events.TypeSessionSubmitted, events.SessionSubmittedEvent{
		SessionID:         session.ID,
		StudentID:         session.StudentID,
		SubjectID:         session.SubjectID,
		QuestionsAnswered: len(answers),
		TotalQuestions:    session.TotalQuestions,
		EndReason:         reason,
	})
	if err := s.publisher.Publish(ctx, events.TopicSessions, event); err != nil {
		s.logger.Warn("Failed to publish session submitted event", "session_id", session.ID, "error", err)
	}
}

// subjectDuration resolves the test length for the session's subject, from
// the practice or catalog hierarchy as appropriate.
func (s *sessionService) subjectDuration(ctx context.Context, subjectID uint, practice bool) (int, error) {
	if practice {
		subject, err := s.repo.PracticeSubject().GetByID(ctx, subjectID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return 0, ErrPracticeSubjectNotFound
			}
			return 0, fmt.Errorf("failed to get practice subject: %w", err)
		}
		return subject.DurationMinutes, nil
	}

	subject, err := s.repo.Subject().GetByID(ctx, subjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrSubjectNotFound
		}
		return 0, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject.DurationMinutes, nil
}

// sessionQuestion is the slice of question data the state machine needs,
// regardless of which hierarchy it came from.
type sessionQuestion struct {
	ID          uint
	ModelAnswer string
	MaxMarks    int
}

func (s *sessionService) loadQuestions(ctx context.Context, subjectID uint, practice bool) ([]sessionQuestion, error) {
	if practice {
		questions, err := s.repo.PracticeQuestion().GetBySubject(ctx, subjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load practice questions: %w", err)
		}
		out := make([]sessionQuestion, len(questions))
		for i, q := range questions {
			out[i] = sessionQuestion{ID: q.ID, ModelAnswer: q.ModelAnswer, MaxMarks: q.MaxMarks}
		}
		return out, nil
	}

	questions, err := s.repo.Question().GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	out := make([]sessionQuestion, len(questions))
	for i, q := range questions {
		out[i] = sessionQuestion{ID: q.ID, ModelAnswer: q.ModelAnswer, MaxMarks: q.MaxMarks}
	}
	return out, nil
}

// findQuestion resolves a question id to its data and its position in the
// session's question order.
func (s *sessionService) findQuestion(ctx context.Context, session *models.TestSession, questionID uint) (*sessionQuestion, int, error) {
	questions, err := s.loadQuestions(ctx, session.SubjectID, session.Practice)
	if err != nil {
		return nil, 0, err
	}
	for i := range questions {
		if questions[i].ID == questionID {
			return &questions[i], i, nil
		}
	}
	if session.Practice {
		return nil, 0, ErrPracticeQuestionNotFound
	}
	return nil, 0, ErrQuestionNotFound
}

// toState builds the wire representation, including the countdown as seen at
// this instant.
func (s *sessionService) toState(session *models.TestSession) (*models.SessionState, error) {
	answers, err := session.AnswerMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode session answers: %w", err)
	}
	scores, err := session.ScoreMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode session scores: %w", err)
	}

	return &models.SessionState{
		ID:               session.ID,
		StudentID:        session.StudentID,
		SubjectID:        session.SubjectID,
		Practice:         session.Practice,
		Status:           session.Status,
		CurrentIndex:     session.CurrentIndex,
		TotalQuestions:   session.TotalQuestions,
		RemainingSeconds: session.RemainingSeconds(s.now()),
		Answers:          answers,
		Scores:           scores,
		StartedAt:        session.StartedAt,
		Deadline:         session.Deadline,
		SubmittedAt:      session.SubmittedAt,
		EndReason:        session.EndReason,
	}, nil
}
