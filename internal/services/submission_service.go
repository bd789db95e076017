package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) SubmissionService {
	return &submissionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Score grades the answer, stores the result, and returns it. A repeat
// submission for the same (student, question) overwrites the stored row.
func (s *submissionService) Score(ctx context.Context, req *SubmissionRequest) (*models.ScoreResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateAnswer(req.Answer); len(errs) > 0 {
		return nil, errs
	}

	result := ScoreAnswer(req.Answer, req.ModelAnswer, req.MaxMarks)

	improvement, err := json.Marshal(result.Improvement)
	if err != nil {
		return nil, fmt.Errorf("failed to encode improvement list: %w", err)
	}

	maxMarks := req.MaxMarks
	if maxMarks <= 0 {
		maxMarks = 10
	}

	submission := &models.Submission{
		StudentID:   req.StudentID,
		QuestionID:  req.QuestionID,
		Answer:      req.Answer,
		AIScore:     result.AIScore,
		LostMarks:   result.LostMarks,
		MaxMarks:    maxMarks,
		Improvement: improvement,
	}

	if err := s.repo.Submission().Upsert(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	event := events.NewEvent(events.TypeSubmissionScored, events.SubmissionScoredEvent{
		StudentID:   req.StudentID,
		QuestionID:  req.QuestionID,
		AIScore:     result.AIScore,
		LostMarks:   result.LostMarks,
		MaxMarks:    maxMarks,
		Improvement: result.Improvement,
	})
	if err := s.publisher.Publish(ctx, events.TopicSubmissions, event); err != nil {
		s.logger.Warn("Failed to publish submission scored event", "student_id", req.StudentID, "question_id", req.QuestionID, "error", err)
	}

	s.logger.Info("Submission scored",
		"student_id", req.StudentID,
		"question_id", req.QuestionID,
		"ai_score", result.AIScore,
		"max_marks", maxMarks)

	return &result, nil
}
