package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest) (*models.Student, error) {
	s.logger.Info("Registering student", "name", req.Name, "subject_id", req.SubjectID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Subject().Exists(ctx, req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject: %w", err)
	}
	if !exists {
		return nil, ErrSubjectNotFound
	}

	student := &models.Student{
		Name:      req.Name,
		Email:     req.Email,
		SubjectID: req.SubjectID,
	}

	if err := s.repo.Student().Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	event := events.NewEvent(events.TypeStudentRegistered, events.StudentRegisteredEvent{
		StudentID:   student.ID,
		StudentName: student.Name,
		Email:       student.Email,
		SubjectID:   student.SubjectID,
	})
	if err := s.publisher.Publish(ctx, events.TopicStudents, event); err != nil {
		// Registration already committed; downstream consumers catch up
		// from the next event.
		s.logger.Warn("Failed to publish student registered event", "student_id", student.ID, "error", err)
	}

	s.logger.Info("Student registered successfully", "student_id", student.ID)

	return student, nil
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}
