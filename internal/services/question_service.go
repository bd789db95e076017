package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/storage"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Provider
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Provider) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, file *multipart.FileHeader) (*models.Question, error) {
	s.logger.Info("Creating question", "subject_id", req.SubjectID)

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

	image, err := resolveImage(ctx, s.storage, file, req.ImageURL)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		SubjectID:     req.SubjectID,
		QuestionText:  req.QuestionText,
		ModelAnswer:   req.ModelAnswer,
		QuestionImage: image,
		MaxMarks:      req.MaxMarks,
	}
	if question.MaxMarks == 0 {
		question.MaxMarks = 10
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created successfully", "question_id", question.ID, "subject_id", question.SubjectID)

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, file *multipart.FileHeader) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.SubjectID != nil && *req.SubjectID != question.SubjectID {
		exists, err := s.repo.Subject().Exists(ctx, *req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject: %w", err)
		}
		if !exists {
			return nil, ErrSubjectNotFound
		}
		question.SubjectID = *req.SubjectID
	}

	if req.QuestionText != nil {
		question.QuestionText = *req.QuestionText
	}
	if req.ModelAnswer != nil {
		question.ModelAnswer = *req.ModelAnswer
	}
	if req.MaxMarks != nil {
		question.MaxMarks = *req.MaxMarks
	}

	if file != nil || req.ImageURL != nil {
		previous := question.QuestionImage

		image, err := resolveImage(ctx, s.storage, file, req.ImageURL)
		if err != nil {
			return nil, err
		}
		question.QuestionImage = image

		// Drop the replaced upload once the new value is in hand; a
		// failed delete only leaves an orphaned file behind.
		if models.IsUploadedImage(previous) {
			if err := s.storage.Remove(ctx, *previous); err != nil {
				s.logger.Warn("Failed to remove replaced image", "question_id", id, "path", *previous, "error", err)
			}
		}
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated successfully", "question_id", id)

	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting question", "question_id", id)

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	if question.HasUploadedImage() {
		if err := s.storage.Remove(ctx, *question.QuestionImage); err != nil {
			s.logger.Warn("Failed to remove question image", "question_id", id, "path", *question.QuestionImage, "error", err)
		}
	}

	s.logger.Info("Question deleted successfully", "question_id", id)

	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	page := 1
	size := len(questions)
	if filters.Limit > 0 {
		size = filters.Limit
		page = filters.Offset/filters.Limit + 1
	}

	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		Size:      size,
	}, nil
}

func (s *questionService) GetBySubject(ctx context.Context, subjectID uint) ([]*models.Question, error) {
	exists, err := s.repo.Subject().Exists(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject: %w", err)
	}
	if !exists {
		return nil, ErrSubjectNotFound
	}

	questions, err := s.repo.Question().GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subject questions: %w", err)
	}
	return questions, nil
}

// resolveImage picks the image value for a create or update: an upload wins
// over a URL field, an empty URL clears the image.
func resolveImage(ctx context.Context, store storage.Provider, file *multipart.FileHeader, imageURL *string) (*string, error) {
	if file != nil {
		path, err := store.Save(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to store question image: %w", err)
		}
		return &path, nil
	}
	if imageURL != nil && *imageURL != "" {
		url := *imageURL
		return &url, nil
	}
	return nil, nil
}
