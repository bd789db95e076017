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

type practiceQuestionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	storage   storage.Provider
}

func NewPracticeQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, store storage.Provider) PracticeQuestionService {
	return &practiceQuestionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		storage:   store,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Create stores a practice question, materializing its practice subject
// first when only the catalog subject exists. The subject copy and the
// question insert commit together.
func (s *practiceQuestionService) Create(ctx context.Context, req *CreateQuestionRequest, file *multipart.FileHeader) (*models.PracticeQuestion, error) {
	s.logger.Info("Creating practice question", "subject_id", req.SubjectID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	image, err := resolveImage(ctx, s.storage, file, req.ImageURL)
	if err != nil {
		return nil, err
	}

	question := &models.PracticeQuestion{
		SubjectID:     req.SubjectID,
		QuestionText:  req.QuestionText,
		ModelAnswer:   req.ModelAnswer,
		QuestionImage: image,
		MaxMarks:      req.MaxMarks,
	}
	if question.MaxMarks == 0 {
		question.MaxMarks = 10
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.ensureSubjectExists(ctx, txRepo, req.SubjectID); err != nil {
			return err
		}
		return txRepo.PracticeQuestion().Create(ctx, question)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create practice question: %w", err)
	}

	s.logger.Info("Practice question created successfully", "question_id", question.ID, "subject_id", question.SubjectID)

	return question, nil
}

// ensureSubjectExists backfills a missing practice subject under its catalog
// id: a copy of the catalog row when one exists, a placeholder otherwise.
func (s *practiceQuestionService) ensureSubjectExists(ctx context.Context, repo repositories.Repository, subjectID uint) error {
	exists, err := repo.PracticeSubject().Exists(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to check practice subject: %w", err)
	}
	if exists {
		return nil
	}

	practice := &models.PracticeSubject{ID: subjectID}

	catalog, err := repo.Subject().GetByID(ctx, subjectID)
	switch {
	case err == nil:
		practice.Name = catalog.Name
		practice.Description = catalog.Description
		practice.DisplayOrder = catalog.DisplayOrder
		practice.DurationMinutes = catalog.DurationMinutes
	case repositories.IsNotFoundError(err):
		practice.Name = fmt.Sprintf("Subject %d", subjectID)
		practice.DisplayOrder = 1
		practice.DurationMinutes = 90
	default:
		return fmt.Errorf("failed to get catalog subject: %w", err)
	}

	s.logger.Info("Backfilling practice subject", "subject_id", subjectID, "name", practice.Name)

	return repo.PracticeSubject().CreateWithID(ctx, practice)
}

func (s *practiceQuestionService) GetByID(ctx context.Context, id uint) (*models.PracticeQuestion, error) {
	question, err := s.repo.PracticeQuestion().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPracticeQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get practice question: %w", err)
	}
	return question, nil
}

func (s *practiceQuestionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, file *multipart.FileHeader) (*models.PracticeQuestion, error) {
	s.logger.Info("Updating practice question", "question_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.PracticeQuestion().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPracticeQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get practice question: %w", err)
	}

	if req.SubjectID != nil {
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

		if models.IsUploadedImage(previous) {
			if err := s.storage.Remove(ctx, *previous); err != nil {
				s.logger.Warn("Failed to remove replaced image", "question_id", id, "path", *previous, "error", err)
			}
		}
	}

	// The practice subject is materialized on update exactly as on
	// create, so moving a question to a catalog-only subject backfills
	// it rather than failing.
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.ensureSubjectExists(ctx, txRepo, question.SubjectID); err != nil {
			return err
		}
		return txRepo.PracticeQuestion().Update(ctx, question)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update practice question: %w", err)
	}

	s.logger.Info("Practice question updated successfully", "question_id", id)

	return question, nil
}

func (s *practiceQuestionService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting practice question", "question_id", id)

	question, err := s.repo.PracticeQuestion().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPracticeQuestionNotFound
		}
		return fmt.Errorf("failed to get practice question: %w", err)
	}

	if err := s.repo.PracticeQuestion().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPracticeQuestionNotFound
		}
		return fmt.Errorf("failed to delete practice question: %w", err)
	}

	if question.HasUploadedImage() {
		if err := s.storage.Remove(ctx, *question.QuestionImage); err != nil {
			s.logger.Warn("Failed to remove question image", "question_id", id, "path", *question.QuestionImage, "error", err)
		}
	}

	s.logger.Info("Practice question deleted successfully", "question_id", id)

	return nil
}

func (s *practiceQuestionService) List(ctx context.Context, filters repositories.QuestionFilters) (*PracticeQuestionListResponse, error) {
	questions, total, err := s.repo.PracticeQuestion().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice questions: %w", err)
	}

	page := 1
	size := len(questions)
	if filters.Limit > 0 {
		size = filters.Limit
		page = filters.Offset/filters.Limit + 1
	}

	return &PracticeQuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		Size:      size,
	}, nil
}

func (s *practiceQuestionService) GetBySubject(ctx context.Context, subjectID uint) ([]*models.PracticeQuestion, error) {
	questions, err := s.repo.PracticeQuestion().GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice subject questions: %w", err)
	}
	return questions, nil
}
