package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type practiceSubjectService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewPracticeSubjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) PracticeSubjectService {
	return &practiceSubjectService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *practiceSubjectService) Create(ctx context.Context, req *CreateSubjectRequest) (*models.PracticeSubject, error) {
	s.logger.Info("Creating practice subject", "name", req.Name, "parent_id", req.ParentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateSubjectCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if req.ParentID != nil {
		exists, err := s.repo.PracticeSubject().Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent practice subject: %w", err)
		}
		if !exists {
			return nil, ErrParentSubjectNotFound
		}
	}

	duplicate, err := s.repo.PracticeSubject().ExistsByNameInScope(ctx, req.Name, req.ParentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate practice subject name: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateSubjectName
	}

	subject := &models.PracticeSubject{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if req.DisplayOrder != nil {
		subject.DisplayOrder = *req.DisplayOrder
	} else {
		subject.DisplayOrder = 1
	}
	if req.DurationMinutes != nil {
		subject.DurationMinutes = *req.DurationMinutes
	} else {
		subject.DurationMinutes = 90
	}

	if err := s.repo.PracticeSubject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create practice subject: %w", err)
	}

	s.logger.Info("Practice subject created successfully", "subject_id", subject.ID)

	return subject, nil
}

func (s *practiceSubjectService) GetByID(ctx context.Context, id uint) (*models.PracticeSubject, error) {
	subject, err := s.repo.PracticeSubject().GetByIDWithChildren(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPracticeSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get practice subject: %w", err)
	}
	return subject, nil
}

func (s *practiceSubjectService) Update(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.PracticeSubject, error) {
	s.logger.Info("Updating practice subject", "subject_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateSubjectUpdate(id, req); len(errs) > 0 {
		return nil, errs
	}

	subject, err := s.repo.PracticeSubject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPracticeSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get practice subject: %w", err)
	}

	if req.ParentID != nil {
		exists, err := s.repo.PracticeSubject().Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent practice subject: %w", err)
		}
		if !exists {
			return nil, ErrParentSubjectNotFound
		}
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Description != nil {
		subject.Description = *req.Description
	}
	if req.ParentID != nil {
		subject.ParentID = req.ParentID
	}
	if req.DisplayOrder != nil {
		subject.DisplayOrder = *req.DisplayOrder
	}
	if req.DurationMinutes != nil {
		subject.DurationMinutes = *req.DurationMinutes
	}

	duplicate, err := s.repo.PracticeSubject().ExistsByNameInScope(ctx, subject.Name, subject.ParentID, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate practice subject name: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateSubjectName
	}

	if err := s.repo.PracticeSubject().Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update practice subject: %w", err)
	}

	s.logger.Info("Practice subject updated successfully", "subject_id", id)

	return subject, nil
}

func (s *practiceSubjectService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting practice subject", "subject_id", id)

	if err := s.repo.PracticeSubject().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPracticeSubjectNotFound
		}
		return fmt.Errorf("failed to delete practice subject: %w", err)
	}

	s.logger.Info("Practice subject deleted successfully", "subject_id", id)

	return nil
}

func (s *practiceSubjectService) List(ctx context.Context) ([]*models.PracticeSubject, error) {
	subjects, err := s.repo.PracticeSubject().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice subjects: %w", err)
	}
	return subjects, nil
}

func (s *practiceSubjectService) ListParents(ctx context.Context) ([]*models.PracticeSubject, error) {
	subjects, err := s.repo.PracticeSubject().ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice subject parents: %w", err)
	}
	return subjects, nil
}
