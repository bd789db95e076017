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

type subjectService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *subjectService) Create(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error) {
	s.logger.Info("Creating subject", "name", req.Name, "parent_id", req.ParentID)

	// Validate request with business rules
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateSubjectCreate(req); len(errs) > 0 {
		return nil, errs
	}

	// Parent must exist when given
	if req.ParentID != nil {
		exists, err := s.repo.Subject().Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent subject: %w", err)
		}
		if !exists {
			return nil, ErrParentSubjectNotFound
		}
	}

	// Reject a case-insensitive duplicate name in the same parent scope
	duplicate, err := s.repo.Subject().ExistsByNameInScope(ctx, req.Name, req.ParentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate subject name: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateSubjectName
	}

	subject := &models.Subject{
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

	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("Subject created successfully", "subject_id", subject.ID)

	return subject, nil
}

func (s *subjectService) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByIDWithChildren(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}

func (s *subjectService) Update(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.Subject, error) {
	s.logger.Info("Updating subject", "subject_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateSubjectUpdate(id, req); len(errs) > 0 {
		return nil, errs
	}

	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	// New parent must exist
	if req.ParentID != nil {
		exists, err := s.repo.Subject().Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check parent subject: %w", err)
		}
		if !exists {
			return nil, ErrParentSubjectNotFound
		}
	}

	// Apply updates
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

	// Duplicate check against the (possibly new) name and scope
	duplicate, err := s.repo.Subject().ExistsByNameInScope(ctx, subject.Name, subject.ParentID, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate subject name: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateSubjectName
	}

	if err := s.repo.Subject().Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}

	s.logger.Info("Subject updated successfully", "subject_id", id)

	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting subject", "subject_id", id)

	if err := s.repo.Subject().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	s.logger.Info("Subject deleted successfully", "subject_id", id)

	return nil
}

func (s *subjectService) List(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}
