package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.TestSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create test session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.TestSession, error) {
	var session models.TestSession
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test session %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, session *models.TestSession) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update test session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.TestSession, int64, error) {
	query := s.helpers.ApplySessionFilters(s.db.WithContext(ctx).Model(&models.TestSession{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count test sessions: %w", err)
	}

	var sessions []*models.TestSession
	query = s.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list test sessions: %w", err)
	}

	return sessions, total, nil
}
