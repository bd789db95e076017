package repositories

import (
	"context"

	"github.com/imagingpedia/learning-service/internal/models"
)

// SessionRepository interface for test-session state
type SessionRepository interface {
	Create(ctx context.Context, session *models.TestSession) error
	GetByID(ctx context.Context, id uint) (*models.TestSession, error)
	Update(ctx context.Context, session *models.TestSession) error
	List(ctx context.Context, filters SessionFilters) ([]*models.TestSession, int64, error)
}
