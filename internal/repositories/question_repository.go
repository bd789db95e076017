package repositories

import (
	"context"

	"github.com/imagingpedia/learning-service/internal/models"
)

// QuestionRepository interface for catalog-question operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, questions []*models.Question) error

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	GetBySubject(ctx context.Context, subjectID uint) ([]*models.Question, error)
}

// PracticeQuestionRepository interface for practice-question operations
type PracticeQuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.PracticeQuestion) error
	GetByID(ctx context.Context, id uint) (*models.PracticeQuestion, error)
	Update(ctx context.Context, question *models.PracticeQuestion) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters QuestionFilters) ([]*models.PracticeQuestion, int64, error)
	GetBySubject(ctx context.Context, subjectID uint) ([]*models.PracticeQuestion, error)
}
