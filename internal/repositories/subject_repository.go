package repositories

import (
	"context"

	"github.com/imagingpedia/learning-service/internal/models"
)

// SubjectRepository interface for catalog-subject operations
type SubjectRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	GetByIDWithChildren(ctx context.Context, id uint) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context) ([]*models.Subject, error)

	// Validation and checks
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error)
}

// PracticeSubjectRepository mirrors SubjectRepository for the practice
// hierarchy, plus the explicit-ID insert path used when a missing practice
// subject is auto-created from its catalog counterpart.
type PracticeSubjectRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, subject *models.PracticeSubject) error
	GetByID(ctx context.Context, id uint) (*models.PracticeSubject, error)
	GetByIDWithChildren(ctx context.Context, id uint) (*models.PracticeSubject, error)
	Update(ctx context.Context, subject *models.PracticeSubject) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context) ([]*models.PracticeSubject, error)
	ListRoots(ctx context.Context) ([]*models.PracticeSubject, error)

	// Explicit-ID insert; the caller sets ID and the backing sequence is
	// advanced afterwards so future default inserts do not collide.
	CreateWithID(ctx context.Context, subject *models.PracticeSubject) error

	// Validation and checks
	Exists(ctx context.Context, id uint) (bool, error)
	ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error)
}
