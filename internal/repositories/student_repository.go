package repositories

import (
	"context"

	"github.com/imagingpedia/learning-service/internal/models"
)

// StudentRepository interface for student registration records
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// SubmissionRepository interface for scored answers. Upsert keeps a single
// row per (student, question) pair.
type SubmissionRepository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
	GetByStudentAndQuestion(ctx context.Context, studentID, questionID uint) (*models.Submission, error)
	List(ctx context.Context, filters SubmissionFilters) ([]*models.Submission, int64, error)
}

// AdminRepository interface for console accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminAccount) error
	GetByUsername(ctx context.Context, username string) (*models.AdminAccount, error)
	GetByID(ctx context.Context, id uint) (*models.AdminAccount, error)
}
