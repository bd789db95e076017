package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &student, nil
}

func (s *StudentPostgreSQL) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return count > 0, nil
}

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

// Upsert inserts a submission or, when the student already answered this
// question, replaces the previous answer and score in place.
func (s *SubmissionPostgreSQL) Upsert(ctx context.Context, submission *models.Submission) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer", "ai_score", "lost_marks", "max_marks", "improvement", "updated_at",
			}),
		}).
		Create(submission).Error
	if err != nil {
		return fmt.Errorf("failed to upsert submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByStudentAndQuestion(ctx context.Context, studentID, questionID uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("student_id = ? AND question_id = ?", studentID, questionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission for student %d question %d: %w", studentID, questionID, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Submission{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.QuestionID != nil {
		query = query.Where("question_id = ?", *filters.QuestionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	var submissions []*models.Submission
	query = s.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

type AdminPostgreSQL struct {
	db *gorm.DB
}

func NewAdminPostgreSQL(db *gorm.DB) repositories.AdminRepository {
	return &AdminPostgreSQL{db: db}
}

func (a *AdminPostgreSQL) Create(ctx context.Context, admin *models.AdminAccount) error {
	if err := a.db.WithContext(ctx).Create(admin).Error; err != nil {
		// Duplicate usernames surface as gorm.ErrDuplicatedKey via the
		// driver's error translation.
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (a *AdminPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	if err := a.db.WithContext(ctx).
		Where("username = ?", username).
		First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %q: %w", username, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	if err := a.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}
