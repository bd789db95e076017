package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/cache"
	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
)

type PracticeSubjectPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPracticeSubjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PracticeSubjectRepository {
	return &PracticeSubjectPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (s *PracticeSubjectPostgreSQL) Create(ctx context.Context, subject *models.PracticeSubject) error {
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create practice subject: %w", err)
	}

	s.invalidateLists(ctx)

	return nil
}

// CreateWithID inserts a row whose ID the caller has already assigned, then
// bumps the id sequence past the highest assigned value so later default
// inserts do not collide with copied rows.
func (s *PracticeSubjectPostgreSQL) CreateWithID(ctx context.Context, subject *models.PracticeSubject) error {
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create practice subject with id %d: %w", subject.ID, err)
	}

	if err := s.db.WithContext(ctx).
		Exec("SELECT setval(pg_get_serial_sequence('practice_subjects', 'id'), (SELECT COALESCE(MAX(id), 1) FROM practice_subjects))").
		Error; err != nil {
		return fmt.Errorf("failed to advance practice_subjects sequence: %w", err)
	}

	s.invalidateLists(ctx)

	return nil
}

func (s *PracticeSubjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.PracticeSubject, error) {
	var subject models.PracticeSubject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("practice subject %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get practice subject: %w", err)
	}
	return &subject, nil
}

func (s *PracticeSubjectPostgreSQL) GetByIDWithChildren(ctx context.Context, id uint) (*models.PracticeSubject, error) {
	var subject models.PracticeSubject
	if err := s.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, id")
		}).
		First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("practice subject %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get practice subject with children: %w", err)
	}
	return &subject, nil
}

func (s *PracticeSubjectPostgreSQL) Update(ctx context.Context, subject *models.PracticeSubject) error {
	if err := s.db.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("failed to update practice subject: %w", err)
	}

	s.invalidateLists(ctx)

	return nil
}

func (s *PracticeSubjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.PracticeSubject{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete practice subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("practice subject %d: %w", id, gorm.ErrRecordNotFound)
	}

	s.invalidateLists(ctx)

	return nil
}

// ===== QUERY OPERATIONS =====

func (s *PracticeSubjectPostgreSQL) List(ctx context.Context) ([]*models.PracticeSubject, error) {
	var subjects []*models.PracticeSubject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, "list:practice", &subjects, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubjects []*models.PracticeSubject
		if err := s.db.WithContext(ctx).
			Order("display_order, id").
			Find(&dbSubjects).Error; err != nil {
			return nil, fmt.Errorf("failed to list practice subjects: %w", err)
		}
		return dbSubjects, nil
	})

	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// ListRoots retrieves only top-level practice subjects
func (s *PracticeSubjectPostgreSQL) ListRoots(ctx context.Context) ([]*models.PracticeSubject, error) {
	var subjects []*models.PracticeSubject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, "list:practice:parents", &subjects, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubjects []*models.PracticeSubject
		if err := s.db.WithContext(ctx).
			Where("parent_id IS NULL").
			Order("display_order, id").
			Find(&dbSubjects).Error; err != nil {
			return nil, fmt.Errorf("failed to list practice subject parents: %w", err)
		}
		return dbSubjects, nil
	})

	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// ===== VALIDATION AND CHECKS =====

func (s *PracticeSubjectPostgreSQL) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.PracticeSubject{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check practice subject existence: %w", err)
	}
	return count > 0, nil
}

func (s *PracticeSubjectPostgreSQL) ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.PracticeSubject{}).
		Where("LOWER(subject_name) = LOWER(?)", name)

	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check duplicate practice subject name: %w", err)
	}
	return count > 0, nil
}

func (s *PracticeSubjectPostgreSQL) invalidateLists(ctx context.Context) {
	cache.SafeDelete(ctx, s.cacheManager.Subject, "list:practice", "list:practice:parents")
}
