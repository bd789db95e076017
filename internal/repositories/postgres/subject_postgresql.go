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

type SubjectPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubjectRepository {
	return &SubjectPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new subject and invalidates list caches
func (s *SubjectPostgreSQL) Create(ctx context.Context, subject *models.Subject) error {
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Subject, "list:*")

	return nil
}

// GetByID retrieves a subject by ID with caching
func (s *SubjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var subject models.Subject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, cacheKey, &subject, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubject models.Subject
		if err := s.db.WithContext(ctx).First(&dbSubject, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("subject %d: %w", id, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get subject: %w", err)
		}
		return &dbSubject, nil
	})

	if err != nil {
		return nil, err
	}

	return &subject, nil
}

// GetByIDWithChildren retrieves a subject with its direct children preloaded
func (s *SubjectPostgreSQL) GetByIDWithChildren(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, id")
		}).
		First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subject %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get subject with children: %w", err)
	}
	return &subject, nil
}

// Update updates a subject
func (s *SubjectPostgreSQL) Update(ctx context.Context, subject *models.Subject) error {
	if err := s.db.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}

	cache.InvalidateSubjectCache(ctx, s.cacheManager, subject.ID)

	return nil
}

// Delete removes a subject; dependent questions and child subjects go with
// it through the ON DELETE CASCADE constraints.
func (s *SubjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Subject{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete subject: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subject %d: %w", id, gorm.ErrRecordNotFound)
	}

	cache.InvalidateSubjectCache(ctx, s.cacheManager, id)
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Question, fmt.Sprintf("subject:%d:*", id))

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves all subjects ordered for display, with caching
func (s *SubjectPostgreSQL) List(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject

	err := s.cacheManager.Subject.CacheOrExecute(ctx, "list:all", &subjects, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubjects []*models.Subject
		if err := s.db.WithContext(ctx).
			Order("display_order, id").
			Find(&dbSubjects).Error; err != nil {
			return nil, fmt.Errorf("failed to list subjects: %w", err)
		}
		return dbSubjects, nil
	})

	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// ===== VALIDATION AND CHECKS =====

// Exists checks whether a subject row exists
func (s *SubjectPostgreSQL) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subject existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByNameInScope checks for a case-insensitive duplicate name under the
// same parent. Top-level subjects (nil parent) form their own scope.
func (s *SubjectPostgreSQL) ExistsByNameInScope(ctx context.Context, name string, parentID *uint, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Subject{}).
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
		return false, fmt.Errorf("failed to check duplicate subject name: %w", err)
	}
	return count > 0, nil
}
