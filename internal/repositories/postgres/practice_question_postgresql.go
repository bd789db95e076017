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

type PracticeQuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewPracticeQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.PracticeQuestionRepository {
	return &PracticeQuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (q *PracticeQuestionPostgreSQL) Create(ctx context.Context, question *models.PracticeQuestion) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create practice question: %w", err)
	}

	q.invalidate(ctx, question.SubjectID)

	return nil
}

func (q *PracticeQuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.PracticeQuestion, error) {
	var question models.PracticeQuestion
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("practice question %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get practice question: %w", err)
	}
	return &question, nil
}

func (q *PracticeQuestionPostgreSQL) Update(ctx context.Context, question *models.PracticeQuestion) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update practice question: %w", err)
	}

	q.invalidate(ctx, question.SubjectID)

	return nil
}

func (q *PracticeQuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	var question models.PracticeQuestion
	if err := q.db.WithContext(ctx).Select("id, subject_id").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("practice question %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get practice question before delete: %w", err)
	}

	if err := q.db.WithContext(ctx).Delete(&models.PracticeQuestion{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete practice question: %w", err)
	}

	q.invalidate(ctx, question.SubjectID)

	return nil
}

// ===== QUERY OPERATIONS =====

func (q *PracticeQuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.PracticeQuestion, int64, error) {
	query := q.helpers.ApplyQuestionFilters(q.db.WithContext(ctx).Model(&models.PracticeQuestion{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count practice questions: %w", err)
	}

	var questions []*models.PracticeQuestion
	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list practice questions: %w", err)
	}

	return questions, total, nil
}

func (q *PracticeQuestionPostgreSQL) GetBySubject(ctx context.Context, subjectID uint) ([]*models.PracticeQuestion, error) {
	cacheKey := fmt.Sprintf("subject:practice:%d:all", subjectID)
	var questions []*models.PracticeQuestion

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestions []*models.PracticeQuestion
		if err := q.db.WithContext(ctx).
			Where("subject_id = ?", subjectID).
			Order("id").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to get practice questions by subject: %w", err)
		}
		return dbQuestions, nil
	})

	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (q *PracticeQuestionPostgreSQL) invalidate(ctx context.Context, subjectID uint) {
	cache.SafeDelete(ctx, q.cacheManager.Question, fmt.Sprintf("subject:practice:%d:all", subjectID))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")
}
