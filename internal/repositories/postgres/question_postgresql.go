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

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates cache
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, fmt.Sprintf("subject:%d:*", question.SubjectID))
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")

	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := q.db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("question %d: %w", id, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.SubjectID)

	return nil
}

// Delete removes a question row
func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	// Fetch subject id before deleting for cache invalidation
	var question models.Question
	if err := q.db.WithContext(ctx).Select("id, subject_id").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get question before delete: %w", err)
	}

	if err := q.db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.SubjectID)

	return nil
}

// ===== BULK OPERATIONS =====

// CreateBatch creates multiple questions in a batch
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	if err := q.db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "subject:*")
	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, "list:*")

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves questions matching the filters along with a total count
func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.helpers.ApplyQuestionFilters(q.db.WithContext(ctx).Model(&models.Question{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetBySubject retrieves all questions for one subject, cached
func (q *QuestionPostgreSQL) GetBySubject(ctx context.Context, subjectID uint) ([]*models.Question, error) {
	cacheKey := fmt.Sprintf("subject:%d:all", subjectID)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestions []*models.Question
		if err := q.db.WithContext(ctx).
			Where("subject_id = ?", subjectID).
			Order("id").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to get questions by subject: %w", err)
		}
		return dbQuestions, nil
	})

	if err != nil {
		return nil, err
	}

	return questions, nil
}
