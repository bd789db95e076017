package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateSubjectCache invalidates all subject-related caches using pipeline
func InvalidateSubjectCache(ctx context.Context, cm *CacheManager, subjectID uint) {
	// Delete specific keys using single call
	SafeDelete(ctx, cm.Subject,
		fmt.Sprintf("id:%d", subjectID),
		fmt.Sprintf("details:%d", subjectID))

	// Invalidate patterns
	SafeInvalidatePattern(ctx, cm.Subject, "list:*")
	SafeInvalidatePattern(ctx, cm.Subject, "parents")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("subject:%d:*", subjectID))
}

// InvalidateQuestionCache invalidates all question-related caches
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID, subjectID uint) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("id:%d", questionID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("subject:%d:*", subjectID))
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("question:%d:*", questionID))
}
