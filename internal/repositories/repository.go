package repositories

import "context"

// Repository aggregates all sub-repository interfaces behind one facade.
type Repository interface {
	// Catalog domain
	Subject() SubjectRepository
	PracticeSubject() PracticeSubjectRepository
	Question() QuestionRepository
	PracticeQuestion() PracticeQuestionRepository

	// Test-taking domain
	Student() StudentRepository
	Submission() SubmissionRepository
	Session() SessionRepository

	// Admin domain
	Admin() AdminRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
