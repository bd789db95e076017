package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/imagingpedia/learning-service/internal/events"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/storage"
	"github.com/imagingpedia/learning-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Signing key for admin tokens
	JWTSecret string

	// Service-specific configurations
	Subject    ServiceConfig
	Question   ServiceConfig
	Session    ServiceConfig
	Submission ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	storage   storage.Provider
	config    ServiceManagerConfig

	// Service instances
	subjectService          SubjectService
	practiceSubjectService  PracticeSubjectService
	questionService         QuestionService
	practiceQuestionService PracticeQuestionService
	adminService            AdminService
	studentService          StudentService
	submissionService       SubmissionService
	sessionService          SessionService
	importExportService     ImportExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher, store storage.Provider, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		storage:   store,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher, store storage.Provider, jwtSecret string) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		JWTSecret:          jwtSecret,

		Subject: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Question: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Session: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false, // Real-time data
			CacheTTL:     0,
		},
		Submission: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, publisher, store, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.Subject.Enabled {
		sm.subjectService = NewSubjectService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.practiceSubjectService = NewPracticeSubjectService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.logger.Info("Subject services initialized")
	}

	if sm.config.Question.Enabled {
		sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger, sm.validator, sm.storage)
		sm.practiceQuestionService = NewPracticeQuestionService(sm.repo, sm.db, sm.logger, sm.validator, sm.storage)
		sm.logger.Info("Question services initialized")
	}

	sm.adminService = NewAdminService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.JWTSecret)
	sm.logger.Info("Admin service initialized")

	sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.logger.Info("Student service initialized")

	if sm.config.Submission.Enabled {
		sm.submissionService = NewSubmissionService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Submission service initialized")
	}

	if sm.config.Session.Enabled {
		sm.sessionService = NewSessionService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Session service initialized")
	}

	sm.importExportService = NewImportExportService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.logger.Info("ImportExport service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Subject.Enabled && sm.subjectService != nil {
		return sm.subjectService
	}

	panic("subject service not enabled or not initialized")
}

func (sm *serviceManager) PracticeSubject() PracticeSubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Subject.Enabled && sm.practiceSubjectService != nil {
		return sm.practiceSubjectService
	}

	panic("practice subject service not enabled or not initialized")
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Question.Enabled && sm.questionService != nil {
		return sm.questionService
	}

	panic("question service not enabled or not initialized")
}

func (sm *serviceManager) PracticeQuestion() PracticeQuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Question.Enabled && sm.practiceQuestionService != nil {
		return sm.practiceQuestionService
	}

	panic("practice question service not enabled or not initialized")
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.adminService != nil {
		return sm.adminService
	}

	panic("admin service not initialized")
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.studentService != nil {
		return sm.studentService
	}

	panic("student service not initialized")
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Submission.Enabled && sm.submissionService != nil {
		return sm.submissionService
	}

	panic("submission service not enabled or not initialized")
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Session.Enabled && sm.sessionService != nil {
		return sm.sessionService
	}

	panic("session service not enabled or not initialized")
}

func (sm *serviceManager) ImportExport() ImportExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.importExportService != nil {
		return sm.importExportService
	}

	panic("import/export service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
