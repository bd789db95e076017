package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/imagingpedia/learning-service/internal/models"
	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSubjectRequest = validator.SubjectCreateRequest
type UpdateSubjectRequest = validator.SubjectUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type AdminLoginRequest = validator.AdminLoginRequest
type AdminCreateRequest = validator.AdminCreateRequest
type CreateStudentRequest = validator.StudentCreateRequest
type SubmissionRequest = validator.SubmissionRequest
type CreateSessionRequest = validator.SessionCreateRequest
type SessionAnswerRequest = validator.SessionAnswerRequest

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type PracticeQuestionListResponse struct {
	Questions []*models.PracticeQuestion `json:"questions"`
	Total     int64                      `json:"total"`
	Page      int                        `json:"page"`
	Size      int                        `json:"size"`
}

// ===== SERVICE INTERFACES =====

type SubjectService interface {
	Create(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error)
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	Update(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.Subject, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.Subject, error)
}

type PracticeSubjectService interface {
	Create(ctx context.Context, req *CreateSubjectRequest) (*models.PracticeSubject, error)
	GetByID(ctx context.Context, id uint) (*models.PracticeSubject, error)
	Update(ctx context.Context, id uint, req *UpdateSubjectRequest) (*models.PracticeSubject, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*models.PracticeSubject, error)
	ListParents(ctx context.Context) ([]*models.PracticeSubject, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, file *multipart.FileHeader) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, file *multipart.FileHeader) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	GetBySubject(ctx context.Context, subjectID uint) ([]*models.Question, error)
}

type PracticeQuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, file *multipart.FileHeader) (*models.PracticeQuestion, error)
	GetByID(ctx context.Context, id uint) (*models.PracticeQuestion, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, file *multipart.FileHeader) (*models.PracticeQuestion, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuestionFilters) (*PracticeQuestionListResponse, error)
	GetBySubject(ctx context.Context, subjectID uint) ([]*models.PracticeQuestion, error)
}

type AdminService interface {
	Login(ctx context.Context, req *AdminLoginRequest) (*models.AdminLoginResponse, error)
	Verify(ctx context.Context, bearerToken string) (*models.AdminVerifyResponse, error)
	Create(ctx context.Context, req *AdminCreateRequest) (*models.AdminInfo, error)
	ParseToken(raw string) (*AdminClaims, error)
}

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest) (*models.Student, error)
	GetByID(ctx context.Context, id uint) (*models.Student, error)
}

type SubmissionService interface {
	// Score evaluates an answer against its model answer, persists the
	// result, and returns it.
	Score(ctx context.Context, req *SubmissionRequest) (*models.ScoreResult, error)
}

type SessionService interface {
	Create(ctx context.Context, req *CreateSessionRequest) (*models.SessionState, error)
	Get(ctx context.Context, id uint) (*models.SessionState, error)
	Start(ctx context.Context, id uint) (*models.SessionState, error)
	Answer(ctx context.Context, id uint, req *SessionAnswerRequest) (*models.SessionState, error)
	Back(ctx context.Context, id uint) (*models.SessionState, error)
	Submit(ctx context.Context, id uint) (*models.SessionState, error)
	Retake(ctx context.Context, id uint) (*models.SessionState, error)
}

type ImportExportService interface {
	ExportQuestions(ctx context.Context, w io.Writer) error
	ImportQuestions(ctx context.Context, r io.Reader) (*models.QuestionImportReport, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Subject() SubjectService
	PracticeSubject() PracticeSubjectService
	Question() QuestionService
	PracticeQuestion() PracticeQuestionService
	Admin() AdminService
	Student() StudentService
	Submission() SubmissionService
	Session() SessionService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
