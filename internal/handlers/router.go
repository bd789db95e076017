package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type HandlerManager struct {
	subjectHandler          *SubjectHandler
	practiceSubjectHandler  *PracticeSubjectHandler
	questionHandler         *QuestionHandler
	practiceQuestionHandler *PracticeQuestionHandler
	adminHandler            *AdminHandler
	studentHandler          *StudentHandler
	submissionHandler       *SubmissionHandler
	sessionHandler          *SessionHandler
	importExportHandler     *ImportExportHandler
	authMiddleware          *AdminAuthMiddleware

	serviceManager services.ServiceManager
	uploadDir      string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	uploadDir string,
) *HandlerManager {
	return &HandlerManager{
		subjectHandler:          NewSubjectHandler(serviceManager.Subject(), validator, logger),
		practiceSubjectHandler:  NewPracticeSubjectHandler(serviceManager.PracticeSubject(), validator, logger),
		questionHandler:         NewQuestionHandler(serviceManager.Question(), validator, logger),
		practiceQuestionHandler: NewPracticeQuestionHandler(serviceManager.PracticeQuestion(), validator, logger),
		adminHandler:            NewAdminHandler(serviceManager.Admin(), validator, logger),
		studentHandler:          NewStudentHandler(serviceManager.Student(), validator, logger),
		submissionHandler:       NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		sessionHandler:          NewSessionHandler(serviceManager.Session(), validator, logger),
		importExportHandler:     NewImportExportHandler(serviceManager.ImportExport(), logger),
		authMiddleware:          NewAdminAuthMiddleware(serviceManager.Admin()),
		serviceManager:          serviceManager,
		uploadDir:               uploadDir,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Catalog reads are public; every mutation requires an admin token.
	requireAdmin := hm.authMiddleware.RequireAdmin()

	// Subject routes
	subjects := router.Group("/subjects")
	{
		subjects.GET("", hm.subjectHandler.ListSubjects)
		subjects.GET("/:id", hm.subjectHandler.GetSubject)
		subjects.POST("", requireAdmin, hm.subjectHandler.CreateSubject)
		subjects.PUT("/:id", requireAdmin, hm.subjectHandler.UpdateSubject)
		subjects.DELETE("/:id", requireAdmin, hm.subjectHandler.DeleteSubject)
	}

	// Practice subject routes
	practiceSubjects := router.Group("/practice-subjects")
	{
		practiceSubjects.GET("", hm.practiceSubjectHandler.ListSubjects)
		practiceSubjects.GET("/parents", hm.practiceSubjectHandler.ListParentSubjects)
		practiceSubjects.GET("/:id", hm.practiceSubjectHandler.GetSubject)
		practiceSubjects.POST("", requireAdmin, hm.practiceSubjectHandler.CreateSubject)
		practiceSubjects.PUT("/:id", requireAdmin, hm.practiceSubjectHandler.UpdateSubject)
		practiceSubjects.DELETE("/:id", requireAdmin, hm.practiceSubjectHandler.DeleteSubject)
	}

	// Question routes
	questions := router.Group("/questions")
	{
		questions.GET("", hm.questionHandler.ListQuestions)
		questions.GET("/subject/:subjectId", hm.questionHandler.GetQuestionsBySubject)
		questions.GET("/:id", hm.questionHandler.GetQuestion)
		questions.POST("", requireAdmin, hm.questionHandler.CreateQuestion)
		questions.PUT("/:id", requireAdmin, hm.questionHandler.UpdateQuestion)
		questions.DELETE("/:id", requireAdmin, hm.questionHandler.DeleteQuestion)
	}

	// Practice question routes
	practiceQuestions := router.Group("/practice-questions")
	{
		practiceQuestions.GET("", hm.practiceQuestionHandler.ListQuestions)
		practiceQuestions.GET("/subject/:subjectId", hm.practiceQuestionHandler.GetQuestionsBySubject)
		practiceQuestions.GET("/:id", hm.practiceQuestionHandler.GetQuestion)
		practiceQuestions.POST("", requireAdmin, hm.practiceQuestionHandler.CreateQuestion)
		practiceQuestions.PUT("/:id", requireAdmin, hm.practiceQuestionHandler.UpdateQuestion)
		practiceQuestions.DELETE("/:id", requireAdmin, hm.practiceQuestionHandler.DeleteQuestion)
	}

	// Admin console routes
	admin := router.Group("/admin")
	{
		admin.POST("/login", hm.adminHandler.Login)
		admin.POST("/verify", hm.adminHandler.Verify)

		protected := admin.Group("")
		protected.Use(requireAdmin)
		{
			protected.POST("/create", hm.adminHandler.Create)
			protected.GET("/questions/export", hm.importExportHandler.ExportQuestions)
			protected.POST("/questions/import", hm.importExportHandler.ImportQuestions)
		}
	}

	// Student routes
	students := router.Group("/students")
	{
		students.POST("", hm.studentHandler.RegisterStudent)
		students.GET("/:id", hm.studentHandler.GetStudent)
	}

	// Scoring route
	router.POST("/submission", hm.submissionHandler.ScoreSubmission)

	// Test session routes
	sessions := router.Group("/test-sessions")
	{
		sessions.POST("", hm.sessionHandler.CreateSession)
		sessions.GET("/:id", hm.sessionHandler.GetSession)
		sessions.POST("/:id/start", hm.sessionHandler.StartSession)
		sessions.POST("/:id/answer", hm.sessionHandler.AnswerQuestion)
		sessions.POST("/:id/back", hm.sessionHandler.GoBack)
		sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
		sessions.POST("/:id/retake", hm.sessionHandler.RetakeSession)
	}

	// Uploaded question images
	router.Static("/uploads", hm.uploadDir)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})
}
