package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type PracticeSubjectHandler struct {
	BaseHandler
	practiceSubjectService services.PracticeSubjectService
	validator              *validator.Validator
}

func NewPracticeSubjectHandler(practiceSubjectService services.PracticeSubjectService, validator *validator.Validator, logger utils.Logger) *PracticeSubjectHandler {
	return &PracticeSubjectHandler{
		BaseHandler:            NewBaseHandler(logger),
		practiceSubjectService: practiceSubjectService,
		validator:              validator,
	}
}

func (h *PracticeSubjectHandler) CreateSubject(c *gin.Context) {
	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.practiceSubjectService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

func (h *PracticeSubjectHandler) GetSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	subject, err := h.practiceSubjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *PracticeSubjectHandler) UpdateSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.practiceSubjectService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *PracticeSubjectHandler) DeleteSubject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.practiceSubjectService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Practice subject deleted",
	})
}

func (h *PracticeSubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.practiceSubjectService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// ListParentSubjects returns only the top-level practice subjects.
func (h *PracticeSubjectHandler) ListParentSubjects(c *gin.Context) {
	subjects, err := h.practiceSubjectService.ListParents(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}
