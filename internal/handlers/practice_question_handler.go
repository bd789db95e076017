package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type PracticeQuestionHandler struct {
	BaseHandler
	practiceQuestionService services.PracticeQuestionService
	validator               *validator.Validator
}

func NewPracticeQuestionHandler(practiceQuestionService services.PracticeQuestionService, validator *validator.Validator, logger utils.Logger) *PracticeQuestionHandler {
	return &PracticeQuestionHandler{
		BaseHandler:             NewBaseHandler(logger),
		practiceQuestionService: practiceQuestionService,
		validator:               validator,
	}
}

// CreateQuestion creates a practice question, backfilling its practice
// subject from the catalog when needed.
func (h *PracticeQuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	file, ok := bindQuestionRequest(c, &req)
	if !ok {
		return
	}

	question, err := h.practiceQuestionService.Create(c.Request.Context(), &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *PracticeQuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.practiceQuestionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *PracticeQuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
	file, ok := bindQuestionRequest(c, &req)
	if !ok {
		return
	}

	question, err := h.practiceQuestionService.Update(c.Request.Context(), id, &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *PracticeQuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.practiceQuestionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Practice question deleted",
	})
}

func (h *PracticeQuestionHandler) ListQuestions(c *gin.Context) {
	filters := parseQuestionFilters(c)

	resp, err := h.practiceQuestionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *PracticeQuestionHandler) GetQuestionsBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "subjectId")
	if subjectID == 0 {
		return
	}

	questions, err := h.practiceQuestionService.GetBySubject(c.Request.Context(), subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
