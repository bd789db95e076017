package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/repositories"
	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

func NewQuestionHandler(questionService services.QuestionService, validator *validator.Validator, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// CreateQuestion accepts either a JSON body or a multipart form with an
// optional "file" image upload.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	file, ok := bindQuestionRequest(c, &req)
	if !ok {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuestionRequest
	file, ok := bindQuestionRequest(c, &req)
	if !ok {
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Question deleted",
	})
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := parseQuestionFilters(c)

	resp, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetQuestionsBySubject returns every question under one subject, in id
// order.
func (h *QuestionHandler) GetQuestionsBySubject(c *gin.Context) {
	subjectID := h.parseIDParam(c, "subjectId")
	if subjectID == 0 {
		return
	}

	questions, err := h.questionService.GetBySubject(c.Request.Context(), subjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// ===== SHARED HELPERS =====

// bindQuestionRequest binds JSON or multipart bodies and extracts the
// optional image upload. On a bind failure it writes the 400 itself and
// returns ok=false.
func bindQuestionRequest(c *gin.Context, req interface{}) (*multipart.FileHeader, bool) {
	var file *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return nil, false
		}
		if f, err := c.FormFile("file"); err == nil {
			file = f
		}
		return file, true
	}

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil, false
	}
	return nil, true
}

func parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.QuestionFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if raw := c.Query("subject_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			subjectID := uint(id)
			filters.SubjectID = &subjectID
		}
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filters.Search = &search
	}

	return filters
}
