package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
)

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

// Login exchanges credentials for a bearer token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req services.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.adminService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Verify echoes the identity behind the Authorization header.
func (h *AdminHandler) Verify(c *gin.Context) {
	resp, err := h.adminService.Verify(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create registers a new admin account. The route itself sits behind the
// admin guard.
func (h *AdminHandler) Create(c *gin.Context) {
	var req services.AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	admin, err := h.adminService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    admin,
	})
}
