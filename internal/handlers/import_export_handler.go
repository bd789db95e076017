package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportExportHandler struct {
	BaseHandler
	importExportService services.ImportExportService
}

func NewImportExportHandler(importExportService services.ImportExportService, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
	}
}

// ExportQuestions streams the question bank as an .xlsx download.
func (h *ImportExportHandler) ExportQuestions(c *gin.Context) {
	filename := fmt.Sprintf("questions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.importExportService.ExportQuestions(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and abort rather than writing a
		// JSON error into the spreadsheet stream.
		h.LogError(c, err, "Failed to export questions")
		c.Abort()
	}
}

// ImportQuestions reads an uploaded .xlsx and bulk-creates its rows.
func (h *ImportExportHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unreadable file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	report, err := h.importExportService.ImportQuestions(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
