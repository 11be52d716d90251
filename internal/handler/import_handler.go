package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
	"github.com/noah-isme/beasiswa-status-api/pkg/response"
)

// multipart boundaries and part headers ride on top of the file itself
const multipartOverhead = 64 << 10

type importService interface {
	Import(ctx context.Context, filename string, r io.Reader) (*models.ImportReport, error)
	MaxFileSize() int64
}

// ImportHandler accepts spreadsheet uploads.
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// Import godoc
// @Summary Import applications from CSV
// @Description Rows are matched on (studentId, email). Matches are merged, new pairs are created and malformed rows are reported.
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope{data=models.ImportReport}
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/import-csv [post]
func (h *ImportHandler) Import(c *gin.Context) {
	if limit := h.service.MaxFileSize(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds the upload limit"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only .csv files are accepted"))
		return
	}
	if limit := h.service.MaxFileSize(); limit > 0 && fileHeader.Size > limit {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds the upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	report, err := h.service.Import(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
