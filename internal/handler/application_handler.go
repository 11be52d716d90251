package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beasiswa-status-api/internal/dto"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/internal/service"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
	"github.com/noah-isme/beasiswa-status-api/pkg/response"
)

type applicationService interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	Create(ctx context.Context, req dto.CreateApplicationRequest) (*models.Application, error)
	Update(ctx context.Context, id string, req dto.UpdateApplicationRequest) (*models.Application, error)
	Delete(ctx context.Context, id string) error
}

type exportService interface {
	Export(ctx context.Context, format string) (*service.ExportFile, error)
}

// ApplicationHandler exposes administrative application endpoints.
type ApplicationHandler struct {
	applications applicationService
	exports      exportService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(applications applicationService, exports exportService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, exports: exports}
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size, 1-100 (default 20)"
// @Success 200 {object} response.Envelope{data=[]models.Application}
// @Failure 401 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	var query dto.ListApplicationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pagination parameters"))
		return
	}
	page, limit := service.ClampPage(query.Page, query.Limit)

	apps, pagination, err := h.applications.List(c.Request.Context(), models.ApplicationFilter{Page: page, Limit: limit})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Get application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope{data=models.Application}
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Create godoc
// @Summary Create application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope{data=models.Application}
// @Failure 400 {object} response.Envelope
// @Router /admin/applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Update godoc
// @Summary Partially update application
// @Description Only fields present in the payload are changed.
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApplicationRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=models.Application}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	app, err := h.applications.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Delete godoc
// @Summary Delete application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope{data=dto.MessageResponse}
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.applications.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MessageResponse{Message: "application deleted"}, nil)
}

// Export godoc
// @Summary Export applications
// @Description CSV uses the import column layout; PDF is a printable summary.
// @Tags Applications
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
