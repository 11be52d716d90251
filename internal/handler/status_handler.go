package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beasiswa-status-api/internal/dto"
	"github.com/noah-isme/beasiswa-status-api/internal/middleware"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
	"github.com/noah-isme/beasiswa-status-api/pkg/response"
)

type statusChecker interface {
	CheckStatus(ctx context.Context, req dto.StatusCheckRequest) (*models.StatusCheckResult, bool, error)
}

// StatusHandler serves the public status lookup.
type StatusHandler struct {
	checker statusChecker
}

// NewStatusHandler constructs StatusHandler.
func NewStatusHandler(checker statusChecker) *StatusHandler {
	return &StatusHandler{checker: checker}
}

// Check godoc
// @Summary Check application status
// @Description Looks up an application by student ID and email. Unknown pairs answer found=false.
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.StatusCheckRequest true "Lookup payload"
// @Success 200 {object} response.Envelope{data=models.StatusCheckResult}
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /check-status [post]
func (h *StatusHandler) Check(c *gin.Context) {
	var req dto.StatusCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, hit, err := h.checker.CheckStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}
