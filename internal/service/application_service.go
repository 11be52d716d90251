package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/dto"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/internal/repository"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByBusinessKey(ctx context.Context, studentID, email string) (*models.Application, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, id string, mutate repository.MutateFunc) (*models.Application, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ApplicationService handles the application lifecycle and the public status lookup.
type ApplicationService struct {
	repo      applicationRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewApplicationService constructs the application service. cache and metrics may be nil.
func NewApplicationService(repo applicationRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ClampPage normalises list parameters: page >= 1, limit in 1..100 with a default of 20.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// List returns one page of applications in insertion order.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	filter.Page, filter.Limit = ClampPage(filter.Page, filter.Limit)
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a single application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// Create registers a new application with default status and stage.
func (s *ApplicationService) Create(ctx context.Context, req dto.CreateApplicationRequest) (*models.Application, error) {
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	exists, err := s.repo.ExistsByStudentID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "student ID already registered")
	}

	now := s.now()
	app := &models.Application{
		StudentID:          req.StudentID,
		Email:              req.Email,
		FullName:           req.FullName,
		Phone:              req.Phone,
		Address:            req.Address,
		GPA:                *req.GPA,
		FamilyIncome:       *req.FamilyIncome,
		Essay:              req.Essay,
		SupportingDocument: nonEmpty(req.SupportingDocument),
		Recommendation:     nonEmpty(req.Recommendation),
		Status:             models.StatusUnderReview,
		Stage:              models.StageAdministrative,
		Note:               nonEmpty(req.Note),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "student ID already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.cache.InvalidateStatuses(ctx)
	s.logger.Info("application created", zap.String("application_id", app.ID))
	return app, nil
}

// Update applies only the fields present in req and refreshes updated_at when anything changed.
func (s *ApplicationService) Update(ctx context.Context, id string, req dto.UpdateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}
	if req.Stage != nil && !req.Stage.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown stage")
	}

	app, err := s.repo.Update(ctx, id, func(app *models.Application) bool {
		if !applyUpdate(app, req) {
			return false
		}
		app.UpdatedAt = laterOf(s.now(), app.CreatedAt)
		return true
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "application already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}

	s.cache.InvalidateStatuses(ctx)
	return app, nil
}

// Delete physically removes an application.
func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	s.cache.InvalidateStatuses(ctx)
	s.logger.Info("application deleted", zap.String("application_id", id))
	return nil
}

// CheckStatus answers the public lookup. A miss on either field is a negative result,
// never an error, and the projection never carries private fields. The boolean reports a cache hit.
func (s *ApplicationService) CheckStatus(ctx context.Context, req dto.StatusCheckRequest) (*models.StatusCheckResult, bool, error) {
	// Both values are matched byte for byte; no trimming or case folding.
	studentID, email := req.StudentID, req.Email
	if studentID == "" || email == "" {
		s.metrics.RecordStatusCheck(false)
		return &models.StatusCheckResult{Found: false}, false, nil
	}

	key := StatusCacheKey(studentID, email)
	var cached models.StatusCheckResult
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.RecordStatusCheck(cached.Found)
		return &cached, true, nil
	}

	app, err := s.repo.FindByBusinessKey(ctx, studentID, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check status")
	}

	result := models.PublicStatus(app)
	s.cache.Set(ctx, key, result, 0)
	s.metrics.RecordStatusCheck(result.Found)
	return &result, false, nil
}

func applyUpdate(app *models.Application, req dto.UpdateApplicationRequest) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setOptional := func(dst **string, src *string) {
		if src == nil {
			return
		}
		next := nonEmpty(src)
		if !equalOptional(*dst, next) {
			*dst = next
			changed = true
		}
	}

	setString(&app.Email, req.Email)
	setString(&app.FullName, req.FullName)
	setString(&app.Phone, req.Phone)
	setString(&app.Address, req.Address)
	setString(&app.Essay, req.Essay)
	setOptional(&app.SupportingDocument, req.SupportingDocument)
	setOptional(&app.Recommendation, req.Recommendation)
	setOptional(&app.Note, req.Note)

	if req.GPA != nil && app.GPA != *req.GPA {
		app.GPA = *req.GPA
		changed = true
	}
	if req.FamilyIncome != nil && app.FamilyIncome != *req.FamilyIncome {
		app.FamilyIncome = *req.FamilyIncome
		changed = true
	}
	if req.Status != nil && app.Status != *req.Status {
		app.Status = *req.Status
		changed = true
	}
	if req.Stage != nil && app.Stage != *req.Stage {
		app.Stage = *req.Stage
		changed = true
	}
	return changed
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func laterOf(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
