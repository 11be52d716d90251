package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/csvimport"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/internal/repository"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
)

const reasonStorageFault = "internal error while saving row"

type importRepository interface {
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	UpdateByBusinessKey(ctx context.Context, studentID, email string, mutate repository.MutateFunc) (*models.Application, error)
}

type importArchive interface {
	Save(filename string, data []byte) (string, error)
}

// ImportConfig controls CSV reconciliation.
type ImportConfig struct {
	Policy      csvimport.Policy
	MaxFileSize int64
}

// ImportService reconciles uploaded spreadsheets against stored applications.
type ImportService struct {
	repo      importRepository
	archive   importArchive
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ImportConfig
	now       func() time.Time
}

// NewImportService constructs an ImportService. archive, cache and metrics may be nil.
func NewImportService(repo importRepository, archive importArchive, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config ImportConfig) *ImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Policy.Name == "" {
		config.Policy = csvimport.NewPolicy(csvimport.PolicyZero, nil, nil)
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 5 << 20
	}
	return &ImportService{
		repo:      repo,
		archive:   archive,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// MaxFileSize returns the upload limit in bytes.
func (s *ImportService) MaxFileSize() int64 {
	return s.config.MaxFileSize
}

// Import processes every row of the file independently and returns the report.
// Only file-level problems produce an error.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*models.ImportReport, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only .csv files are accepted")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.config.MaxFileSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.config.MaxFileSize))
	}

	reader, err := csvimport.NewReader(bytes.NewReader(data), s.config.Policy, s.validator)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read csv header")
	}

	start := time.Now()
	report := &models.ImportReport{
		Errors:   []string{},
		Warnings: []string{},
		Rows:     []models.ImportRowResult{},
		Defaults: models.ImportDefaults{
			Policy:       s.config.Policy.Name,
			GPA:          s.config.Policy.GPA,
			FamilyIncome: s.config.Policy.FamilyIncome,
		},
	}
	if s.archive != nil {
		report.ArchivedAs = s.archiveUpload(filename, data)
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var result models.ImportRowResult
		var rowErr *csvimport.RowError
		switch {
		case errors.As(err, &rowErr):
			result = models.ImportRowResult{Row: rowErr.Row, Action: models.ImportActionFailed, Error: rowErr.Error()}
		case err != nil:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read csv")
		default:
			result = s.reconcile(ctx, row)
		}
		report.Add(result)
	}

	report.Finish()
	s.metrics.RecordImport(report, time.Since(start))
	if report.ImportedCount > 0 {
		s.cache.InvalidateStatuses(ctx)
	}
	s.logger.Info("csv import finished",
		zap.String("file", filename),
		zap.Int("created", report.CreatedCount),
		zap.Int("updated", report.UpdatedCount),
		zap.Int("failed", report.FailedCount),
		zap.String("policy", s.config.Policy.Name))
	return report, nil
}

// reconcile merges the row into the application with the same (student ID, email)
// or creates one. A create that loses a race on the same pair is retried once as a merge.
func (s *ImportService) reconcile(ctx context.Context, row csvimport.Row) models.ImportRowResult {
	result := models.ImportRowResult{Row: row.Number, StudentID: row.StudentID, Warnings: row.Warnings}

	app, err := s.merge(ctx, row)
	if err == nil {
		return succeeded(result, models.ImportActionUpdated, app.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return s.storageFault(result, err)
	}

	exists, err := s.repo.ExistsByStudentID(ctx, row.StudentID)
	if err != nil {
		return s.storageFault(result, err)
	}
	if exists {
		return failed(result, "student ID already registered with a different email")
	}

	app = row.NewApplication(s.now())
	err = s.repo.Create(ctx, app)
	if err == nil {
		return succeeded(result, models.ImportActionCreated, app.ID)
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return s.storageFault(result, err)
	}

	app, err = s.merge(ctx, row)
	switch {
	case err == nil:
		return succeeded(result, models.ImportActionUpdated, app.ID)
	case errors.Is(err, sql.ErrNoRows):
		return failed(result, "student ID already registered with a different email")
	default:
		return s.storageFault(result, err)
	}
}

func (s *ImportService) merge(ctx context.Context, row csvimport.Row) (*models.Application, error) {
	return s.repo.UpdateByBusinessKey(ctx, row.StudentID, row.Email, func(app *models.Application) bool {
		row.Merge(app, s.now())
		return true
	})
}

func (s *ImportService) storageFault(result models.ImportRowResult, err error) models.ImportRowResult {
	s.logger.Error("csv import row failed", zap.Int("row", result.Row), zap.Error(err))
	return failed(result, reasonStorageFault)
}

// archiveUpload keeps the raw upload next to the report. Failures only cost the archive.
func (s *ImportService) archiveUpload(filename string, data []byte) string {
	name := fmt.Sprintf("imports/%s-%s", s.now().Format("20060102T150405.000Z"), filepath.Base(filename))
	archived, err := s.archive.Save(name, data)
	if err != nil {
		s.logger.Warn("failed to archive csv upload", zap.String("file", filename), zap.Error(err))
		return ""
	}
	return archived
}

func succeeded(result models.ImportRowResult, action models.ImportAction, id string) models.ImportRowResult {
	result.Action = action
	result.ApplicationID = id
	return result
}

func failed(result models.ImportRowResult, reason string) models.ImportRowResult {
	result.Action = models.ImportActionFailed
	result.Error = (&csvimport.RowError{Row: result.Row, Reason: reason}).Error()
	return result
}
