package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/csvimport"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
	"github.com/noah-isme/beasiswa-status-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var pdfColumns = []string{"nim", "nama_lengkap", "email", "ipk", "status", "tahap", "diperbarui"}

type applicationLister interface {
	ListAll(ctx context.Context) ([]models.Application, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the application list. The CSV layout is the one the importer reads.
type ExportService struct {
	repo   applicationLister
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService with the default renderers when nil.
func NewExportService(repo applicationLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Export renders every application in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	apps, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}

	stamp := s.now().Format("20060102-150405")
	var file ExportFile
	switch format {
	case ExportFormatPDF:
		file.Data, err = s.pdf.Render(pdfDataset(apps), "Scholarship Applications")
		file.Filename = fmt.Sprintf("applications-%s.pdf", stamp)
		file.ContentType = "application/pdf"
	default:
		file.Data, err = s.csv.Render(csvDataset(apps))
		file.Filename = fmt.Sprintf("applications-%s.csv", stamp)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("applications exported", zap.String("format", format), zap.Int("count", len(apps)))
	return &file, nil
}

func csvDataset(apps []models.Application) export.Dataset {
	records := make([][]string, 0, len(apps))
	for i := range apps {
		records = append(records, csvimport.ApplicationRecord(&apps[i]))
	}
	return export.Dataset{Headers: csvimport.Columns, Records: records}
}

func pdfDataset(apps []models.Application) export.Dataset {
	records := make([][]string, 0, len(apps))
	for _, app := range apps {
		records = append(records, []string{
			app.StudentID,
			app.FullName,
			app.Email,
			strconv.FormatFloat(app.GPA, 'f', 2, 64),
			string(app.Status),
			string(app.Stage),
			app.UpdatedAt.Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: pdfColumns, Records: records}
}
