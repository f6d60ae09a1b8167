package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/export"
)

type enrollmentLister interface {
	ListAll(ctx context.Context) ([]models.EnrollmentDetail, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered file ready to be served as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the enrollment pipeline as a downloadable file.
type ExportService struct {
	enrollments enrollmentLister
	renderers   map[export.Format]datasetRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService with the csv, pdf and xlsx renderers.
func NewExportService(enrollments enrollmentLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		enrollments: enrollments,
		renderers: map[export.Format]datasetRenderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(),
			export.FormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportEnrollments renders every enrollment in the requested format.
func (s *ExportService) ExportEnrollments(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if err != nil {
		return nil, appErrors.Validation(err, "format must be csv, pdf, or xlsx")
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf, or xlsx")
	}

	items, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(enrollmentDataset(items))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	filename := fmt.Sprintf("enrollments-%s.%s", s.now().UTC().Format("20060102-150405"), format)
	s.logger.Info("enrollments exported", zap.String("format", string(format)), zap.Int("rows", len(items)))
	return &ExportResult{Filename: filename, ContentType: format.ContentType(), Body: body}, nil
}

func enrollmentDataset(items []models.EnrollmentDetail) export.Dataset {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Student.Name,
			item.Student.Email,
			item.Course.Name,
			string(item.Status),
			item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{
		Title:   "Enrollments",
		Headers: []string{"ID", "Student", "Email", "Course", "Status", "Created"},
		Rows:    rows,
	}
}
