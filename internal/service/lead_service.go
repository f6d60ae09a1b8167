package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type leadRepository interface {
	List(ctx context.Context) ([]models.LeadDetail, error)
	Create(ctx context.Context, lead *models.Lead) error
	CreateBatch(ctx context.Context, leads []*models.Lead) error
}

// leadColumns is the positional layout used when a sheet has no recognisable header.
var leadColumns = []string{"name", "email", "phone", "parentcontact", "courseinterest", "source"}

// LeadService manages pre-enrollment leads.
type LeadService struct {
	repo      leadRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeadService constructs LeadService.
func NewLeadService(repo leadRepository, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{repo: repo, validator: validate, logger: logger}
}

// List returns all leads with their assigned staff member.
func (s *LeadService) List(ctx context.Context) ([]models.LeadDetail, error) {
	leads, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list leads")
	}
	if leads == nil {
		leads = []models.LeadDetail{}
	}
	return leads, nil
}

// Create stores a single lead.
func (s *LeadService) Create(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	lead, err := s.buildLead(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, appErrors.Internal(err, "failed to create lead")
	}
	return lead, nil
}

func (s *LeadService) buildLead(req models.LeadRequest) (*models.Lead, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CourseInterest = strings.TrimSpace(req.CourseInterest)
	req.Source = strings.TrimSpace(req.Source)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "name, email, phone, courseInterest, and source are required")
	}
	return &models.Lead{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ParentContact:  strings.TrimSpace(req.ParentContact),
		CourseInterest: req.CourseInterest,
		Source:         req.Source,
		AssignedToID:   req.AssignedToID,
	}, nil
}

// Import reads leads from the first sheet of an XLSX workbook. The first row is the
// header. Rows missing a required field are skipped and reported; the rest are stored in
// a single batch.
func (s *LeadService) Import(ctx context.Context, file io.Reader) (*models.LeadImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, appErrors.Validation(err, "file is not a valid xlsx workbook")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, appErrors.Validation(err, "failed to read sheet")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheet is empty")
	}

	columns := headerIndex(rows[0])
	result := &models.LeadImportResult{Skipped: []models.ImportRowError{}}
	var leads []*models.Lead
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		req := models.LeadRequest{
			Name:           cell(row, columns["name"]),
			Email:          cell(row, columns["email"]),
			Phone:          cell(row, columns["phone"]),
			ParentContact:  cell(row, columns["parentcontact"]),
			CourseInterest: cell(row, columns["courseinterest"]),
			Source:         cell(row, columns["source"]),
		}
		lead, err := s.buildLead(req)
		if err != nil {
			result.Skipped = append(result.Skipped, models.ImportRowError{Row: i + 1, Reason: missingFields(req)})
			continue
		}
		leads = append(leads, lead)
	}

	if len(leads) > 0 {
		if err := s.repo.CreateBatch(ctx, leads); err != nil {
			return nil, appErrors.Internal(err, "failed to import leads")
		}
	}
	result.Imported = len(leads)
	s.logger.Info("leads imported", zap.Int("imported", result.Imported), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// headerIndex maps normalised header names to column positions, falling back to the
// positional layout when the header names none of the known columns.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(leadColumns))
	for pos, name := range header {
		key := normalizeHeader(name)
		for _, col := range leadColumns {
			if key == col {
				index[col] = pos
			}
		}
	}
	if len(index) == 0 {
		for pos, col := range leadColumns {
			index[col] = pos
		}
		return index
	}
	for _, col := range leadColumns {
		if _, ok := index[col]; !ok {
			index[col] = -1
		}
	}
	return index
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func cell(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func missingFields(req models.LeadRequest) string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"courseInterest", req.CourseInterest},
		{"source", req.Source},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return fmt.Sprintf("missing %s", strings.Join(missing, ", "))
}
