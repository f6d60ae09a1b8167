package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate}
}

// List returns the catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	return courses, nil
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "Course name is required")
	}
	course := &models.Course{Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to create course")
	}
	return course, nil
}

// Update renames or re-describes a course.
func (s *CourseService) Update(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == 0 || req.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Course id and name are required")
	}
	course := &models.Course{ID: req.ID, Name: req.Name, Description: strings.TrimSpace(req.Description)}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Internal(err, "failed to update course")
	}
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Course id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	return nil
}
