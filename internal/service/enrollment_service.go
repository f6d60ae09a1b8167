package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id int64, from, to models.EnrollmentStatus) (bool, error)
}

type followUpRepository interface {
	Create(ctx context.Context, f *models.FollowUp) error
	ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error)
}

type userReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type statusRecorder interface {
	RecordStatusChange(from, to string)
}

// followUpLayouts are the accepted dateTime forms, tried in order.
var followUpLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EnrollmentService owns the admissions state machine and follow-up log.
type EnrollmentService struct {
	repo      enrollmentRepository
	followUps followUpRepository
	users     userReader
	courses   courseReader
	metrics   statusRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(repo enrollmentRepository, followUps followUpRepository, users userReader, courses courseReader, metrics statusRecorder, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		followUps: followUps,
		users:     users,
		courses:   courses,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Enroll opens a LEAD enrollment for a student in a course.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	if studentID == 0 || courseID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId and courseId are required")
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	exists, err := s.repo.Exists(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Already enrolled")
	}

	enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID, Status: models.EnrollmentStatusLead}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}
	s.logger.Info("enrollment created", zap.Int64("enrollment_id", enrollment.ID), zap.Int64("student_id", studentID), zap.Int64("course_id", courseID))
	return enrollment, nil
}

// RecordFollowUp appends a contact attempt to an enrollment regardless of its status.
func (s *EnrollmentService) RecordFollowUp(ctx context.Context, req models.FollowUpRequest) (*models.FollowUp, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "enrollmentId, type, and dateTime are required")
	}
	kind, ok := parseFollowUpType(req.Type)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be one of Call, Email, Visit, Message")
	}
	at, err := parseFollowUpTime(req.DateTime)
	if err != nil {
		return nil, appErrors.Validation(err, "dateTime is not a valid date")
	}

	if _, err := s.repo.FindByID(ctx, req.EnrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}

	followUp := &models.FollowUp{
		EnrollmentID: req.EnrollmentID,
		Type:         kind,
		DateTime:     at,
		Remarks:      strings.TrimSpace(req.Remarks),
	}
	if err := s.followUps.Create(ctx, followUp); err != nil {
		return nil, appErrors.Internal(err, "failed to record follow-up")
	}
	return followUp, nil
}

// ChangeStatus advances an enrollment one step along the funnel. Setting the current
// status again is a no-op.
func (s *EnrollmentService) ChangeStatus(ctx context.Context, req models.StatusChangeRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "enrollmentId and status are required")
	}
	target := models.EnrollmentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid status")
	}

	enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	if enrollment.Status == target {
		return enrollment, nil
	}
	if !models.CanTransition(enrollment.Status, target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("Cannot move from %s to %s", enrollment.Status, target))
	}

	applied, err := s.repo.UpdateStatus(ctx, enrollment.ID, enrollment.Status, target)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update status")
	}
	if !applied {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Enrollment status changed concurrently")
	}

	from := enrollment.Status
	enrollment.Status = target
	enrollment.UpdatedAt = time.Now().UTC()
	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(from), string(target))
	}
	s.logger.Info("enrollment status changed",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	return enrollment, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	return s.list(ctx, models.EnrollmentFilter{StudentID: &studentID})
}

// ListAll returns every enrollment, newest first.
func (s *EnrollmentService) ListAll(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return s.list(ctx, models.EnrollmentFilter{})
}

func (s *EnrollmentService) list(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	if items == nil {
		items = []models.EnrollmentDetail{}
	}
	return items, nil
}

// ListFollowUps returns the follow-ups of an enrollment ordered by dateTime desc.
func (s *EnrollmentService) ListFollowUps(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error) {
	if enrollmentID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollmentId is required")
	}
	items, err := s.followUps.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list follow-ups")
	}
	if items == nil {
		items = []models.FollowUp{}
	}
	return items, nil
}

// ApplicationStatus summarises a student's progress across all enrollments.
func (s *EnrollmentService) ApplicationStatus(ctx context.Context, studentID int64) (*models.ApplicationStatus, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	}

	items, err := s.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &models.ApplicationStatus{
		StudentID:   student.ID,
		Name:        student.Name,
		Enrollments: items,
		Summary:     summarizeEnrollments(items),
	}, nil
}

func summarizeEnrollments(items []models.EnrollmentDetail) string {
	if len(items) == 0 {
		return "No applications yet."
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s: %s", item.Course.Name, item.Status)
	}
	return strings.Join(parts, "; ")
}

func parseFollowUpType(raw string) (models.FollowUpType, bool) {
	for _, kind := range []models.FollowUpType{models.FollowUpCall, models.FollowUpEmail, models.FollowUpVisit, models.FollowUpMessage} {
		if strings.EqualFold(strings.TrimSpace(raw), string(kind)) {
			return kind, true
		}
	}
	return "", false
}

func parseFollowUpTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range followUpLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
