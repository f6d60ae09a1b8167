package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	"github.com/noah-isme/admissions-crm-api/internal/service"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	RecordFollowUp(ctx context.Context, req models.FollowUpRequest) (*models.FollowUp, error)
	ChangeStatus(ctx context.Context, req models.StatusChangeRequest) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	ListAll(ctx context.Context) ([]models.EnrollmentDetail, error)
	ListFollowUps(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error)
	ApplicationStatus(ctx context.Context, studentID int64) (*models.ApplicationStatus, error)
}

type enrollmentExporter interface {
	ExportEnrollments(ctx context.Context, format string) (*service.ExportResult, error)
}

// EnrollmentHandler serves the enrollment workflow routes.
type EnrollmentHandler struct {
	service  enrollmentService
	exporter enrollmentExporter
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc enrollmentService, exporter enrollmentExporter) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, exporter: exporter}
}

// Create godoc
// @Summary Enroll a student or record a follow-up
// @Description A payload carrying followUp records a follow-up against an enrollment; otherwise the student is enrolled in the course.
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /enroll [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	if req.FollowUp != nil {
		followUp, err := h.service.RecordFollowUp(c.Request.Context(), *req.FollowUp)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, followUp)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// List godoc
// @Summary List enrollments or follow-ups
// @Tags Enrollment
// @Produce json
// @Param enrollmentId query int false "List follow-ups of this enrollment"
// @Param all query string false "Set to 1 to list every enrollment"
// @Param studentId query int false "List enrollments of this student"
// @Success 200 {array} models.EnrollmentDetail
// @Failure 400 {object} response.ErrorBody
// @Router /enroll [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("enrollmentId"); raw != "" {
		followUps, err := h.service.ListFollowUps(ctx, parseID(raw))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, followUps)
		return
	}

	if all := c.Query("all"); all == "1" || all == "true" {
		items, err := h.service.ListAll(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, items)
		return
	}

	studentID := parseID(c.Query("studentId"))
	if studentID == 0 {
		if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleStudent {
			studentID = claims.UserID
		}
	}
	if studentID == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}

	items, err := h.service.ListByStudent(ctx, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// UpdateStatus godoc
// @Summary Move an enrollment to its next status
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body models.StatusChangeRequest true "Status payload"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /enroll [put]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req models.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	enrollment, err := h.service.ChangeStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollment)
}

// FollowUps godoc
// @Summary List follow-ups of an enrollment
// @Tags Enrollment
// @Produce json
// @Param enrollmentId query int true "Enrollment ID"
// @Success 200 {array} models.FollowUp
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /enroll/followups [get]
func (h *EnrollmentHandler) FollowUps(c *gin.Context) {
	followUps, err := h.service.ListFollowUps(c.Request.Context(), parseID(c.Query("enrollmentId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, followUps)
}

// Export godoc
// @Summary Export all enrollments
// @Tags Enrollment
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.ErrorBody
// @Router /enroll/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportEnrollments(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}

// ApplicationStatus godoc
// @Summary Application status of a student
// @Tags Enrollment
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} models.ApplicationStatus
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /status/{studentId} [get]
func (h *EnrollmentHandler) ApplicationStatus(c *gin.Context) {
	status, err := h.service.ApplicationStatus(c.Request.Context(), parseID(c.Param("studentId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}
