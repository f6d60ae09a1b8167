package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/middleware"
	"github.com/noah-isme/admissions-crm-api/internal/models"
	"github.com/noah-isme/admissions-crm-api/internal/service"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type enrollmentServiceMock struct {
	enrollResp     *models.Enrollment
	enrollErr      error
	followUpResp   *models.FollowUp
	statusResp     *models.Enrollment
	statusErr      error
	listResp       []models.EnrollmentDetail
	followUpList   []models.FollowUp
	appStatus      *models.ApplicationStatus
	appStatusErr   error
	enrollCalled   bool
	followUpCalled bool
	allCalled      bool
	lastStudentID  int64
	lastFollowUp   models.FollowUpRequest
	lastStatus     models.StatusChangeRequest
	lastEnrollment int64
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	m.enrollCalled = true
	m.lastStudentID = studentID
	return m.enrollResp, m.enrollErr
}

func (m *enrollmentServiceMock) RecordFollowUp(ctx context.Context, req models.FollowUpRequest) (*models.FollowUp, error) {
	m.followUpCalled = true
	m.lastFollowUp = req
	return m.followUpResp, nil
}

func (m *enrollmentServiceMock) ChangeStatus(ctx context.Context, req models.StatusChangeRequest) (*models.Enrollment, error) {
	m.lastStatus = req
	return m.statusResp, m.statusErr
}

func (m *enrollmentServiceMock) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	m.lastStudentID = studentID
	return m.listResp, nil
}

func (m *enrollmentServiceMock) ListAll(ctx context.Context) ([]models.EnrollmentDetail, error) {
	m.allCalled = true
	return m.listResp, nil
}

func (m *enrollmentServiceMock) ListFollowUps(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error) {
	m.lastEnrollment = enrollmentID
	if enrollmentID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollmentId is required")
	}
	return m.followUpList, nil
}

func (m *enrollmentServiceMock) ApplicationStatus(ctx context.Context, studentID int64) (*models.ApplicationStatus, error) {
	m.lastStudentID = studentID
	return m.appStatus, m.appStatusErr
}

type exporterMock struct {
	result *service.ExportResult
	err    error
	format string
}

func (m *exporterMock) ExportEnrollments(ctx context.Context, format string) (*service.ExportResult, error) {
	m.format = format
	return m.result, m.err
}

func newJSONContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestEnrollmentHandlerCreateEnrolls(t *testing.T) {
	svc := &enrollmentServiceMock{enrollResp: &models.Enrollment{ID: 9, StudentID: 3, CourseID: 4, Status: models.EnrollmentStatusLead}}
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJSONContext(http.MethodPost, "/api/enroll", `{"studentId":3,"courseId":4}`)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.enrollCalled)
	assert.False(t, svc.followUpCalled)
	assert.Equal(t, int64(3), svc.lastStudentID)
	assert.Contains(t, w.Body.String(), `"status":"LEAD"`)
}

func TestEnrollmentHandlerCreateRecordsFollowUp(t *testing.T) {
	svc := &enrollmentServiceMock{followUpResp: &models.FollowUp{ID: 1, EnrollmentID: 9, Type: models.FollowUpCall}}
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJSONContext(http.MethodPost, "/api/enroll",
		`{"followUp":{"enrollmentId":9,"type":"call","dateTime":"2024-05-01T10:00","remarks":"left voicemail"}}`)
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.followUpCalled)
	assert.False(t, svc.enrollCalled)
	assert.Equal(t, int64(9), svc.lastFollowUp.EnrollmentID)
	assert.Equal(t, "left voicemail", svc.lastFollowUp.Remarks)
}

func TestEnrollmentHandlerCreateConflict(t *testing.T) {
	svc := &enrollmentServiceMock{enrollErr: appErrors.Clone(appErrors.ErrConflict, "Already enrolled")}
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJSONContext(http.MethodPost, "/api/enroll", `{"studentId":3,"courseId":4}`)
	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Already enrolled", decodeError(t, w))
}

func TestEnrollmentHandlerCreateMalformedBody(t *testing.T) {
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, nil)

	c, w := newJSONContext(http.MethodPost, "/api/enroll", `{"studentId":`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerListDispatch(t *testing.T) {
	t.Run("follow-ups by enrollment", func(t *testing.T) {
		svc := &enrollmentServiceMock{followUpList: []models.FollowUp{{ID: 1}}}
		c, w := newJSONContext(http.MethodGet, "/api/enroll?enrollmentId=12", "")
		NewEnrollmentHandler(svc, nil).List(c)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(12), svc.lastEnrollment)
	})

	t.Run("all enrollments", func(t *testing.T) {
		svc := &enrollmentServiceMock{listResp: []models.EnrollmentDetail{}}
		c, w := newJSONContext(http.MethodGet, "/api/enroll?all=1", "")
		NewEnrollmentHandler(svc, nil).List(c)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.allCalled)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("by student", func(t *testing.T) {
		svc := &enrollmentServiceMock{listResp: []models.EnrollmentDetail{}}
		c, w := newJSONContext(http.MethodGet, "/api/enroll?studentId=5", "")
		NewEnrollmentHandler(svc, nil).List(c)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(5), svc.lastStudentID)
	})

	t.Run("signed-in student defaults to self", func(t *testing.T) {
		svc := &enrollmentServiceMock{listResp: []models.EnrollmentDetail{}}
		c, w := newJSONContext(http.MethodGet, "/api/enroll", "")
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 8, Role: models.RoleStudent})
		NewEnrollmentHandler(svc, nil).List(c)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(8), svc.lastStudentID)
	})

	t.Run("missing student", func(t *testing.T) {
		c, w := newJSONContext(http.MethodGet, "/api/enroll", "")
		NewEnrollmentHandler(&enrollmentServiceMock{}, nil).List(c)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "studentId is required", decodeError(t, w))
	})
}

func TestEnrollmentHandlerUpdateStatus(t *testing.T) {
	svc := &enrollmentServiceMock{statusErr: appErrors.Clone(appErrors.ErrInvalidTransition, "Cannot move from LEAD to ADMITTED")}
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJSONContext(http.MethodPut, "/api/enroll", `{"enrollmentId":4,"status":"ADMITTED"}`)
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cannot move from LEAD to ADMITTED", decodeError(t, w))
	assert.Equal(t, int64(4), svc.lastStatus.EnrollmentID)
	assert.Equal(t, "ADMITTED", svc.lastStatus.Status)
}

func TestEnrollmentHandlerExport(t *testing.T) {
	exporter := &exporterMock{result: &service.ExportResult{
		Filename:    "enrollments-20240501-103000.csv",
		ContentType: "text/csv",
		Body:        []byte("ID,Student\n"),
	}}
	handler := NewEnrollmentHandler(&enrollmentServiceMock{}, exporter)

	c, w := newJSONContext(http.MethodGet, "/api/enroll/export?format=csv", "")
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="enrollments-20240501-103000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID,Student\n", w.Body.String())
}

func TestEnrollmentHandlerApplicationStatus(t *testing.T) {
	svc := &enrollmentServiceMock{appStatusErr: appErrors.Clone(appErrors.ErrNotFound, "Student not found")}
	handler := NewEnrollmentHandler(svc, nil)

	c, w := newJSONContext(http.MethodGet, "/api/status/77", "")
	c.Params = gin.Params{{Key: "studentId", Value: "77"}}
	handler.ApplicationStatus(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(77), svc.lastStudentID)
}
