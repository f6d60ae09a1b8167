package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/handler"
	"github.com/noah-isme/admissions-crm-api/internal/models"
	"github.com/noah-isme/admissions-crm-api/internal/service"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type fakeCourses struct{}

func (fakeCourses) List(ctx context.Context) ([]models.Course, error) {
	return []models.Course{{ID: 1, Name: "Nursing"}}, nil
}
func (fakeCourses) Create(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	return &models.Course{ID: 2, Name: req.Name}, nil
}
func (fakeCourses) Update(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	return &models.Course{ID: req.ID, Name: req.Name}, nil
}
func (fakeCourses) Delete(ctx context.Context, id int64) error { return nil }

type fakeUsers struct{}

func (fakeUsers) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	return []models.User{}, nil
}
func (fakeUsers) ListStudents(ctx context.Context) ([]models.StudentWithCourses, error) {
	return []models.StudentWithCourses{}, nil
}
func (fakeUsers) Create(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	return &models.User{Name: req.Name, Role: role}, nil
}
func (fakeUsers) Update(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	return &models.User{ID: req.ID, Role: role}, nil
}
func (fakeUsers) Delete(ctx context.Context, role models.UserRole, id int64) error { return nil }

type fakeEnrollments struct{}

func (fakeEnrollments) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	return &models.Enrollment{StudentID: studentID, CourseID: courseID, Status: models.EnrollmentStatusLead}, nil
}
func (fakeEnrollments) RecordFollowUp(ctx context.Context, req models.FollowUpRequest) (*models.FollowUp, error) {
	return &models.FollowUp{EnrollmentID: req.EnrollmentID}, nil
}
func (fakeEnrollments) ChangeStatus(ctx context.Context, req models.StatusChangeRequest) (*models.Enrollment, error) {
	return &models.Enrollment{ID: req.EnrollmentID, Status: models.EnrollmentStatus(req.Status)}, nil
}
func (fakeEnrollments) ListByStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	return []models.EnrollmentDetail{}, nil
}
func (fakeEnrollments) ListAll(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return []models.EnrollmentDetail{}, nil
}
func (fakeEnrollments) ListFollowUps(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error) {
	return []models.FollowUp{}, nil
}
func (fakeEnrollments) ApplicationStatus(ctx context.Context, studentID int64) (*models.ApplicationStatus, error) {
	return &models.ApplicationStatus{StudentID: studentID, Enrollments: []models.EnrollmentDetail{}, Summary: "No applications yet."}, nil
}

type fakeLeads struct{}

func (fakeLeads) List(ctx context.Context) ([]models.LeadDetail, error) { return []models.LeadDetail{}, nil }
func (fakeLeads) Create(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	return &models.Lead{Name: req.Name}, nil
}
func (fakeLeads) Import(ctx context.Context, file io.Reader) (*models.LeadImportResult, error) {
	return &models.LeadImportResult{Skipped: []models.ImportRowError{}}, nil
}

type fakeCustomers struct{}

func (fakeCustomers) List(ctx context.Context) ([]models.Customer, error) { return []models.Customer{}, nil }
func (fakeCustomers) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	return &models.Customer{Name: req.Name}, nil
}

type fakeAuth struct{}

func (fakeAuth) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	return &models.UserInfo{Name: req.Name, Role: models.RoleStudent}, nil
}
func (fakeAuth) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return nil, appErrors.ErrInvalidCredentials
}
func (fakeAuth) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	return nil, appErrors.ErrForbidden
}

type fakeChat struct{}

func (fakeChat) Reply(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	return &models.ChatResponse{Intent: "greeting", SessionID: "s1"}, nil
}

func newTestRouter(authRequired bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handlers{
		Auth:       handler.NewAuthHandler(fakeAuth{}),
		Admin:      handler.NewAdminHandler(fakeCourses{}, fakeUsers{}),
		Enrollment: handler.NewEnrollmentHandler(fakeEnrollments{}, nil),
		Lead:       handler.NewLeadHandler(fakeLeads{}),
		Customer:   handler.NewCustomerHandler(fakeCustomers{}),
		Chat:       handler.NewChatHandler(fakeChat{}, service.NewClock("UTC")),
		Metrics:    handler.NewMetricsHandler(service.NewMetricsService(), nil),
	}
	tokens := tokenTable{
		"admin":   {UserID: 1, Role: models.RoleAdmin},
		"student": {UserID: 7, Role: models.RoleStudent},
	}
	return NewRouter(Options{AuthRequired: authRequired, MetricsEnabled: true}, h, tokens, nil, nil)
}

func perform(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(false)

	w := perform(r, http.MethodDelete, "/api/time", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"method not allowed"`)

	w = perform(r, http.MethodPatch, "/api/enroll", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterOpenWhenAuthNotRequired(t *testing.T) {
	r := newTestRouter(false)

	w := perform(r, http.MethodGet, "/api/admin/courses", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nursing")

	w = perform(r, http.MethodGet, "/api/time", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"timeZone":"UTC"`)
}

func TestRouterEnforcesRolesWhenAuthRequired(t *testing.T) {
	r := newTestRouter(true)

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/api/admin/courses", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/api/admin/courses", "student").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/admin/courses", "admin").Code)

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodPut, "/api/enroll", "student").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/enroll?studentId=7", "student").Code)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/status/7", "student").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/api/status/8", "student").Code)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/time", "").Code)
}

func TestRouterObservabilityRoutes(t *testing.T) {
	r := newTestRouter(true)

	w := perform(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/nope", "").Code)
}
