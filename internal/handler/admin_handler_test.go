package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type courseServiceMock struct {
	listResp  []models.Course
	createErr error
	deletedID int64
	lastReq   models.CourseRequest
}

func (m *courseServiceMock) List(ctx context.Context) ([]models.Course, error) {
	return m.listResp, nil
}

func (m *courseServiceMock) Create(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	m.lastReq = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Course{ID: 1, Name: req.Name}, nil
}

func (m *courseServiceMock) Update(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	m.lastReq = req
	return &models.Course{ID: req.ID, Name: req.Name}, nil
}

func (m *courseServiceMock) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	if id == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Course id is required")
	}
	return nil
}

type userServiceMock struct {
	lastRole  models.UserRole
	lastReq   models.UserRequest
	deletedID int64
	deleteErr error
}

func (m *userServiceMock) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	m.lastRole = role
	return nil, nil
}

func (m *userServiceMock) ListStudents(ctx context.Context) ([]models.StudentWithCourses, error) {
	return []models.StudentWithCourses{{User: models.User{ID: 2, Name: "Asha"}, Courses: []models.StudentCourse{}}}, nil
}

func (m *userServiceMock) Create(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	m.lastRole = role
	m.lastReq = req
	return &models.User{ID: 10, Name: req.Name, Role: role}, nil
}

func (m *userServiceMock) Update(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	m.lastRole = role
	m.lastReq = req
	return &models.User{ID: req.ID, Name: req.Name, Role: role}, nil
}

func (m *userServiceMock) Delete(ctx context.Context, role models.UserRole, id int64) error {
	m.lastRole = role
	m.deletedID = id
	return m.deleteErr
}

func TestAdminHandlerListCoursesEmptyArray(t *testing.T) {
	handler := NewAdminHandler(&courseServiceMock{}, &userServiceMock{})

	c, w := newJSONContext(http.MethodGet, "/api/admin/courses", "")
	handler.ListCourses(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAdminHandlerCreateCourse(t *testing.T) {
	courses := &courseServiceMock{}
	handler := NewAdminHandler(courses, &userServiceMock{})

	c, w := newJSONContext(http.MethodPost, "/api/admin/courses", `{"name":"Nursing","description":"BSc"}`)
	handler.CreateCourse(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Nursing", courses.lastReq.Name)
}

func TestAdminHandlerCreateCourseValidation(t *testing.T) {
	courses := &courseServiceMock{createErr: appErrors.Clone(appErrors.ErrValidation, "Course name is required")}
	handler := NewAdminHandler(courses, &userServiceMock{})

	c, w := newJSONContext(http.MethodPost, "/api/admin/courses", `{}`)
	handler.CreateCourse(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Course name is required", decodeError(t, w))
}

func TestAdminHandlerDeleteCourseReadsBodyID(t *testing.T) {
	courses := &courseServiceMock{}
	handler := NewAdminHandler(courses, &userServiceMock{})

	c, w := newJSONContext(http.MethodDelete, "/api/admin/courses", `{"id":42}`)
	handler.DeleteCourse(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), courses.deletedID)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestAdminHandlerDeleteCourseQueryAndMissingID(t *testing.T) {
	courses := &courseServiceMock{}
	handler := NewAdminHandler(courses, &userServiceMock{})

	c, w := newJSONContext(http.MethodDelete, "/api/admin/courses?id=7", "")
	handler.DeleteCourse(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), courses.deletedID)

	c, w = newJSONContext(http.MethodDelete, "/api/admin/courses", "")
	handler.DeleteCourse(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Course id is required", decodeError(t, w))
}

func TestAdminHandlerStaffRoutesUseStaffRole(t *testing.T) {
	users := &userServiceMock{}
	handler := NewAdminHandler(&courseServiceMock{}, users)

	c, w := newJSONContext(http.MethodPost, "/api/admin/staff", `{"name":"Ravi","email":"ravi@example.com","password":"secret","phone":"555"}`)
	handler.CreateStaff(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.RoleStaff, users.lastRole)
	assert.Equal(t, "ravi@example.com", users.lastReq.Email)

	c, w = newJSONContext(http.MethodPut, "/api/admin/staff", `{"id":10,"name":"Ravi K"}`)
	handler.UpdateStaff(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10), users.lastReq.ID)

	c, w = newJSONContext(http.MethodGet, "/api/admin/staff", "")
	handler.ListStaff(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAdminHandlerStudentRoutes(t *testing.T) {
	users := &userServiceMock{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "Student not found")}
	handler := NewAdminHandler(&courseServiceMock{}, users)

	c, w := newJSONContext(http.MethodGet, "/api/admin/students", "")
	handler.ListStudents(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"courses":[]`)

	c, w = newJSONContext(http.MethodDelete, "/api/admin/students", `{"id":99}`)
	handler.DeleteStudent(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.RoleStudent, users.lastRole)
	assert.Equal(t, int64(99), users.deletedID)
}
