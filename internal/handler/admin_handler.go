package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, req models.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, req models.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

type userService interface {
	List(ctx context.Context, role models.UserRole) ([]models.User, error)
	ListStudents(ctx context.Context) ([]models.StudentWithCourses, error)
	Create(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error)
	Update(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error)
	Delete(ctx context.Context, role models.UserRole, id int64) error
}

// AdminHandler serves the admin catalog and account management routes.
type AdminHandler struct {
	courses courseService
	users   userService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(courses courseService, users userService) *AdminHandler {
	return &AdminHandler{courses: courses, users: users}
}

// ListCourses godoc
// @Summary List courses
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Course
// @Router /admin/courses [get]
func (h *AdminHandler) ListCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	response.OK(c, courses)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CourseRequest true "Course payload"
// @Success 201 {object} models.Course
// @Failure 400 {object} response.ErrorBody
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var req models.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CourseRequest true "Course payload with id"
// @Success 200 {object} models.Course
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /admin/courses [put]
func (h *AdminHandler) UpdateCourse(c *gin.Context) {
	var req models.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse godoc
// @Summary Delete course
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.DeleteRequest true "Course id"
// @Success 200 {object} response.Success
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /admin/courses [delete]
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), deleteID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Success{Success: true})
}

// ListStaff godoc
// @Summary List staff accounts
// @Tags Admin
// @Produce json
// @Success 200 {array} models.User
// @Router /admin/staff [get]
func (h *AdminHandler) ListStaff(c *gin.Context) {
	staff, err := h.users.List(c.Request.Context(), models.RoleStaff)
	if err != nil {
		response.Error(c, err)
		return
	}
	if staff == nil {
		staff = []models.User{}
	}
	response.OK(c, staff)
}

// ListStudents godoc
// @Summary List students with their courses
// @Tags Admin
// @Produce json
// @Success 200 {array} models.StudentWithCourses
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	students, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// CreateStaff godoc
// @Summary Create staff account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.UserRequest true "Staff payload"
// @Success 201 {object} models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /admin/staff [post]
func (h *AdminHandler) CreateStaff(c *gin.Context) { h.createUser(c, models.RoleStaff) }

// CreateStudent godoc
// @Summary Create student account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.UserRequest true "Student payload"
// @Success 201 {object} models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) { h.createUser(c, models.RoleStudent) }

// UpdateStaff godoc
// @Summary Update staff account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.UserRequest true "Staff payload with id"
// @Success 200 {object} models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /admin/staff [put]
func (h *AdminHandler) UpdateStaff(c *gin.Context) { h.updateUser(c, models.RoleStaff) }

// UpdateStudent godoc
// @Summary Update student account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.UserRequest true "Student payload with id"
// @Success 200 {object} models.User
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /admin/students [put]
func (h *AdminHandler) UpdateStudent(c *gin.Context) { h.updateUser(c, models.RoleStudent) }

// DeleteStaff godoc
// @Summary Delete staff account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.DeleteRequest true "Staff id"
// @Success 200 {object} response.Success
// @Failure 404 {object} response.ErrorBody
// @Router /admin/staff [delete]
func (h *AdminHandler) DeleteStaff(c *gin.Context) { h.deleteUser(c, models.RoleStaff) }

// DeleteStudent godoc
// @Summary Delete student account
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.DeleteRequest true "Student id"
// @Success 200 {object} response.Success
// @Failure 404 {object} response.ErrorBody
// @Router /admin/students [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) { h.deleteUser(c, models.RoleStudent) }

func (h *AdminHandler) createUser(c *gin.Context, role models.UserRole) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}
	user, err := h.users.Create(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

func (h *AdminHandler) updateUser(c *gin.Context, role models.UserRole) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}
	user, err := h.users.Update(c.Request.Context(), role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

func (h *AdminHandler) deleteUser(c *gin.Context, role models.UserRole) {
	if err := h.users.Delete(c.Request.Context(), role, deleteID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Success{Success: true})
}
