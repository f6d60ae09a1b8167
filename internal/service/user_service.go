package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type userRepository interface {
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64, role models.UserRole) error
}

type studentCourseReader interface {
	ListCoursesForStudents(ctx context.Context, studentIDs []int64) ([]models.StudentCourse, error)
}

// UserService manages staff and student accounts for administrators.
type UserService struct {
	repo    userRepository
	courses studentCourseReader
	logger  *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(repo userRepository, courses studentCourseReader, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, courses: courses, logger: logger}
}

func roleLabel(role models.UserRole) string {
	if role == models.RoleStaff {
		return "Staff"
	}
	return "Student"
}

// List returns every account with the role.
func (s *UserService) List(ctx context.Context, role models.UserRole) ([]models.User, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list users")
	}
	return users, nil
}

// ListStudents returns every student together with their enrolled courses.
func (s *UserService) ListStudents(ctx context.Context) ([]models.StudentWithCourses, error) {
	students, err := s.repo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}

	ids := make([]int64, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	courses, err := s.courses.ListCoursesForStudents(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student courses")
	}

	byStudent := make(map[int64][]models.StudentCourse, len(students))
	for _, c := range courses {
		byStudent[c.StudentID] = append(byStudent[c.StudentID], c)
	}

	out := make([]models.StudentWithCourses, len(students))
	for i, st := range students {
		list := byStudent[st.ID]
		if list == nil {
			list = []models.StudentCourse{}
		}
		out[i] = models.StudentWithCourses{User: st, Courses: list}
	}
	return out, nil
}

// Create adds an account with the role.
func (s *UserService) Create(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Name, email, and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	user := &models.User{Name: name, Email: email, Phone: strings.TrimSpace(req.Phone), PasswordHash: string(hash), Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Update changes the provided fields; blank fields keep their stored value.
func (s *UserService) Update(ctx context.Context, role models.UserRole, req models.UserRequest) (*models.User, error) {
	if req.ID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, roleLabel(role)+" id is required")
	}

	user, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, roleLabel(role)+" not found")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if user.Role != role {
		return nil, appErrors.Clone(appErrors.ErrNotFound, roleLabel(role)+" not found")
	}

	if v := strings.TrimSpace(req.Name); v != "" {
		user.Name = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		user.Email = v
	}
	if v := strings.TrimSpace(req.Phone); v != "" {
		user.Phone = v
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, roleLabel(role)+" not found")
		}
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		return nil, appErrors.Internal(err, "failed to update user")
	}
	return user, nil
}

// Delete removes an account with the role.
func (s *UserService) Delete(ctx context.Context, role models.UserRole, id int64) error {
	if id == 0 {
		return appErrors.Clone(appErrors.ErrValidation, roleLabel(role)+" id is required")
	}
	if err := s.repo.Delete(ctx, id, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, roleLabel(role)+" not found")
		}
		return appErrors.Internal(err, "failed to delete user")
	}
	return nil
}
