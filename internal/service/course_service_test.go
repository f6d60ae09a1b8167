package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

type mockCourseRepo struct {
	courses map[int64]*models.Course
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = int64(len(m.courses) + 1)
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	return nil
}

func TestCourseServiceCRUD(t *testing.T) {
	repo := &mockCourseRepo{courses: make(map[int64]*models.Course)}
	svc := NewCourseService(repo, nil)

	_, err := svc.Create(context.Background(), models.CourseRequest{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, "Course name is required", appErrors.FromError(err).Message)

	course, err := svc.Create(context.Background(), models.CourseRequest{Name: "Nursing", Description: "4 years"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), models.CourseRequest{ID: course.ID})
	assert.Equal(t, "Course id and name are required", appErrors.FromError(err).Message)

	updated, err := svc.Update(context.Background(), models.CourseRequest{ID: course.ID, Name: "B.Sc. Nursing"})
	require.NoError(t, err)
	assert.Equal(t, "B.Sc. Nursing", updated.Name)

	_, err = svc.Update(context.Background(), models.CourseRequest{ID: 42, Name: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.Equal(t, "Course id is required", appErrors.FromError(svc.Delete(context.Background(), 0)).Message)
	assert.True(t, errors.Is(svc.Delete(context.Background(), 42), appErrors.ErrNotFound))
	require.NoError(t, svc.Delete(context.Background(), course.ID))
}

type mockCustomerRepo struct {
	created *models.Customer
}

func (m *mockCustomerRepo) List(ctx context.Context) ([]models.Customer, error) {
	return nil, nil
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	c.ID = 1
	m.created = c
	return nil
}

func TestCustomerServiceDefaultsOwner(t *testing.T) {
	repo := &mockCustomerRepo{}
	svc := NewCustomerService(repo, nil)

	_, err := svc.Create(context.Background(), models.CustomerRequest{Name: "Acme"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	c, err := svc.Create(context.Background(), models.CustomerRequest{Name: "Acme", Email: "acme@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCustomerOwner, c.AddedByUserID)

	owner := int64(12)
	c, err = svc.Create(context.Background(), models.CustomerRequest{Name: "Acme", Email: "acme@example.com", AddedByUserID: &owner})
	require.NoError(t, err)
	assert.Equal(t, int64(12), c.AddedByUserID)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
}
