package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

var detailColumns = []string{"id", "student_id", "course_id", "status", "created_at", "updated_at",
	"student.id", "student.name", "student.email", "student.phone",
	"course.id", "course.name", "course.description"}

func TestEnrollmentListByStudentScansNestedSummaries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(detailColumns).
		AddRow(1, 7, 3, "LEAD", now, now, 7, "Asha", "asha@example.com", "9999", 3, "MBA", "Two years")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = $1 ORDER BY e.created_at DESC, e.id DESC")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	studentID := int64(7)
	list, err := repo.List(context.Background(), models.EnrollmentFilter{StudentID: &studentID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.EnrollmentStatusLead, list[0].Status)
	assert.Equal(t, "Asha", list[0].Student.Name)
	assert.Equal(t, "MBA", list[0].Course.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentListAllHasNoFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN courses c ON c.id = e.course_id ORDER BY e.created_at DESC")).
		WillReturnRows(sqlmock.NewRows(detailColumns))

	list, err := repo.List(context.Background(), models.EnrollmentFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEnrollmentExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM course_enrollments").WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM course_enrollments").WithArgs(int64(7), int64(4)).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnrollmentCreateDefaultsToLead(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("INSERT INTO course_enrollments").
		WithArgs(int64(7), int64(3), models.EnrollmentStatusLead, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	e := &models.Enrollment{StudentID: 7, CourseID: 3}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, int64(5), e.ID)
	assert.Equal(t, models.EnrollmentStatusLead, e.Status)
}

func TestEnrollmentCreateUniqueViolationIsConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("INSERT INTO course_enrollments").WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: 7, CourseID: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "Already enrolled", appErrors.FromError(err).Message)
}

func TestEnrollmentUpdateStatusIsConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_enrollments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs(int64(5), models.EnrollmentStatusLead, models.EnrollmentStatusFollowUp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE course_enrollments").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), 5, models.EnrollmentStatusLead, models.EnrollmentStatusFollowUp)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(context.Background(), 5, models.EnrollmentStatusLead, models.EnrollmentStatusFollowUp)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCoursesForStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "status", "course.id", "course.name", "course.description"}).
		AddRow(1, 7, "PAYMENT", 3, "MBA", "")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id = ANY($1)")).WillReturnRows(rows)

	courses, err := repo.ListCoursesForStudents(context.Background(), []int64{7, 8})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, int64(7), courses[0].StudentID)
	assert.Equal(t, "MBA", courses[0].Course.Name)

	empty, err := repo.ListCoursesForStudents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
