package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.status, e.created_at, e.updated_at,
        s.id AS "student.id", s.name AS "student.name", s.email AS "student.email", s.phone AS "student.phone",
        c.id AS "course.id", c.name AS "course.name", c.description AS "course.description"
        FROM course_enrollments e
        JOIN users s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments joined with student and course, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect
	var args []interface{}
	if filter.StudentID != nil {
		query += ` WHERE e.student_id = $1`
		args = append(args, *filter.StudentID)
	}
	query += ` ORDER BY e.created_at DESC, e.id DESC`

	enrollments := []models.EnrollmentDetail{}
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, status, created_at, updated_at FROM course_enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether the student already has an enrollment for the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM course_enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment. The unique (student, course) key turns a racing
// duplicate into a conflict.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusLead
	}
	const query = `INSERT INTO course_enrollments (student_id, course_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Status, now).Scan(&enrollment.ID); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "Already enrolled")
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	return nil
}

// UpdateStatus moves an enrollment from one status to another. It reports false when
// the row no longer holds the expected status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id int64, from, to models.EnrollmentStatus) (bool, error) {
	const query = `UPDATE course_enrollments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update enrollment status: %w", err)
	}
	return n == 1, nil
}

// ListCoursesForStudents returns the enrolled courses of every listed student.
func (r *EnrollmentRepository) ListCoursesForStudents(ctx context.Context, studentIDs []int64) ([]models.StudentCourse, error) {
	courses := []models.StudentCourse{}
	if len(studentIDs) == 0 {
		return courses, nil
	}
	const query = `SELECT e.id AS enrollment_id, e.student_id, e.status,
        c.id AS "course.id", c.name AS "course.name", c.description AS "course.description"
        FROM course_enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = ANY($1)
        ORDER BY e.created_at ASC, e.id ASC`
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}
