package models

import "time"

// UserRole represents the roles a login may carry.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleStaff   UserRole = "STAFF"
	RoleAdmin   UserRole = "ADMIN"
)

// Valid reports whether the role is one the API accepts for login.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents an account stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Phone        string    `db:"phone" json:"phone"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the public projection embedded in joined responses.
type UserSummary struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`
}

// StudentCourse is one course a student is enrolled in.
type StudentCourse struct {
	EnrollmentID int64            `db:"enrollment_id" json:"enrollmentId"`
	StudentID    int64            `db:"student_id" json:"-"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	Course       CourseSummary    `db:"course" json:"course"`
}

// StudentWithCourses is returned by the admin students listing.
type StudentWithCourses struct {
	User
	Courses []StudentCourse `json:"courses"`
}

// UserRequest is the admin create/update payload for staff and students.
type UserRequest struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// DeleteRequest carries the id of the record to remove.
type DeleteRequest struct {
	ID int64 `json:"id" validate:"required"`
}
