package models

import "time"

// EnrollmentStatus is a stage of the admissions funnel.
type EnrollmentStatus string

const (
	EnrollmentStatusLead     EnrollmentStatus = "LEAD"
	EnrollmentStatusFollowUp EnrollmentStatus = "FOLLOWUP"
	EnrollmentStatusPayment  EnrollmentStatus = "PAYMENT"
	EnrollmentStatusAdmitted EnrollmentStatus = "ADMITTED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// nextStatuses is the forward-only transition table. Terminal states map to nothing.
var nextStatuses = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusLead:     {EnrollmentStatusFollowUp},
	EnrollmentStatusFollowUp: {EnrollmentStatusPayment},
	EnrollmentStatusPayment:  {EnrollmentStatusAdmitted, EnrollmentStatusRejected},
	EnrollmentStatusAdmitted: nil,
	EnrollmentStatusRejected: nil,
}

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	_, ok := nextStatuses[s]
	return ok
}

// Terminal reports whether no transition leaves s.
func (s EnrollmentStatus) Terminal() bool {
	return s.Valid() && len(nextStatuses[s]) == 0
}

// AllowedNext returns the statuses reachable in one step from current.
func AllowedNext(current EnrollmentStatus) []EnrollmentStatus {
	next := nextStatuses[current]
	out := make([]EnrollmentStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to EnrollmentStatus) bool {
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Enrollment captures one student's progress through admissions for one course.
type Enrollment struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int64            `db:"student_id" json:"studentId"`
	CourseID  int64            `db:"course_id" json:"courseId"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	Student UserSummary   `db:"student" json:"student"`
	Course  CourseSummary `db:"course" json:"course"`
}

// EnrollmentFilter narrows enrollment listings. A nil StudentID lists everything.
type EnrollmentFilter struct {
	StudentID *int64
}

// EnrollRequest is the student enroll payload. A POST carrying FollowUp records a
// follow-up instead.
type EnrollRequest struct {
	StudentID int64            `json:"studentId"`
	CourseID  int64            `json:"courseId"`
	FollowUp  *FollowUpRequest `json:"followUp,omitempty"`
}

// StatusChangeRequest moves an enrollment to its next stage.
type StatusChangeRequest struct {
	EnrollmentID int64  `json:"enrollmentId" validate:"required"`
	Status       string `json:"status" validate:"required"`
}

// ApplicationStatus summarises where a student stands across all enrollments.
type ApplicationStatus struct {
	StudentID   int64              `json:"studentId"`
	Name        string             `json:"name"`
	Enrollments []EnrollmentDetail `json:"enrollments"`
	Summary     string             `json:"summary"`
}
