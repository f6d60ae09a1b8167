package models

import "time"

// FollowUpType is the channel used for a staff contact attempt.
type FollowUpType string

const (
	FollowUpCall    FollowUpType = "Call"
	FollowUpEmail   FollowUpType = "Email"
	FollowUpVisit   FollowUpType = "Visit"
	FollowUpMessage FollowUpType = "Message"
)

// Valid reports whether t is one of the supported channels.
func (t FollowUpType) Valid() bool {
	switch t {
	case FollowUpCall, FollowUpEmail, FollowUpVisit, FollowUpMessage:
		return true
	}
	return false
}

// FollowUp is an append-only log entry attached to an enrollment.
type FollowUp struct {
	ID           int64        `db:"id" json:"id"`
	EnrollmentID int64        `db:"enrollment_id" json:"enrollmentId"`
	Type         FollowUpType `db:"type" json:"type"`
	DateTime     time.Time    `db:"date_time" json:"dateTime"`
	Remarks      string       `db:"remarks" json:"remarks"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

// FollowUpRequest is the nested followUp object of POST /enroll.
type FollowUpRequest struct {
	EnrollmentID int64  `json:"enrollmentId" validate:"required"`
	Type         string `json:"type" validate:"required"`
	DateTime     string `json:"dateTime" validate:"required"`
	Remarks      string `json:"remarks"`
}
