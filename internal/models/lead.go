package models

import "time"

// Lead is a pre-enrollment expression of interest.
type Lead struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	ParentContact  string    `db:"parent_contact" json:"parentContact"`
	CourseInterest string    `db:"course_interest" json:"courseInterest"`
	Source         string    `db:"source" json:"source"`
	AssignedToID   *int64    `db:"assigned_to_id" json:"assignedToId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// LeadDetail adds the assigned staff member to a lead.
type LeadDetail struct {
	Lead
	AssignedToName  *string      `db:"assigned_to_name" json:"-"`
	AssignedToEmail *string      `db:"assigned_to_email" json:"-"`
	AssignedTo      *UserSummary `db:"-" json:"assignedTo"`
}

// LeadRequest is the create payload.
type LeadRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	ParentContact  string `json:"parentContact"`
	CourseInterest string `json:"courseInterest" validate:"required"`
	Source         string `json:"source" validate:"required"`
	AssignedToID   *int64 `json:"assignedToId"`
}

// ImportRowError reports one spreadsheet row that was not imported.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// LeadImportResult summarises a spreadsheet import.
type LeadImportResult struct {
	Imported int              `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}
