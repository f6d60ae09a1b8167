package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

// FollowUpRepository appends and reads the follow-up log. Rows are never updated.
type FollowUpRepository struct {
	db *sqlx.DB
}

// NewFollowUpRepository constructs the repository.
func NewFollowUpRepository(db *sqlx.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// Create appends a follow-up.
func (r *FollowUpRepository) Create(ctx context.Context, f *models.FollowUp) error {
	now := time.Now().UTC()
	const query = `INSERT INTO follow_ups (enrollment_id, type, date_time, remarks, created_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, f.EnrollmentID, f.Type, f.DateTime, f.Remarks, now).Scan(&f.ID); err != nil {
		return fmt.Errorf("create follow-up: %w", err)
	}
	f.CreatedAt = now
	return nil
}

// ListByEnrollment returns follow-ups newest first by scheduled time.
func (r *FollowUpRepository) ListByEnrollment(ctx context.Context, enrollmentID int64) ([]models.FollowUp, error) {
	const query = `SELECT id, enrollment_id, type, date_time, remarks, created_at FROM follow_ups
        WHERE enrollment_id = $1 ORDER BY date_time DESC, id DESC`
	followUps := []models.FollowUp{}
	if err := r.db.SelectContext(ctx, &followUps, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}
	return followUps, nil
}
