package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

// LeadRepository persists leads.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs the repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns every lead with its assigned staff member, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]models.LeadDetail, error) {
	const query = `SELECT l.id, l.name, l.email, l.phone, l.parent_contact, l.course_interest, l.source,
        l.assigned_to_id, l.created_at, u.name AS assigned_to_name, u.email AS assigned_to_email
        FROM leads l
        LEFT JOIN users u ON u.id = l.assigned_to_id
        ORDER BY l.created_at DESC, l.id DESC`
	leads := []models.LeadDetail{}
	if err := r.db.SelectContext(ctx, &leads, query); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	for i := range leads {
		l := &leads[i]
		if l.AssignedToID != nil && l.AssignedToName != nil {
			summary := models.UserSummary{ID: *l.AssignedToID, Name: *l.AssignedToName}
			if l.AssignedToEmail != nil {
				summary.Email = *l.AssignedToEmail
			}
			l.AssignedTo = &summary
		}
	}
	return leads, nil
}

const insertLead = `INSERT INTO leads (name, email, phone, parent_contact, course_interest, source, assigned_to_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

// Create inserts one lead.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	lead.CreatedAt = time.Now().UTC()
	if err := r.db.QueryRowxContext(ctx, insertLead, leadArgs(lead)...).Scan(&lead.ID); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// CreateBatch inserts leads in one transaction; nothing is stored if any row fails.
func (r *LeadRepository) CreateBatch(ctx context.Context, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lead import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for i, lead := range leads {
		lead.CreatedAt = now
		if err := tx.QueryRowxContext(ctx, insertLead, leadArgs(lead)...).Scan(&lead.ID); err != nil {
			return fmt.Errorf("import lead %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit lead import: %w", err)
	}
	return nil
}

func leadArgs(l *models.Lead) []interface{} {
	return []interface{}{l.Name, l.Email, l.Phone, l.ParentContact, l.CourseInterest, l.Source, l.AssignedToID, l.CreatedAt}
}
