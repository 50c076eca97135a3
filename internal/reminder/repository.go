package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store is the persistence the reminder service needs
type Store interface {
	// ReplacePending drops the unsent reminders of a plan and inserts
	// reminders in their place, filling in ID and CreatedAt
	ReplacePending(ctx context.Context, planID string, reminders []*Reminder) error
	ListByPlan(ctx context.Context, planID string) ([]*Reminder, error)
	GetByID(ctx context.Context, id int64) (*Reminder, error)
	MarkSent(ctx context.Context, id int64) error
}

// Ensure Repository implements Store
var _ Store = (*Repository)(nil)

// Repository handles reminder data persistence in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reminder repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ReplacePending swaps the unsent reminders of a plan in one transaction
func (r *Repository) ReplacePending(ctx context.Context, planID string, reminders []*Reminder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE plan_id = $1 AND is_sent = false`, planID); err != nil {
		return fmt.Errorf("failed to delete pending reminders: %w", err)
	}

	query := `
		INSERT INTO reminders (plan_id, participant_id, name, amount, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	for _, rem := range reminders {
		err := tx.QueryRowContext(ctx, query, rem.PlanID, rem.ParticipantID, rem.Name, rem.Amount, rem.Message).Scan(
			&rem.ID,
			&rem.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}
	return nil
}

// ListByPlan retrieves every reminder of a plan, newest first
func (r *Repository) ListByPlan(ctx context.Context, planID string) ([]*Reminder, error) {
	query := `
		SELECT id, plan_id, participant_id, name, amount, message, is_sent, created_at
		FROM reminders
		WHERE plan_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		rem, err := scan(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// GetByID retrieves a reminder by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	query := `
		SELECT id, plan_id, participant_id, name, amount, message, is_sent, created_at
		FROM reminders
		WHERE id = $1
	`

	rem, err := scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rem, err
}

// MarkSent flags a reminder as delivered
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reminders SET is_sent = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder as sent: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*Reminder, error) {
	rem := &Reminder{}
	err := s.Scan(
		&rem.ID,
		&rem.PlanID,
		&rem.ParticipantID,
		&rem.Name,
		&rem.Amount,
		&rem.Message,
		&rem.IsSent,
		&rem.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan reminder: %w", err)
	}
	return rem, nil
}
