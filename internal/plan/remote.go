package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// Mirror receives a copy of every saved plan. The local store stays the
// source of truth; a failing mirror never fails a save.
type Mirror interface {
	Push(ctx context.Context, p *Plan) error
	Remove(ctx context.Context, id string) error
}

// ResponseSource lists the respondents of a scheduling event
type ResponseSource interface {
	Respondents(ctx context.Context, eventID string) ([]Respondent, error)
}

// ResponseSourceFunc adapts a function to ResponseSource
type ResponseSourceFunc func(ctx context.Context, eventID string) ([]Respondent, error)

func (f ResponseSourceFunc) Respondents(ctx context.Context, eventID string) ([]Respondent, error) {
	return f(ctx, eventID)
}

// PostgresMirror stores plan snapshots in the remote database
type PostgresMirror struct {
	db *sql.DB
}

// NewPostgresMirror creates a mirror backed by db
func NewPostgresMirror(db *sql.DB) *PostgresMirror {
	return &PostgresMirror{db: db}
}

// Push upserts the snapshot of p
func (m *PostgresMirror) Push(ctx context.Context, p *Plan) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	ids := make([]string, len(p.Participants))
	for i, participant := range p.Participants {
		ids[i] = participant.ID
	}

	query := `
		INSERT INTO plan_snapshots (id, name, plan_date, participant_ids, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			plan_date = EXCLUDED.plan_date,
			participant_ids = EXCLUDED.participant_ids,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	_, err = m.db.ExecContext(ctx, query, p.ID, p.Name, p.Date, pq.Array(ids), payload, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to mirror plan: %w", err)
	}
	return nil
}

// Remove deletes the snapshot of the plan with the given id
func (m *PostgresMirror) Remove(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM plan_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove mirrored plan: %w", err)
	}
	return nil
}
