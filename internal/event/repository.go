package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Store is the persistence the event service needs
type Store interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	CreateResponse(ctx context.Context, r *Response) error
	ListResponses(ctx context.Context, eventID string) ([]*Response, error)
}

// Ensure Repository implements Store
var _ Store = (*Repository)(nil)

// Repository handles event data persistence in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new event repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new event
func (r *Repository) Create(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (id, title, memo, candidate_dates)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, e.ID, e.Title, e.Memo, pq.Array(e.CandidateDates)).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Event, error) {
	query := `
		SELECT id, title, memo, candidate_dates, created_at
		FROM events
		WHERE id = $1
	`

	e := &Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.Title,
		&e.Memo,
		pq.Array(&e.CandidateDates),
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// CreateResponse inserts a submitted answer sheet
func (r *Repository) CreateResponse(ctx context.Context, resp *Response) error {
	answers, err := json.Marshal(resp.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	query := `
		INSERT INTO event_responses (id, event_id, name, answers, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query, resp.ID, resp.EventID, resp.Name, answers, resp.Comment).Scan(&resp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

// ListResponses retrieves every response to an event, oldest first
func (r *Repository) ListResponses(ctx context.Context, eventID string) ([]*Response, error) {
	query := `
		SELECT id, event_id, name, answers, comment, created_at
		FROM event_responses
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []*Response
	for rows.Next() {
		resp := &Response{}
		var answers []byte
		if err := rows.Scan(
			&resp.ID,
			&resp.EventID,
			&resp.Name,
			&answers,
			&resp.Comment,
			&resp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if err := json.Unmarshal(answers, &resp.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}
