package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrNoCandidateDates = errors.New("at least one candidate date is required")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrUnknownDate      = errors.New("date is not a candidate of this event")
	ErrInvalidAnswer    = errors.New("answer must be yes, maybe or no")
)

// Service handles scheduling event business logic
type Service struct {
	store Store
}

// NewService creates a new event service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create creates a new event. Candidate dates are normalised, de-duplicated
// and sorted.
func (s *Service) Create(ctx context.Context, req *CreateEventRequest) (*Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var dates []string
	for _, raw := range req.CandidateDates {
		d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		if date := d.Format(DateLayout); !slices.Contains(dates, date) {
			dates = append(dates, date)
		}
	}
	if len(dates) == 0 {
		return nil, ErrNoCandidateDates
	}
	slices.Sort(dates)

	e := &Event{
		ID:             uuid.NewString(),
		Title:          title,
		Memo:           strings.TrimSpace(req.Memo),
		CandidateDates: dates,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get retrieves an event by its ID
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// SubmitResponse records a participant's answers. Only candidate dates may
// be answered; unanswered dates are left out.
func (s *Service) SubmitResponse(ctx context.Context, eventID string, req *SubmitResponseRequest) (*Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	e, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	answers := make(map[string]Answer, len(req.Answers))
	for date, answer := range req.Answers {
		if !e.HasDate(date) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDate, date)
		}
		if !answer.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAnswer, answer)
		}
		answers[date] = answer
	}

	resp := &Response{
		ID:      uuid.NewString(),
		EventID: e.ID,
		Name:    name,
		Answers: answers,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.store.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListResponses returns every response to an event
func (s *Service) ListResponses(ctx context.Context, eventID string) ([]*Response, error) {
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListResponses(ctx, eventID)
}
