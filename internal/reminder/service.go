package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fkhayef/warikan/internal/plan"
)

// Common errors
var (
	ErrReminderNotFound = errors.New("reminder not found")
)

// Plans is the part of the plan service reminders are built from
type Plans interface {
	Get(ctx context.Context, id string) (*plan.Plan, error)
	Summary(ctx context.Context, id string) (*plan.Summary, error)
}

// Service handles payment reminder business logic
type Service struct {
	store Store
	plans Plans
}

// NewService creates a new reminder service
func NewService(store Store, plans Plans) *Service {
	return &Service{store: store, plans: plans}
}

// GenerateForPlan creates one reminder per participant who has not paid a
// positive amount yet. Unsent reminders from an earlier run are replaced.
func (s *Service) GenerateForPlan(ctx context.Context, planID string) ([]*Reminder, error) {
	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	summary, err := s.plans.Summary(ctx, planID)
	if err != nil {
		return nil, err
	}

	reminders := []*Reminder{}
	for _, line := range summary.Payments {
		if line.HasPaid || line.Amount <= 0 {
			continue
		}
		reminders = append(reminders, &Reminder{
			PlanID:        p.ID,
			ParticipantID: line.ParticipantID,
			Name:          line.Name,
			Amount:        line.Amount,
			Message:       message(line.Name, p.Name, line.Formatted),
		})
	}

	if err := s.store.ReplacePending(ctx, p.ID, reminders); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("plan_id", p.ID).Int("reminders", len(reminders)).Msg("payment reminders generated")
	return reminders, nil
}

// ListByPlan returns the reminders of a plan
func (s *Service) ListByPlan(ctx context.Context, planID string) ([]*Reminder, error) {
	return s.store.ListByPlan(ctx, planID)
}

// MarkSent flags a reminder as delivered
func (s *Service) MarkSent(ctx context.Context, id int64) error {
	rem, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rem == nil {
		return ErrReminderNotFound
	}
	return s.store.MarkSent(ctx, id)
}

func message(name, planName, amount string) string {
	return fmt.Sprintf("%sさん、「%s」の会費 %s のお支払いをお願いします。", name, planName, amount)
}
