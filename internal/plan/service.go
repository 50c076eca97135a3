package plan

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fkhayef/warikan/internal/money"
	"github.com/fkhayef/warikan/internal/plan/allocation"
	"github.com/fkhayef/warikan/internal/plan/breakdown"
	"github.com/fkhayef/warikan/internal/role"
)

// Common errors
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrEmptyPlanName        = errors.New("plan name cannot be empty")
	ErrEmptyParticipantName = errors.New("participant name cannot be empty")
	ErrNegativeFixedAmount  = errors.New("fixed amount cannot be negative")
	ErrNoScheduleEvent      = errors.New("plan is not linked to a scheduling event")
	ErrResponsesUnavailable = errors.New("scheduling responses are not available")
	ErrUnknownAttendee      = errors.New("confirmed participant is not in the roster")
)

// Observer is notified of allocations and saves
type Observer interface {
	AllocationComputed(policy string, participants int, gap int64)
	PlanSaved(operation string)
}

type nopObserver struct{}

func (nopObserver) AllocationComputed(string, int, int64) {}
func (nopObserver) PlanSaved(string)                      {}

// Options configures a Service
type Options struct {
	// DefaultPolicy applies to plans created without an explicit policy
	DefaultPolicy allocation.Policy

	// DefaultItemLabel replaces empty breakdown item names
	DefaultItemLabel string
}

// Service handles plan business logic
type Service struct {
	repo      *Repository
	roles     *role.Table
	factory   *allocation.Factory
	formatter *money.Formatter
	opts      Options

	mirror    Mirror
	responses ResponseSource
	observer  Observer
	now       func() time.Time
}

// NewService creates a new plan service with dependencies injected
func NewService(repo *Repository, roles *role.Table, factory *allocation.Factory, formatter *money.Formatter, opts Options) *Service {
	if opts.DefaultPolicy == "" {
		opts.DefaultPolicy = allocation.DefaultPolicy
	}
	if opts.DefaultItemLabel == "" {
		opts.DefaultItemLabel = "追加金額"
	}
	return &Service{
		repo:      repo,
		roles:     roles,
		factory:   factory,
		formatter: formatter,
		opts:      opts,
		observer:  nopObserver{},
		now:       time.Now,
	}
}

// WithMirror pushes every saved plan to m
func (s *Service) WithMirror(m Mirror) *Service {
	s.mirror = m
	return s
}

// WithResponses enables ImportResponses
func (s *Service) WithResponses(src ResponseSource) *Service {
	s.responses = src
	return s
}

// WithObserver reports allocations and saves to o
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Create creates a new plan with an empty roster
func (s *Service) Create(ctx context.Context, req *CreatePlanRequest) (*Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyPlanName
	}
	policy, err := s.policy(req.Policy)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Plan{
		ID:              uuid.NewString(),
		Name:            name,
		Date:            req.Date,
		Participants:    []Participant{},
		TotalAmount:     req.TotalAmount,
		Items:           breakdown.Items{},
		Roles:           s.roles.Snapshot(),
		Policy:          policy,
		ScheduleEventID: req.ScheduleEventID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.saved(ctx, "create", p)
	return p, nil
}

// Get retrieves a plan by its ID
func (s *Service) Get(ctx context.Context, id string) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// List returns every plan
func (s *Service) List(ctx context.Context) ([]*Plan, error) {
	return s.repo.List(ctx)
}

// Update changes the plan header fields
func (s *Service) Update(ctx context.Context, id string, req *UpdatePlanRequest) (*Plan, error) {
	var policy allocation.Policy
	if req.Policy != nil {
		var err error
		if policy, err = s.policy(*req.Policy); err != nil {
			return nil, err
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrEmptyPlanName
	}

	return s.mutate(ctx, id, "update", func(p *Plan) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Date != nil {
			p.Date = *req.Date
		}
		if req.TotalAmount != nil {
			p.TotalAmount = *req.TotalAmount
		}
		if req.Policy != nil {
			p.Policy = policy
		}
		if req.ScheduleEventID != nil {
			p.ScheduleEventID = *req.ScheduleEventID
		}
		return nil
	})
}

// Delete removes a plan
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrPlanNotFound
	}

	s.observer.PlanSaved("delete")
	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, id); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("plan_id", id).Msg("failed to remove mirrored plan")
		}
	}
	return nil
}

// AddParticipant appends a manually entered participant to the roster
func (s *Service) AddParticipant(ctx context.Context, planID string, req *ParticipantRequest) (*Participant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyParticipantName
	}
	if err := validateFixed(req.FixedAmount); err != nil {
		return nil, err
	}
	ref, err := s.resolveRole(req.Role)
	if err != nil {
		return nil, err
	}

	participant := Participant{
		ID:             uuid.NewString(),
		Name:           name,
		Role:           ref,
		HasPaid:        req.HasPaid,
		HasFixedAmount: req.HasFixedAmount,
		FixedAmount:    req.FixedAmount,
		Source:         SourceManual,
	}
	_, err = s.mutate(ctx, planID, "add_participant", func(p *Plan) error {
		p.Participants = append(p.Participants, participant)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// UpdateParticipant edits a participant of the roster
func (s *Service) UpdateParticipant(ctx context.Context, planID, participantID string, req *UpdateParticipantRequest) (*Participant, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrEmptyParticipantName
	}
	if req.FixedAmount != nil {
		if err := validateFixed(*req.FixedAmount); err != nil {
			return nil, err
		}
	}
	var ref *role.Ref
	if req.Role != nil {
		resolved, err := s.resolveRole(*req.Role)
		if err != nil {
			return nil, err
		}
		ref = &resolved
	}

	var updated Participant
	_, err := s.mutate(ctx, planID, "update_participant", func(p *Plan) error {
		i := p.participantIndex(participantID)
		if i < 0 {
			return ErrParticipantNotFound
		}
		participant := &p.Participants[i]
		if req.Name != nil {
			participant.Name = strings.TrimSpace(*req.Name)
		}
		if ref != nil {
			participant.Role = *ref
		}
		if req.HasPaid != nil {
			participant.HasPaid = *req.HasPaid
		}
		if req.HasFixedAmount != nil {
			participant.HasFixedAmount = *req.HasFixedAmount
		}
		if req.FixedAmount != nil {
			participant.FixedAmount = *req.FixedAmount
		}
		updated = *participant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetPaid toggles a participant's paid flag
func (s *Service) SetPaid(ctx context.Context, planID, participantID string, paid bool) (*Participant, error) {
	return s.UpdateParticipant(ctx, planID, participantID, &UpdateParticipantRequest{HasPaid: &paid})
}

// RemoveParticipant deletes a participant from the roster
func (s *Service) RemoveParticipant(ctx context.Context, planID, participantID string) error {
	_, err := s.mutate(ctx, planID, "remove_participant", func(p *Plan) error {
		i := p.participantIndex(participantID)
		if i < 0 {
			return ErrParticipantNotFound
		}
		p.Participants = slices.Delete(p.Participants, i, i+1)
		if p.Confirmed != nil {
			p.Confirmed.ParticipantIDs = slices.DeleteFunc(p.Confirmed.ParticipantIDs, func(id string) bool {
				return id == participantID
			})
		}
		return nil
	})
	return err
}

// AddItem appends a breakdown item. An empty name gets the default label.
func (s *Service) AddItem(ctx context.Context, planID string, req *ItemRequest) (*breakdown.Item, error) {
	var added breakdown.Item
	_, err := s.mutate(ctx, planID, "add_item", func(p *Plan) error {
		items, item, err := p.Items.Add(s.itemLabel(req.Name), req.Amount)
		if err != nil {
			return err
		}
		p.Items = items
		added = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateItem edits a breakdown item
func (s *Service) UpdateItem(ctx context.Context, planID, itemID string, req *ItemRequest) (*breakdown.Item, error) {
	var updated breakdown.Item
	_, err := s.mutate(ctx, planID, "update_item", func(p *Plan) error {
		items, err := p.Items.Update(itemID, s.itemLabel(req.Name), req.Amount)
		if err != nil {
			return err
		}
		p.Items = items
		updated, _ = items.Find(itemID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveItems deletes the breakdown items at the given positions.
// Positions that do not exist are ignored.
func (s *Service) RemoveItems(ctx context.Context, planID string, indices []int) (*Plan, error) {
	return s.mutate(ctx, planID, "remove_items", func(p *Plan) error {
		p.Items = p.Items.RemoveAt(indices...)
		return nil
	})
}

// Confirm fixes the date, location and attendees of a plan
func (s *Service) Confirm(ctx context.Context, planID string, req *ConfirmRequest) (*Plan, error) {
	return s.mutate(ctx, planID, "confirm", func(p *Plan) error {
		ids := make([]string, 0, len(req.ParticipantIDs))
		for _, id := range req.ParticipantIDs {
			if p.participantIndex(id) < 0 {
				return fmt.Errorf("%w: %s", ErrUnknownAttendee, id)
			}
			if !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		p.Confirmed = &Confirmation{
			Date:           req.Date,
			Location:       strings.TrimSpace(req.Location),
			ParticipantIDs: ids,
		}
		p.Date = req.Date
		return nil
	})
}

// ImportResponses adds every respondent of the linked scheduling event that
// is not already in the roster. New participants start as staff.
func (s *Service) ImportResponses(ctx context.Context, planID string) ([]Participant, error) {
	if s.responses == nil {
		return nil, ErrResponsesUnavailable
	}
	current, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if current.ScheduleEventID == "" {
		return nil, ErrNoScheduleEvent
	}

	respondents, err := s.responses.Respondents(ctx, current.ScheduleEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}

	var added []Participant
	_, err = s.mutate(ctx, planID, "import_responses", func(p *Plan) error {
		added = nil
		for _, r := range respondents {
			imported := slices.ContainsFunc(p.Participants, func(x Participant) bool {
				return x.ResponseID != "" && x.ResponseID == r.ResponseID
			})
			if imported || strings.TrimSpace(r.Name) == "" {
				continue
			}
			participant := Participant{
				ID:         uuid.NewString(),
				Name:       strings.TrimSpace(r.Name),
				Role:       role.Standard(role.Staff),
				Source:     SourceWeb,
				ResponseID: r.ResponseID,
			}
			p.Participants = append(p.Participants, participant)
			added = append(added, participant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("plan_id", planID).Int("imported", len(added)).Msg("imported scheduling responses")
	return added, nil
}

// RestoreRoles writes the role snapshot stored with a plan back into the
// live role table
func (s *Service) RestoreRoles(ctx context.Context, planID string) (*Plan, error) {
	p, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.roles.Restore(ctx, p.Roles); err != nil {
		return nil, err
	}
	return p, nil
}

// Summary runs the allocation for a stored plan against the live role table
func (s *Service) Summary(ctx context.Context, planID string) (*Summary, error) {
	p, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	rows := make([]row, len(p.Participants))
	for i, participant := range p.Participants {
		ref := s.current(participant.Role)
		rows[i] = row{
			participant: participant,
			multiplier:  ref.Multiplier(s.roles),
			roleName:    ref.Name(s.roles),
		}
	}

	summary, err := s.summarize(ctx, p.Policy, p.EffectiveTotal(), rows)
	if err != nil {
		return nil, err
	}
	summary.PlanID = p.ID
	return summary, nil
}

// Calculate allocates a posted roster without storing anything
func (s *Service) Calculate(ctx context.Context, req *CalculateRequest) (*Summary, error) {
	items := breakdown.Items{}
	for _, it := range req.Items {
		var err error
		if items, _, err = items.Add(s.itemLabel(it.Name), it.Amount); err != nil {
			return nil, err
		}
	}

	rows := make([]row, len(req.Participants))
	for i, cp := range req.Participants {
		if err := validateFixed(cp.FixedAmount); err != nil {
			return nil, err
		}
		ref, err := s.resolveRole(cp.Role)
		if err != nil {
			return nil, err
		}
		id := cp.ID
		if id == "" {
			id = uuid.NewString()
		}

		r := row{
			participant: Participant{
				ID:             id,
				Name:           cp.Name,
				Role:           ref,
				HasPaid:        cp.HasPaid,
				HasFixedAmount: cp.HasFixedAmount,
				FixedAmount:    cp.FixedAmount,
			},
			multiplier: ref.Multiplier(s.roles),
			roleName:   ref.Name(s.roles),
		}
		if cp.Multiplier != nil {
			if err := s.roles.ValidateMultiplier(*cp.Multiplier); err != nil {
				return nil, err
			}
			r.multiplier = *cp.Multiplier
		}
		rows[i] = r
	}

	policy, err := s.policy(req.Policy)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, policy, breakdown.EffectiveTotal(req.TotalAmount, items), rows)
}

// row is a participant with its role already resolved
type row struct {
	participant Participant
	multiplier  float64
	roleName    string
}

func (s *Service) summarize(ctx context.Context, policy allocation.Policy, total int64, rows []row) (*Summary, error) {
	strategy, err := s.factory.Create(policy)
	if err != nil {
		return nil, err
	}

	shares := make([]allocation.Share, len(rows))
	for i, r := range rows {
		shares[i] = allocation.Share{
			ID:          r.participant.ID,
			Multiplier:  r.multiplier,
			Fixed:       r.participant.HasFixedAmount,
			FixedAmount: r.participant.FixedAmount,
		}
	}
	result := strategy.Calculate(total, shares)
	s.observer.AllocationComputed(string(result.Policy), len(rows), result.Gap)

	if result.BaseAmount.IsZero() && len(rows) > 0 && total != 0 {
		log.Ctx(ctx).Debug().Str("policy", string(policy)).Int64("total", total).Msg("allocation degraded to a zero base amount")
	}

	summary := &Summary{
		Policy:         result.Policy,
		EffectiveTotal: result.EffectiveTotal,
		FormattedTotal: s.formatter.Format(result.EffectiveTotal),
		BaseAmount:     result.BaseAmount,
		Payments:       make([]PaymentLine, len(rows)),
		Allocated:      result.Allocated,
		Gap:            result.Gap,
	}
	for i, payment := range result.Payments {
		r := rows[i]
		summary.Payments[i] = PaymentLine{
			ParticipantID: payment.ID,
			Name:          r.participant.Name,
			RoleName:      r.roleName,
			Multiplier:    r.multiplier,
			Amount:        payment.Amount,
			Formatted:     s.formatter.Format(payment.Amount),
			HasPaid:       r.participant.HasPaid,
			Fixed:         payment.Fixed,
		}
		if r.participant.HasPaid {
			summary.Collected += payment.Amount
			summary.PaidCount++
		}
	}
	summary.Outstanding = summary.Allocated - summary.Collected
	return summary, nil
}

// mutate applies fn to a stored plan, refreshes its role snapshot and
// timestamp, and pushes the result to the mirror
func (s *Service) mutate(ctx context.Context, id, operation string, fn func(*Plan) error) (*Plan, error) {
	p, err := s.repo.Update(ctx, id, func(p *Plan) error {
		if err := fn(p); err != nil {
			return err
		}
		p.Roles = s.roles.Snapshot()
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlanNotFound
	}

	s.saved(ctx, operation, p)
	return p, nil
}

func (s *Service) saved(ctx context.Context, operation string, p *Plan) {
	s.observer.PlanSaved(operation)
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Push(ctx, p); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("plan_id", p.ID).Str("operation", operation).Msg("failed to mirror plan")
	}
}

func (s *Service) policy(raw string) (allocation.Policy, error) {
	if raw == "" {
		return s.opts.DefaultPolicy, nil
	}
	strategy, err := s.factory.CreateFromString(raw)
	if err != nil {
		return "", err
	}
	return strategy.Policy(), nil
}

func (s *Service) resolveRole(req RoleRequest) (role.Ref, error) {
	switch req.Kind {
	case role.KindCustom:
		c, err := s.roles.CustomRole(req.CustomID)
		if err != nil {
			return role.Ref{}, err
		}
		return role.Custom(c), nil
	case role.KindStandard, "":
		if req.Role == "" {
			return role.Standard(role.Staff), nil
		}
		r, err := role.Parse(string(req.Role))
		if err != nil {
			return role.Ref{}, err
		}
		return role.Standard(r), nil
	default:
		return role.Ref{}, role.ErrInvalidRef
	}
}

// current swaps an embedded custom role for its live definition. A custom
// role deleted since it was assigned keeps the embedded copy.
func (s *Service) current(ref role.Ref) role.Ref {
	if ref.Kind != role.KindCustom || ref.Custom == nil {
		return ref
	}
	if c, err := s.roles.CustomRole(ref.Custom.ID); err == nil {
		return role.Custom(c)
	}
	return ref
}

func validateFixed(amount int64) error {
	if amount < 0 {
		return ErrNegativeFixedAmount
	}
	if amount > breakdown.MaxAmount {
		return breakdown.ErrAmountTooLarge
	}
	return nil
}

func (s *Service) itemLabel(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return s.opts.DefaultItemLabel
	}
	return name
}
