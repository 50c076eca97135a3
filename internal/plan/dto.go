package plan

import (
	"time"

	"github.com/fkhayef/warikan/internal/plan/allocation"
	"github.com/fkhayef/warikan/internal/plan/breakdown"
	"github.com/fkhayef/warikan/internal/role"
)

// CreatePlanRequest represents the request to create a new plan
type CreatePlanRequest struct {
	Name            string    `json:"name"`
	Date            time.Time `json:"date"`
	TotalAmount     string    `json:"total_amount"`
	Policy          string    `json:"policy,omitempty"`
	ScheduleEventID string    `json:"schedule_event_id,omitempty"`
}

// UpdatePlanRequest represents the request to update a plan.
// Absent fields are left untouched.
type UpdatePlanRequest struct {
	Name            *string    `json:"name,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	TotalAmount     *string    `json:"total_amount,omitempty"`
	Policy          *string    `json:"policy,omitempty"`
	ScheduleEventID *string    `json:"schedule_event_id,omitempty"`
}

// RoleRequest selects a participant's role. Kind "custom" refers to a
// custom role by id; anything else must name a standard role. An empty
// request selects staff.
type RoleRequest struct {
	Kind     role.RefKind `json:"kind,omitempty"`
	Role     role.Role    `json:"role,omitempty"`
	CustomID string       `json:"custom_id,omitempty"`
}

// ParticipantRequest represents the request to add a participant
type ParticipantRequest struct {
	Name           string      `json:"name"`
	Role           RoleRequest `json:"role"`
	HasPaid        bool        `json:"has_paid"`
	HasFixedAmount bool        `json:"has_fixed_amount"`
	FixedAmount    int64       `json:"fixed_amount"`
}

// UpdateParticipantRequest represents the request to edit a participant
type UpdateParticipantRequest struct {
	Name           *string      `json:"name,omitempty"`
	Role           *RoleRequest `json:"role,omitempty"`
	HasPaid        *bool        `json:"has_paid,omitempty"`
	HasFixedAmount *bool        `json:"has_fixed_amount,omitempty"`
	FixedAmount    *int64       `json:"fixed_amount,omitempty"`
}

// SetPaidRequest represents the request to toggle a participant's paid flag
type SetPaidRequest struct {
	Paid bool `json:"paid"`
}

// ItemRequest represents the request to add or edit a breakdown item
type ItemRequest struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// RemoveItemsRequest lists breakdown item positions to delete
type RemoveItemsRequest struct {
	Indices []int `json:"indices"`
}

// ConfirmRequest represents the request to confirm a plan
type ConfirmRequest struct {
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	ParticipantIDs []string  `json:"participant_ids"`
}

// CalculateParticipant is one roster row of a stateless calculation.
// Multiplier, when set, wins over Role.
type CalculateParticipant struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Role           RoleRequest `json:"role"`
	Multiplier     *float64    `json:"multiplier,omitempty"`
	HasPaid        bool        `json:"has_paid"`
	HasFixedAmount bool        `json:"has_fixed_amount"`
	FixedAmount    int64       `json:"fixed_amount"`
}

// CalculateRequest represents a stateless allocation request
type CalculateRequest struct {
	TotalAmount  string                 `json:"total_amount"`
	Items        []ItemRequest          `json:"items"`
	Participants []CalculateParticipant `json:"participants"`
	Policy       string                 `json:"policy,omitempty"`
}

// ParticipantResponse represents a participant with its role resolved
type ParticipantResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Role           role.Ref `json:"role"`
	RoleName       string   `json:"role_name"`
	Multiplier     float64  `json:"multiplier"`
	HasPaid        bool     `json:"has_paid"`
	HasFixedAmount bool     `json:"has_fixed_amount"`
	FixedAmount    int64    `json:"fixed_amount"`
	Source         Source   `json:"source"`
}

// PlanResponse represents a plan in responses
type PlanResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Date            string                 `json:"date"`
	TotalAmount     string                 `json:"total_amount"`
	EffectiveTotal  int64                  `json:"effective_total"`
	Items           breakdown.Items        `json:"items"`
	Participants    []*ParticipantResponse `json:"participants"`
	Policy          allocation.Policy      `json:"policy"`
	ScheduleEventID string                 `json:"schedule_event_id,omitempty"`
	Confirmed       *Confirmation          `json:"confirmed,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

// ToResponse converts a Participant to a ParticipantResponse DTO
func (p Participant) ToResponse(l role.Lookup) *ParticipantResponse {
	return &ParticipantResponse{
		ID:             p.ID,
		Name:           p.Name,
		Role:           p.Role,
		RoleName:       p.Role.Name(l),
		Multiplier:     p.Role.Multiplier(l),
		HasPaid:        p.HasPaid,
		HasFixedAmount: p.HasFixedAmount,
		FixedAmount:    p.FixedAmount,
		Source:         p.Source,
	}
}

// ToResponse converts a Plan to a PlanResponse DTO
func (p *Plan) ToResponse(l role.Lookup) *PlanResponse {
	participants := make([]*ParticipantResponse, len(p.Participants))
	for i, participant := range p.Participants {
		participants[i] = participant.ToResponse(l)
	}
	items := p.Items
	if items == nil {
		items = breakdown.Items{}
	}

	return &PlanResponse{
		ID:              p.ID,
		Name:            p.Name,
		Date:            p.Date.Format("2006-01-02"),
		TotalAmount:     p.TotalAmount,
		EffectiveTotal:  p.EffectiveTotal(),
		Items:           items,
		Participants:    participants,
		Policy:          p.Policy,
		ScheduleEventID: p.ScheduleEventID,
		Confirmed:       p.Confirmed,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
