// Package plan manages drinking-party plans: the participant roster, the
// bill and its breakdown items, and the per-participant payment summary.
package plan

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/warikan/internal/plan/allocation"
	"github.com/fkhayef/warikan/internal/plan/breakdown"
	"github.com/fkhayef/warikan/internal/role"
)

// Source records how a participant entered the roster
type Source string

const (
	SourceManual Source = "manual"
	SourceWeb    Source = "web"
)

// Participant is a person in a plan's roster. Two participants are the same
// person when their IDs match, whatever the other fields say.
type Participant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Role           role.Ref `json:"role"`
	HasPaid        bool     `json:"has_paid"`
	HasFixedAmount bool     `json:"has_fixed_amount"`
	FixedAmount    int64    `json:"fixed_amount"`
	Source         Source   `json:"source"`
	ResponseID     string   `json:"response_id,omitempty"`
}

// SameAs reports whether p and o identify the same participant
func (p Participant) SameAs(o Participant) bool {
	return p.ID == o.ID
}

// Confirmation is the date, place and attendee subset fixed once the
// scheduling phase is over
type Confirmation struct {
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	ParticipantIDs []string  `json:"participant_ids"`
}

// Plan is the aggregate root. It is persisted as a whole.
type Plan struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Date            time.Time         `json:"date"`
	Participants    []Participant     `json:"participants"`
	TotalAmount     string            `json:"total_amount"`
	Items           breakdown.Items   `json:"items"`
	Roles           role.Snapshot     `json:"roles"`
	Policy          allocation.Policy `json:"policy"`
	ScheduleEventID string            `json:"schedule_event_id,omitempty"`
	Confirmed       *Confirmation     `json:"confirmed,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// EffectiveTotal is the total field plus every breakdown item
func (p *Plan) EffectiveTotal() int64 {
	return breakdown.EffectiveTotal(p.TotalAmount, p.Items)
}

func (p *Plan) participantIndex(id string) int {
	return slices.IndexFunc(p.Participants, func(x Participant) bool { return x.ID == id })
}

// Respondent is one answer to the plan's scheduling event, as delivered
// by a ResponseSource
type Respondent struct {
	ResponseID string
	Name       string
}

// PaymentLine is one participant's row of a Summary
type PaymentLine struct {
	ParticipantID string  `json:"participant_id"`
	Name          string  `json:"name"`
	RoleName      string  `json:"role_name"`
	Multiplier    float64 `json:"multiplier"`
	Amount        int64   `json:"amount"`
	Formatted     string  `json:"formatted"`
	HasPaid       bool    `json:"has_paid"`
	Fixed         bool    `json:"fixed"`
}

// Summary is the allocation outcome for a roster plus collection status
type Summary struct {
	PlanID         string            `json:"plan_id,omitempty"`
	Policy         allocation.Policy `json:"policy"`
	EffectiveTotal int64             `json:"effective_total"`
	FormattedTotal string            `json:"formatted_total"`
	BaseAmount     decimal.Decimal   `json:"base_amount"`
	Payments       []PaymentLine     `json:"payments"`
	Allocated      int64             `json:"allocated"`
	Gap            int64             `json:"gap"`
	Collected      int64             `json:"collected"`
	Outstanding    int64             `json:"outstanding"`
	PaidCount      int               `json:"paid_count"`
}
