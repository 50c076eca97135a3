// Package allocation computes how much each participant of a drinking party
// pays. It is pure computation: no I/O, no shared state, safe to call from
// any goroutine.
//
// Each participant contributes a multiplier (usually taken from their role).
// The per-unit base amount is
//
//	base = pool / Σ multiplier
//
// and a participant without a fixed override pays round(base × multiplier),
// computed as round(pool × multiplier / Σ multiplier) so that exact halves
// are not lost to the precision of base.
// Participants with a fixed override pay exactly their fixed amount. Which
// participants enter pool and denominator is decided by the Strategy.
package allocation

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Policy identifies an allocation strategy
type Policy string

const (
	// PolicyInclusive keeps fixed-amount participants in the multiplier sum.
	// Fixed amounts are paid on top of the normal split, so the payments do
	// not reconcile with the total when anyone has a fixed override.
	PolicyInclusive Policy = "INCLUSIVE"

	// PolicyRemainder subtracts fixed amounts from the total first and
	// splits the remainder across the participants without an override.
	PolicyRemainder Policy = "REMAINDER"
)

// DefaultPolicy is used when a plan does not name one
const DefaultPolicy = PolicyInclusive

// Share is one participant as seen by the engine
type Share struct {
	ID          string  `json:"id"`
	Multiplier  float64 `json:"multiplier"`
	Fixed       bool    `json:"fixed"`
	FixedAmount int64   `json:"fixed_amount"`
}

// Payment is the computed amount for one participant
type Payment struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Fixed  bool   `json:"fixed"`
}

// Result holds the outcome of one allocation run.
// Gap is EffectiveTotal minus Allocated; it is reported, never corrected.
type Result struct {
	Policy         Policy          `json:"policy"`
	EffectiveTotal int64           `json:"effective_total"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	Payments       []Payment       `json:"payments"`
	Allocated      int64           `json:"allocated"`
	Gap            int64           `json:"gap"`
}

// ByID returns the payments keyed by participant id
func (r *Result) ByID() map[string]int64 {
	byID := make(map[string]int64, len(r.Payments))
	for _, p := range r.Payments {
		byID[p.ID] = p.Amount
	}
	return byID
}

// Strategy is the interface every allocation policy implements
type Strategy interface {
	// Calculate computes the payment of every share. It never fails:
	// degenerate inputs produce a zero base amount.
	Calculate(effectiveTotal int64, shares []Share) *Result

	// Policy returns the identifier of this strategy
	Policy() Policy
}

// Factory creates allocation strategies based on the requested policy
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the strategy implementing the given policy
func (f *Factory) Create(policy Policy) (Strategy, error) {
	switch policy {
	case PolicyInclusive:
		return &InclusiveStrategy{}, nil
	case PolicyRemainder:
		return &RemainderStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}
}

// CreateFromString creates a strategy from a string policy.
// An empty string selects DefaultPolicy.
func (f *Factory) CreateFromString(policy string) (Strategy, error) {
	if policy == "" {
		return f.Create(DefaultPolicy)
	}
	return f.Create(Policy(policy))
}

var ErrUnknownPolicy = errors.New("unknown allocation policy")

// weight converts a multiplier to a decimal. Non-finite and non-positive
// multipliers weigh nothing.
func weight(multiplier float64) decimal.Decimal {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(multiplier)
}

// baseAmount divides pool by denominator, or returns zero when there is
// nothing to divide by.
func baseAmount(pool, denominator decimal.Decimal) decimal.Decimal {
	if denominator.Sign() <= 0 {
		return decimal.Zero
	}
	return pool.Div(denominator)
}

// distribute splits pool across the shares without a fixed amount in
// proportion to their weight and fills in the totals
func distribute(policy Policy, effectiveTotal int64, pool, denominator decimal.Decimal, shares []Share) *Result {
	result := &Result{
		Policy:         policy,
		EffectiveTotal: effectiveTotal,
		BaseAmount:     baseAmount(pool, denominator),
		Payments:       make([]Payment, len(shares)),
	}

	for i, s := range shares {
		amount := s.FixedAmount
		if !s.Fixed {
			amount = shareOf(pool, denominator, weight(s.Multiplier))
		}
		result.Payments[i] = Payment{ID: s.ID, Amount: amount, Fixed: s.Fixed}
		result.Allocated += amount
	}

	result.Gap = effectiveTotal - result.Allocated
	return result
}

// shareOf returns pool × w / denominator rounded half away from zero.
// No residual correction is applied.
func shareOf(pool, denominator, w decimal.Decimal) int64 {
	if denominator.Sign() <= 0 || w.Sign() <= 0 {
		return 0
	}
	return pool.Mul(w).Div(denominator).Round(0).IntPart()
}
