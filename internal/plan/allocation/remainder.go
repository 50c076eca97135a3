package allocation

import "github.com/shopspring/decimal"

// =============================================================================
// REMAINDER STRATEGY
// Fixed amounts come off the top; the rest is split by multiplier among the
// participants without a fixed amount
// =============================================================================

// RemainderStrategy implements the Strategy interface for the remainder policy
type RemainderStrategy struct{}

// Policy returns the policy identifier
func (s *RemainderStrategy) Policy() Policy {
	return PolicyRemainder
}

// Calculate subtracts all fixed amounts from the effective total and divides
// what is left. When the fixed amounts exceed the total nobody else pays.
func (s *RemainderStrategy) Calculate(effectiveTotal int64, shares []Share) *Result {
	pool := effectiveTotal
	denominator := decimal.Zero
	for _, sh := range shares {
		if sh.Fixed {
			pool -= sh.FixedAmount
			continue
		}
		denominator = denominator.Add(weight(sh.Multiplier))
	}
	if pool < 0 {
		pool = 0
	}

	return distribute(PolicyRemainder, effectiveTotal, decimal.NewFromInt(pool), denominator, shares)
}
