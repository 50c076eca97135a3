package allocation

import "github.com/shopspring/decimal"

// =============================================================================
// INCLUSIVE STRATEGY
// Every participant's multiplier counts towards the denominator, including
// participants who pay a fixed amount
// =============================================================================

// InclusiveStrategy implements the Strategy interface for the inclusive policy
type InclusiveStrategy struct{}

// Policy returns the policy identifier
func (s *InclusiveStrategy) Policy() Policy {
	return PolicyInclusive
}

// Calculate divides the whole effective total by the multiplier sum of the
// whole roster. Fixed participants still pay only their fixed amount.
func (s *InclusiveStrategy) Calculate(effectiveTotal int64, shares []Share) *Result {
	denominator := decimal.Zero
	for _, sh := range shares {
		denominator = denominator.Add(weight(sh.Multiplier))
	}

	return distribute(PolicyInclusive, effectiveTotal, decimal.NewFromInt(effectiveTotal), denominator, shares)
}
