package allocation

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformShares(n int) []Share {
	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{ID: fmt.Sprintf("p%d", i), Multiplier: 1.0}
	}
	return shares
}

func TestInclusive_DirectorAndStaff(t *testing.T) {
	shares := []Share{
		{ID: "director", Multiplier: 2.0},
		{ID: "staff-1", Multiplier: 1.0},
		{ID: "staff-2", Multiplier: 1.0},
	}

	result := (&InclusiveStrategy{}).Calculate(10000, shares)

	assert.Equal(t, "2500", result.BaseAmount.String())
	assert.Equal(t, map[string]int64{"director": 5000, "staff-1": 2500, "staff-2": 2500}, result.ByID())
	assert.Equal(t, int64(10000), result.Allocated)
	assert.Equal(t, int64(0), result.Gap)
}

func TestInclusive_FixedParticipantStaysInDenominator(t *testing.T) {
	shares := []Share{
		{ID: "a", Multiplier: 1.0},
		{ID: "b", Multiplier: 1.0},
		{ID: "c", Multiplier: 1.0, Fixed: true, FixedAmount: 1000},
	}

	result := (&InclusiveStrategy{}).Calculate(10000, shares)

	assert.Equal(t, map[string]int64{"a": 3333, "b": 3333, "c": 1000}, result.ByID())
	assert.Equal(t, int64(7666), result.Allocated)
	assert.Equal(t, int64(2334), result.Gap)
	assert.True(t, result.Payments[2].Fixed)
}

func TestRemainder_FixedParticipantComesOffTheTop(t *testing.T) {
	shares := []Share{
		{ID: "a", Multiplier: 1.0},
		{ID: "b", Multiplier: 1.0},
		{ID: "c", Multiplier: 1.0, Fixed: true, FixedAmount: 1000},
	}

	result := (&RemainderStrategy{}).Calculate(10000, shares)

	assert.Equal(t, "4500", result.BaseAmount.String())
	assert.Equal(t, map[string]int64{"a": 4500, "b": 4500, "c": 1000}, result.ByID())
	assert.Equal(t, int64(0), result.Gap)
}

func TestRemainder_FixedAmountsExceedTotal(t *testing.T) {
	shares := []Share{
		{ID: "a", Multiplier: 1.0},
		{ID: "b", Multiplier: 1.0, Fixed: true, FixedAmount: 8000},
	}

	result := (&RemainderStrategy{}).Calculate(5000, shares)

	assert.True(t, result.BaseAmount.IsZero())
	assert.Equal(t, map[string]int64{"a": 0, "b": 8000}, result.ByID())
	assert.Equal(t, int64(-3000), result.Gap)
}

func TestStrategies_UniformMultiplierMatchesEqualSplit(t *testing.T) {
	for _, policy := range []Policy{PolicyInclusive, PolicyRemainder} {
		strategy, err := NewFactory().Create(policy)
		require.NoError(t, err)

		for _, total := range []int64{0, 1, 999, 10000, 12345, 100001} {
			for n := 1; n <= 9; n++ {
				result := strategy.Calculate(total, uniformShares(n))
				want := int64(math.Round(float64(total) / float64(n)))
				for _, p := range result.Payments {
					assert.Equal(t, want, p.Amount, "policy=%s total=%d n=%d", policy, total, n)
				}
			}
		}
	}
}

func TestStrategies_EmptyRoster(t *testing.T) {
	for _, strategy := range []Strategy{&InclusiveStrategy{}, &RemainderStrategy{}} {
		result := strategy.Calculate(10000, nil)

		assert.True(t, result.BaseAmount.IsZero())
		assert.Empty(t, result.Payments)
		assert.Equal(t, int64(0), result.Allocated)
		assert.Equal(t, int64(10000), result.Gap)
	}
}

func TestStrategies_AllFixedPayExactly(t *testing.T) {
	shares := []Share{
		{ID: "a", Multiplier: 2.0, Fixed: true, FixedAmount: 1200},
		{ID: "b", Multiplier: 1.0, Fixed: true, FixedAmount: 0},
		{ID: "c", Multiplier: 0.5, Fixed: true, FixedAmount: 777},
	}

	for _, strategy := range []Strategy{&InclusiveStrategy{}, &RemainderStrategy{}} {
		for _, total := range []int64{0, 500, 10000, 9999999} {
			result := strategy.Calculate(total, shares)
			assert.Equal(t, map[string]int64{"a": 1200, "b": 0, "c": 777}, result.ByID())
		}
	}
}

func TestStrategies_DegenerateMultipliers(t *testing.T) {
	shares := []Share{
		{ID: "nan", Multiplier: math.NaN()},
		{ID: "inf", Multiplier: math.Inf(1)},
		{ID: "zero", Multiplier: 0},
		{ID: "negative", Multiplier: -1.5},
	}

	result := (&InclusiveStrategy{}).Calculate(10000, shares)

	assert.True(t, result.BaseAmount.IsZero())
	for _, p := range result.Payments {
		assert.Equal(t, int64(0), p.Amount, p.ID)
	}

	// A valid participant carries the whole bill
	shares = append(shares, Share{ID: "ok", Multiplier: 1.0})
	result = (&InclusiveStrategy{}).Calculate(10000, shares)
	assert.Equal(t, int64(10000), result.ByID()["ok"])
	assert.Equal(t, int64(0), result.ByID()["nan"])
}

func TestStrategies_RoundingBound(t *testing.T) {
	multipliers := []float64{2.0, 1.5, 1.0, 0.5, 1.2, 0.8, 3.0}

	for total := int64(1); total < 50000; total += 997 {
		for n := 1; n <= len(multipliers); n++ {
			shares := make([]Share, n)
			for i := 0; i < n; i++ {
				shares[i] = Share{ID: fmt.Sprintf("p%d", i), Multiplier: multipliers[i]}
			}

			result := (&InclusiveStrategy{}).Calculate(total, shares)
			gap := result.Gap
			if gap < 0 {
				gap = -gap
			}
			assert.LessOrEqual(t, gap, int64(n), "total=%d n=%d", total, n)
		}
	}
}

func TestStrategies_RoundsHalfAwayFromZero(t *testing.T) {
	result := (&InclusiveStrategy{}).Calculate(10001, uniformShares(2))

	assert.Equal(t, int64(5001), result.Payments[0].Amount)
	assert.Equal(t, int64(5001), result.Payments[1].Amount)
	assert.Equal(t, int64(-1), result.Gap)
}

func TestStrategies_ExactHalfWithNonTerminatingBase(t *testing.T) {
	managers := []Share{
		{ID: "a", Multiplier: 1.5},
		{ID: "b", Multiplier: 1.5},
	}

	tests := []struct {
		total int64
		want  int64
	}{
		{1003, 502}, // 1003 × 1.5 / 3 = 501.5
		{1, 1},      // 1 × 1.5 / 3 = 0.5
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.total), func(t *testing.T) {
			result := (&InclusiveStrategy{}).Calculate(tt.total, managers)
			assert.Equal(t, map[string]int64{"a": tt.want, "b": tt.want}, result.ByID())
			assert.Equal(t, tt.total-2*tt.want, result.Gap)
		})
	}

	// Same tie through the remainder pool
	shares := append([]Share{{ID: "guest", Fixed: true, FixedAmount: 1000}}, managers...)
	result := (&RemainderStrategy{}).Calculate(2003, shares)
	assert.Equal(t, int64(502), result.ByID()["a"])
	assert.Equal(t, int64(502), result.ByID()["b"])
}

func TestStrategies_Idempotent(t *testing.T) {
	shares := []Share{
		{ID: "a", Multiplier: 1.5},
		{ID: "b", Multiplier: 0.5},
		{ID: "c", Multiplier: 1.0, Fixed: true, FixedAmount: 2000},
	}
	snapshot := append([]Share(nil), shares...)

	for _, strategy := range []Strategy{&InclusiveStrategy{}, &RemainderStrategy{}} {
		first := strategy.Calculate(12345, shares)
		second := strategy.Calculate(12345, shares)

		assert.Equal(t, first.ByID(), second.ByID())
		assert.True(t, first.BaseAmount.Equal(second.BaseAmount))
		assert.Equal(t, snapshot, shares)
	}
}

func TestStrategies_NegativeTotalIsNotRejected(t *testing.T) {
	result := (&InclusiveStrategy{}).Calculate(-3000, uniformShares(3))

	for _, p := range result.Payments {
		assert.Equal(t, int64(-1000), p.Amount)
	}
}

func TestFactory(t *testing.T) {
	f := NewFactory()

	s, err := f.CreateFromString("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy, s.Policy())

	s, err = f.CreateFromString("REMAINDER")
	require.NoError(t, err)
	assert.Equal(t, PolicyRemainder, s.Policy())

	_, err = f.CreateFromString("EVEN")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
