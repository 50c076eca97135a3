// Package breakdown keeps the itemized additions to a plan's bill, such as a
// second venue or a taxi, and computes the effective total that gets split.
package breakdown

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxAmount bounds every amount entered or derived. Totals beyond it are
// clamped, single amounts beyond it are rejected.
const MaxAmount int64 = 1_000_000_000_000_000

var (
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrAmountTooLarge = errors.New("amount is too large")
	ErrItemNotFound   = errors.New("amount item not found")
)

// ValidateAmount checks a single entered amount
func ValidateAmount(amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// Clamp limits v to ±MaxAmount
func Clamp(v int64) int64 {
	return max(-MaxAmount, min(v, MaxAmount))
}

// Item is a named addition to the base total
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// Items is an ordered list of amount items. Methods never modify the
// receiver; they return the updated list.
type Items []Item

// Add appends a new item. Substituting a label for an empty name is up to
// the caller.
func (l Items) Add(name string, amount int64) (Items, Item, error) {
	if err := ValidateAmount(amount); err != nil {
		return l, Item{}, err
	}

	item := Item{ID: uuid.NewString(), Name: name, Amount: amount}
	out := make(Items, 0, len(l)+1)
	out = append(out, l...)
	return append(out, item), item, nil
}

// Update replaces name and amount of the item with the given id
func (l Items) Update(id, name string, amount int64) (Items, error) {
	if err := ValidateAmount(amount); err != nil {
		return l, err
	}

	for i, item := range l {
		if item.ID != id {
			continue
		}
		out := make(Items, len(l))
		copy(out, l)
		out[i].Name = name
		out[i].Amount = amount
		return out, nil
	}
	return l, ErrItemNotFound
}

// RemoveAt drops the items at the given positions. Positions out of range
// or given twice are ignored.
func (l Items) RemoveAt(indices ...int) Items {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(l) {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return l
	}

	out := make(Items, 0, len(l)-len(drop))
	for i, item := range l {
		if !drop[i] {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the item with the given id
func (l Items) Find(id string) (Item, bool) {
	for _, item := range l {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Sum adds up all item amounts, clamped to MaxAmount
func (l Items) Sum() int64 {
	var sum int64
	for _, item := range l {
		sum = Clamp(sum + Clamp(item.Amount))
	}
	return sum
}

// ParseTotal reads the free-text total amount field. Surrounding spaces,
// grouping commas and a leading yen sign are accepted; anything else that
// does not parse as an integer counts as zero. The result is clamped to
// ±MaxAmount.
func ParseTotal(field string) int64 {
	s := strings.TrimSpace(field)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return Clamp(n)
}

// EffectiveTotal is the figure divided among participants: the base total
// plus every itemized addition, clamped to ±MaxAmount.
func EffectiveTotal(totalField string, items Items) int64 {
	return Clamp(ParseTotal(totalField) + items.Sum())
}
