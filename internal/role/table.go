package role

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Table holds the live role configuration: display name and multiplier
// overrides for the standard roles plus the custom role list. A Table is
// safe for concurrent use; every mutation is persisted before it becomes
// visible.
type Table struct {
	repo          *Repository
	maxMultiplier float64

	mu          sync.RWMutex
	multipliers map[Role]float64
	names       map[Role]string
	custom      []CustomRole
}

// NewTable loads the stored overrides into a new table.
// maxMultiplier bounds user supplied multipliers; 0 disables the bound.
func NewTable(ctx context.Context, repo *Repository, maxMultiplier float64) (*Table, error) {
	o, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load role table: %w", err)
	}
	return &Table{
		repo:          repo,
		maxMultiplier: maxMultiplier,
		multipliers:   o.Multipliers,
		names:         o.Names,
		custom:        o.Custom,
	}, nil
}

// ValidateMultiplier checks v against the engine requirement and the
// configured upper bound
func (t *Table) ValidateMultiplier(v float64) error {
	return ValidateMultiplier(v, t.maxMultiplier)
}

// Multiplier returns the override for r, or its default
func (t *Table) Multiplier(r Role) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.multipliers[r]; ok {
		return v
	}
	return r.DefaultMultiplier()
}

// Name returns the display name override for r, or its default
func (t *Table) Name(r Role) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.names[r]; ok {
		return v
	}
	return r.DefaultName()
}

// Entries lists every standard role with its current values
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]Entry, 0, len(All))
	for _, r := range All {
		entries = append(entries, t.entry(r))
	}
	return entries
}

// Entry returns the current values of one standard role
func (t *Table) Entry(r Role) (Entry, error) {
	if !r.Valid() {
		return Entry{}, ErrUnknownRole
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entry(r), nil
}

func (t *Table) entry(r Role) Entry {
	e := Entry{
		Role:              r,
		Name:              r.DefaultName(),
		Multiplier:        r.DefaultMultiplier(),
		DefaultName:       r.DefaultName(),
		DefaultMultiplier: r.DefaultMultiplier(),
	}
	if v, ok := t.multipliers[r]; ok {
		e.Multiplier = v
		e.Overridden = true
	}
	if v, ok := t.names[r]; ok {
		e.Name = v
		e.Overridden = true
	}
	return e
}

// SetMultiplier overrides the multiplier of r
func (t *Table) SetMultiplier(ctx context.Context, r Role, v float64) error {
	if !r.Valid() {
		return ErrUnknownRole
	}
	if err := ValidateMultiplier(v, t.maxMultiplier); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	multipliers := maps.Clone(t.multipliers)
	multipliers[r] = v
	if err := t.repo.SaveTables(ctx, multipliers, t.names); err != nil {
		return fmt.Errorf("failed to save role multipliers: %w", err)
	}
	t.multipliers = multipliers

	log.Ctx(ctx).Debug().Str("role", string(r)).Float64("multiplier", v).Msg("role multiplier updated")
	return nil
}

// SetName overrides the display name of r
func (t *Table) SetName(ctx context.Context, r Role, name string) error {
	if !r.Valid() {
		return ErrUnknownRole
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	names := maps.Clone(t.names)
	names[r] = name
	if err := t.repo.SaveTables(ctx, t.multipliers, names); err != nil {
		return fmt.Errorf("failed to save role names: %w", err)
	}
	t.names = names
	return nil
}

// Reset drops both overrides of r
func (t *Table) Reset(ctx context.Context, r Role) error {
	if !r.Valid() {
		return ErrUnknownRole
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	multipliers := maps.Clone(t.multipliers)
	names := maps.Clone(t.names)
	delete(multipliers, r)
	delete(names, r)
	if err := t.repo.SaveTables(ctx, multipliers, names); err != nil {
		return fmt.Errorf("failed to reset role: %w", err)
	}
	t.multipliers = multipliers
	t.names = names
	return nil
}

// Snapshot copies the current overrides out of the table
func (t *Table) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Snapshot{
		Multipliers: maps.Clone(t.multipliers),
		Names:       maps.Clone(t.names),
	}
}

// Restore replaces the overrides with the content of s. Entries for unknown
// roles and invalid multipliers are skipped.
func (t *Table) Restore(ctx context.Context, s Snapshot) error {
	multipliers := make(map[Role]float64, len(s.Multipliers))
	for r, v := range s.Multipliers {
		if r.Valid() && ValidateMultiplier(v, 0) == nil {
			multipliers[r] = v
		}
	}
	names := make(map[Role]string, len(s.Names))
	for r, v := range s.Names {
		if r.Valid() && strings.TrimSpace(v) != "" {
			names[r] = v
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.SaveTables(ctx, multipliers, names); err != nil {
		return fmt.Errorf("failed to restore role table: %w", err)
	}
	t.multipliers = multipliers
	t.names = names

	log.Ctx(ctx).Info().Int("multipliers", len(multipliers)).Int("names", len(names)).Msg("role table restored")
	return nil
}

// ListCustom returns a copy of the custom roles in creation order
func (t *Table) ListCustom() []CustomRole {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.custom)
}

// CustomRole looks up a custom role by ID
func (t *Table) CustomRole(id string) (CustomRole, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.indexCustom(id)
	if i < 0 {
		return CustomRole{}, ErrCustomRoleNotFound
	}
	return t.custom[i], nil
}

// CreateCustom adds a new custom role
func (t *Table) CreateCustom(ctx context.Context, name string, multiplier float64) (CustomRole, error) {
	c := CustomRole{ID: uuid.NewString(), Name: strings.TrimSpace(name), Multiplier: multiplier}
	if err := t.validateCustom(c); err != nil {
		return CustomRole{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	custom := append(slices.Clone(t.custom), c)
	if err := t.repo.SaveCustom(ctx, custom); err != nil {
		return CustomRole{}, fmt.Errorf("failed to save custom roles: %w", err)
	}
	t.custom = custom
	return c, nil
}

// UpdateCustom replaces the name and multiplier of an existing custom role
func (t *Table) UpdateCustom(ctx context.Context, id, name string, multiplier float64) (CustomRole, error) {
	c := CustomRole{ID: id, Name: strings.TrimSpace(name), Multiplier: multiplier}
	if err := t.validateCustom(c); err != nil {
		return CustomRole{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexCustom(id)
	if i < 0 {
		return CustomRole{}, ErrCustomRoleNotFound
	}
	custom := slices.Clone(t.custom)
	custom[i] = c
	if err := t.repo.SaveCustom(ctx, custom); err != nil {
		return CustomRole{}, fmt.Errorf("failed to save custom roles: %w", err)
	}
	t.custom = custom
	return c, nil
}

// DeleteCustom removes a custom role. Participants already holding it keep
// their embedded copy.
func (t *Table) DeleteCustom(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexCustom(id)
	if i < 0 {
		return ErrCustomRoleNotFound
	}
	custom := slices.Delete(slices.Clone(t.custom), i, i+1)
	if err := t.repo.SaveCustom(ctx, custom); err != nil {
		return fmt.Errorf("failed to save custom roles: %w", err)
	}
	t.custom = custom
	return nil
}

func (t *Table) validateCustom(c CustomRole) error {
	if c.Name == "" {
		return ErrEmptyName
	}
	return ValidateMultiplier(c.Multiplier, t.maxMultiplier)
}

func (t *Table) indexCustom(id string) int {
	return slices.IndexFunc(t.custom, func(c CustomRole) bool { return c.ID == id })
}
