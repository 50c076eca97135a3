package role

import (
	"context"

	"github.com/fkhayef/warikan/internal/kvstore"
)

// Repository handles role table persistence. Every save rewrites the
// whole table under its key.
type Repository struct {
	store kvstore.Store
}

// NewRepository creates a new role repository
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

// Overrides is everything the repository persists
type Overrides struct {
	Multipliers map[Role]float64
	Names       map[Role]string
	Custom      []CustomRole
}

// Load reads the stored overrides. Missing keys yield empty tables;
// entries for roles that no longer exist are dropped.
func (r *Repository) Load(ctx context.Context) (*Overrides, error) {
	var multipliers map[Role]float64
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyRoleMultipliers, &multipliers); err != nil {
		return nil, err
	}
	var names map[Role]string
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyRoleNames, &names); err != nil {
		return nil, err
	}
	var custom []CustomRole
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyCustomRoles, &custom); err != nil {
		return nil, err
	}

	o := &Overrides{
		Multipliers: make(map[Role]float64),
		Names:       make(map[Role]string),
		Custom:      custom,
	}
	for k, v := range multipliers {
		if k.Valid() {
			o.Multipliers[k] = v
		}
	}
	for k, v := range names {
		if k.Valid() {
			o.Names[k] = v
		}
	}
	return o, nil
}

// SaveTables overwrites both override tables
func (r *Repository) SaveTables(ctx context.Context, multipliers map[Role]float64, names map[Role]string) error {
	if err := kvstore.PutJSON(ctx, r.store, kvstore.KeyRoleMultipliers, multipliers); err != nil {
		return err
	}
	return kvstore.PutJSON(ctx, r.store, kvstore.KeyRoleNames, names)
}

// SaveCustom overwrites the custom role list
func (r *Repository) SaveCustom(ctx context.Context, custom []CustomRole) error {
	if custom == nil {
		custom = []CustomRole{}
	}
	return kvstore.PutJSON(ctx, r.store, kvstore.KeyCustomRoles, custom)
}
