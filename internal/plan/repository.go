package plan

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/fkhayef/warikan/internal/kvstore"
)

// Repository persists plans as one JSON array under a single key. Every
// write rewrites the whole array; the mutex serialises read-modify-write
// cycles so concurrent writers cannot lose each other's changes.
type Repository struct {
	store kvstore.Store
	mu    sync.RWMutex
}

// NewRepository creates a new plan repository
func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) load(ctx context.Context) ([]*Plan, error) {
	var plans []*Plan
	if _, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyPlans, &plans); err != nil {
		return nil, fmt.Errorf("failed to load plans: %w", err)
	}
	return plans, nil
}

func (r *Repository) save(ctx context.Context, plans []*Plan) error {
	if plans == nil {
		plans = []*Plan{}
	}
	if err := kvstore.PutJSON(ctx, r.store, kvstore.KeyPlans, plans); err != nil {
		return fmt.Errorf("failed to save plans: %w", err)
	}
	return nil
}

// List returns every stored plan in creation order
func (r *Repository) List(ctx context.Context) ([]*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(ctx)
}

// GetByID returns the plan with the given id, or nil if it does not exist
func (r *Repository) GetByID(ctx context.Context, id string) (*Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

// Create appends a new plan
func (r *Repository) Create(ctx context.Context, p *Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, append(plans, p))
}

// Update applies fn to the stored plan and writes the result back.
// It returns nil if no plan has the id. When fn fails nothing is written.
func (r *Repository) Update(ctx context.Context, id string, fn func(*Plan) error) (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(plans, func(p *Plan) bool { return p.ID == id })
	if i < 0 {
		return nil, nil
	}

	if err := fn(plans[i]); err != nil {
		return nil, err
	}
	if err := r.save(ctx, plans); err != nil {
		return nil, err
	}
	return plans[i], nil
}

// Delete removes a plan. It reports whether the plan existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plans, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := slices.IndexFunc(plans, func(p *Plan) bool { return p.ID == id })
	if i < 0 {
		return false, nil
	}
	return true, r.save(ctx, slices.Delete(plans, i, i+1))
}
