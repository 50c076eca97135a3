package role

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/warikan/internal/kvstore"
)

func newTestTable(t *testing.T, store kvstore.Store) *Table {
	t.Helper()
	table, err := NewTable(context.Background(), NewRepository(store), 5.0)
	require.NoError(t, err)
	return table
}

func TestDefaults(t *testing.T) {
	table := newTestTable(t, kvstore.NewMemory())

	expected := map[Role]struct {
		name       string
		multiplier float64
	}{
		Director: {"部長", 2.0},
		Manager:  {"課長", 1.5},
		Staff:    {"一般", 1.0},
		Newcomer: {"新人", 0.5},
	}
	for r, want := range expected {
		assert.Equal(t, want.multiplier, table.Multiplier(r), r)
		assert.Equal(t, want.name, table.Name(r), r)
	}
	assert.Len(t, table.Entries(), 4)
	assert.Empty(t, table.ListCustom())
}

func TestSetMultiplier(t *testing.T) {
	ctx := context.Background()

	t.Run("persists across tables", func(t *testing.T) {
		store := kvstore.NewMemory()
		table := newTestTable(t, store)

		require.NoError(t, table.SetMultiplier(ctx, Director, 3.0))
		assert.Equal(t, 3.0, table.Multiplier(Director))

		fresh := newTestTable(t, store)
		assert.Equal(t, 3.0, fresh.Multiplier(Director))
		assert.Equal(t, 1.5, fresh.Multiplier(Manager))
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		table := newTestTable(t, kvstore.NewMemory())

		for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			assert.ErrorIs(t, table.SetMultiplier(ctx, Staff, v), ErrInvalidMultiplier)
		}
		assert.ErrorIs(t, table.SetMultiplier(ctx, Staff, 5.5), ErrMultiplierTooLarge)
		assert.ErrorIs(t, table.SetMultiplier(ctx, Role("ceo"), 1.0), ErrUnknownRole)
		assert.Equal(t, 1.0, table.Multiplier(Staff))
	})

	t.Run("bound disabled", func(t *testing.T) {
		table, err := NewTable(ctx, NewRepository(kvstore.NewMemory()), 0)
		require.NoError(t, err)

		require.NoError(t, table.SetMultiplier(ctx, Director, 12))
		assert.Equal(t, 12.0, table.Multiplier(Director))
	})

	t.Run("save failure leaves table unchanged", func(t *testing.T) {
		store := kvstore.NewMemory()
		table := newTestTable(t, store)
		store.PutErr = errors.New("disk full")

		err := table.SetMultiplier(ctx, Director, 3.0)
		require.Error(t, err)
		assert.Equal(t, 2.0, table.Multiplier(Director))
	})
}

func TestSetNameAndReset(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	table := newTestTable(t, store)

	assert.ErrorIs(t, table.SetName(ctx, Staff, "   "), ErrEmptyName)

	require.NoError(t, table.SetName(ctx, Staff, "メンバー"))
	require.NoError(t, table.SetMultiplier(ctx, Staff, 1.2))
	assert.Equal(t, "メンバー", newTestTable(t, store).Name(Staff))

	e, err := table.Entry(Staff)
	require.NoError(t, err)
	assert.True(t, e.Overridden)
	assert.Equal(t, "一般", e.DefaultName)

	require.NoError(t, table.Reset(ctx, Staff))
	assert.Equal(t, "一般", table.Name(Staff))
	assert.Equal(t, 1.0, table.Multiplier(Staff))

	e, err = table.Entry(Staff)
	require.NoError(t, err)
	assert.False(t, e.Overridden)

	_, err = table.Entry(Role("boss"))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestSnapshotRestore(t *testing.T) {
	ctx := context.Background()
	table := newTestTable(t, kvstore.NewMemory())

	require.NoError(t, table.SetMultiplier(ctx, Director, 3.0))
	snap := table.Snapshot()

	require.NoError(t, table.SetMultiplier(ctx, Director, 4.0))
	require.NoError(t, table.SetName(ctx, Newcomer, "ルーキー"))
	assert.Equal(t, 3.0, snap.Multiplier(Director), "snapshot must not alias the table")

	require.NoError(t, table.Restore(ctx, snap))
	assert.Equal(t, 3.0, table.Multiplier(Director))
	assert.Equal(t, "新人", table.Name(Newcomer))

	err := table.Restore(ctx, Snapshot{
		Multipliers: map[Role]float64{Manager: -1, Role("ghost"): 9, Staff: 1.1},
		Names:       map[Role]string{Manager: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, table.Multiplier(Manager))
	assert.Equal(t, 1.1, table.Multiplier(Staff))
	assert.Equal(t, "課長", table.Name(Manager))
}

func TestCustomRoles(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	table := newTestTable(t, store)

	_, err := table.CreateCustom(ctx, "", 1.0)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = table.CreateCustom(ctx, "ゲスト", 0)
	assert.ErrorIs(t, err, ErrInvalidMultiplier)

	guest, err := table.CreateCustom(ctx, "ゲスト", 0.8)
	require.NoError(t, err)
	assert.NotEmpty(t, guest.ID)

	twin, err := table.CreateCustom(ctx, "ゲスト", 1.2)
	require.NoError(t, err)
	assert.NotEqual(t, guest.ID, twin.ID, "duplicate names get distinct identities")

	updated, err := table.UpdateCustom(ctx, guest.ID, "来賓", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "来賓", updated.Name)

	_, err = table.UpdateCustom(ctx, "missing", "x", 1)
	assert.ErrorIs(t, err, ErrCustomRoleNotFound)

	fresh := newTestTable(t, store)
	list := fresh.ListCustom()
	require.Len(t, list, 2)
	assert.Equal(t, CustomRole{ID: guest.ID, Name: "来賓", Multiplier: 0.7}, list[0])

	require.NoError(t, table.DeleteCustom(ctx, guest.ID))
	assert.ErrorIs(t, table.DeleteCustom(ctx, guest.ID), ErrCustomRoleNotFound)
	_, err = table.CustomRole(guest.ID)
	assert.ErrorIs(t, err, ErrCustomRoleNotFound)

	got, err := table.CustomRole(twin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.2, got.Multiplier)
}

func TestLoadFailure(t *testing.T) {
	store := kvstore.NewMemory()
	store.GetErr = errors.New("io error")

	_, err := NewTable(context.Background(), NewRepository(store), 5)
	assert.Error(t, err)
}

func TestLoadDropsUnknownRoles(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, kvstore.PutJSON(ctx, store, kvstore.KeyRoleMultipliers, map[string]float64{
		"director": 2.5,
		"intern":   0.1,
	}))

	table := newTestTable(t, store)
	assert.Equal(t, 2.5, table.Multiplier(Director))
	assert.NotContains(t, table.Snapshot().Multipliers, Role("intern"))
}

func TestRef(t *testing.T) {
	snap := Snapshot{Multipliers: map[Role]float64{Manager: 1.8}}

	mgr := Standard(Manager)
	require.NoError(t, mgr.Validate())
	assert.Equal(t, 1.8, mgr.Multiplier(snap))
	assert.Equal(t, "課長", mgr.Name(snap))

	guest := Custom(CustomRole{ID: "g", Name: "ゲスト", Multiplier: 0.8})
	require.NoError(t, guest.Validate())
	assert.Equal(t, 0.8, guest.Multiplier(snap))
	assert.Equal(t, "ゲスト", guest.Name(snap))

	broken := Ref{Kind: KindCustom}
	assert.ErrorIs(t, broken.Validate(), ErrInvalidRef)
	assert.Zero(t, broken.Multiplier(snap))
	assert.Empty(t, broken.Name(snap))

	assert.ErrorIs(t, Ref{Kind: KindStandard, Role: "ceo"}.Validate(), ErrInvalidRef)
	assert.ErrorIs(t, Ref{Kind: "other"}.Validate(), ErrInvalidRef)

	r, err := Parse("newcomer")
	require.NoError(t, err)
	assert.Equal(t, Newcomer, r)
	_, err = Parse("ceo")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
