// Package kvstore provides the local keyed storage the app persists its
// snapshots in: role tables, custom roles and the full list of plans, each
// stored as one JSON document under a logical key.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Logical keys used by the application
const (
	KeyRoleMultipliers = "role_multipliers"
	KeyRoleNames       = "role_names"
	KeyCustomRoles     = "custom_roles"
	KeyPlans           = "plans"
)

var ErrNotFound = errors.New("key not found")

// Store defines the interface for keyed storage operations.
// Writes replace the whole value; there are no partial updates.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}

// GetJSON decodes the value under key into v.
// found is false when the key does not exist; v is left untouched then.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}
