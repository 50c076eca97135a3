package role

import (
	"errors"
	"fmt"
	"math"
)

// Role is one of the fixed standard roles of a party participant
type Role string

const (
	Director Role = "director"
	Manager  Role = "manager"
	Staff    Role = "staff"
	Newcomer Role = "newcomer"
)

// All lists the standard roles in display order
var All = []Role{Director, Manager, Staff, Newcomer}

var defaults = map[Role]struct {
	name       string
	multiplier float64
}{
	Director: {"部長", 2.0},
	Manager:  {"課長", 1.5},
	Staff:    {"一般", 1.0},
	Newcomer: {"新人", 0.5},
}

// Valid reports whether r is a standard role
func (r Role) Valid() bool {
	_, ok := defaults[r]
	return ok
}

// DefaultMultiplier returns the built-in multiplier of r, or 0 for an unknown role
func (r Role) DefaultMultiplier() float64 {
	return defaults[r].multiplier
}

// DefaultName returns the built-in display name of r
func (r Role) DefaultName() string {
	return defaults[r].name
}

// Parse converts a raw value into a standard role
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownRole, s)
	}
	return r, nil
}

var (
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidMultiplier  = errors.New("multiplier must be a positive finite number")
	ErrMultiplierTooLarge = errors.New("multiplier exceeds the allowed maximum")
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrCustomRoleNotFound = errors.New("custom role not found")
	ErrInvalidRef         = errors.New("invalid role reference")
)

// ValidateMultiplier checks v against the engine requirement (finite, > 0)
// and, when max is positive, against the configured upper bound.
func ValidateMultiplier(v, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidMultiplier
	}
	if max > 0 && v > max {
		return fmt.Errorf("%w (%.1f)", ErrMultiplierTooLarge, max)
	}
	return nil
}

// CustomRole is a user-defined role with its own multiplier.
// Identity is the ID; two custom roles may share a name.
type CustomRole struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// Lookup resolves display names and multipliers of standard roles
type Lookup interface {
	Multiplier(r Role) float64
	Name(r Role) string
}

// RefKind discriminates the two variants of Ref
type RefKind string

const (
	KindStandard RefKind = "standard"
	KindCustom   RefKind = "custom"
)

// Ref is the role a participant holds: either a standard role or a custom
// role. Exactly one of Role and Custom is set, as indicated by Kind.
type Ref struct {
	Kind   RefKind     `json:"kind"`
	Role   Role        `json:"role,omitempty"`
	Custom *CustomRole `json:"custom,omitempty"`
}

// Standard references a standard role
func Standard(r Role) Ref {
	return Ref{Kind: KindStandard, Role: r}
}

// Custom references a custom role
func Custom(c CustomRole) Ref {
	return Ref{Kind: KindCustom, Custom: &c}
}

// Validate checks that the reference is well formed
func (r Ref) Validate() error {
	switch r.Kind {
	case KindStandard:
		if !r.Role.Valid() || r.Custom != nil {
			return ErrInvalidRef
		}
		return nil
	case KindCustom:
		if r.Custom == nil || r.Role != "" {
			return ErrInvalidRef
		}
		return nil
	default:
		return ErrInvalidRef
	}
}

// Multiplier returns the effective multiplier for this reference.
// Malformed references weigh nothing.
func (r Ref) Multiplier(l Lookup) float64 {
	switch r.Kind {
	case KindStandard:
		return l.Multiplier(r.Role)
	case KindCustom:
		if r.Custom == nil {
			return 0
		}
		return r.Custom.Multiplier
	default:
		return 0
	}
}

// Name returns the display name for this reference
func (r Ref) Name(l Lookup) string {
	switch r.Kind {
	case KindStandard:
		return l.Name(r.Role)
	case KindCustom:
		if r.Custom == nil {
			return ""
		}
		return r.Custom.Name
	default:
		return ""
	}
}

// Snapshot is a frozen copy of the role overrides. It implements Lookup,
// falling back to the defaults for roles without an override.
type Snapshot struct {
	Multipliers map[Role]float64 `json:"multipliers"`
	Names       map[Role]string  `json:"names"`
}

func (s Snapshot) Multiplier(r Role) float64 {
	if v, ok := s.Multipliers[r]; ok {
		return v
	}
	return r.DefaultMultiplier()
}

func (s Snapshot) Name(r Role) string {
	if v, ok := s.Names[r]; ok {
		return v
	}
	return r.DefaultName()
}

// Entry describes the current state of one standard role
type Entry struct {
	Role              Role
	Name              string
	Multiplier        float64
	DefaultName       string
	DefaultMultiplier float64
	Overridden        bool
}
