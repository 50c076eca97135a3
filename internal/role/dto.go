package role

// UpdateRoleRequest represents a change to a standard role. Absent fields
// are left untouched.
type UpdateRoleRequest struct {
	Name       *string  `json:"name,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty"`
}

// CustomRoleRequest represents the request to create or update a custom role
type CustomRoleRequest struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// RoleResponse represents a standard role in responses
type RoleResponse struct {
	Role              Role    `json:"role"`
	Name              string  `json:"name"`
	Multiplier        float64 `json:"multiplier"`
	DefaultName       string  `json:"default_name"`
	DefaultMultiplier float64 `json:"default_multiplier"`
	Overridden        bool    `json:"overridden"`
}

// CustomRoleResponse represents a custom role in responses
type CustomRoleResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// ToResponse converts an Entry to a RoleResponse DTO
func (e Entry) ToResponse() *RoleResponse {
	return &RoleResponse{
		Role:              e.Role,
		Name:              e.Name,
		Multiplier:        e.Multiplier,
		DefaultName:       e.DefaultName,
		DefaultMultiplier: e.DefaultMultiplier,
		Overridden:        e.Overridden,
	}
}

// ToResponse converts a CustomRole to a CustomRoleResponse DTO
func (c CustomRole) ToResponse() *CustomRoleResponse {
	return &CustomRoleResponse{ID: c.ID, Name: c.Name, Multiplier: c.Multiplier}
}
