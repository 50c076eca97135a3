package role

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/warikan/pkg/response"
)

// Handler handles HTTP requests for role configuration
type Handler struct {
	table *Table
}

// NewHandler creates a new role handler
func NewHandler(table *Table) *Handler {
	return &Handler{table: table}
}

// Routes returns the router for role endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{role}", h.Get)
	r.Put("/{role}", h.Update)
	r.Delete("/{role}", h.Reset)

	// Custom roles
	r.Get("/custom", h.ListCustom)
	r.Post("/custom", h.CreateCustom)
	r.Put("/custom/{id}", h.UpdateCustom)
	r.Delete("/custom/{id}", h.DeleteCustom)

	return r
}

// List handles GET /roles
// @Summary      List standard roles
// @Description  Get every standard role with its current name and multiplier
// @Tags         roles
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]RoleResponse}
// @Router       /roles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.table.Entries()
	out := make([]*RoleResponse, len(entries))
	for i, e := range entries {
		out[i] = e.ToResponse()
	}
	response.JSON(w, r, http.StatusOK, out)
}

// Get handles GET /roles/{role}
// @Summary      Get a standard role
// @Tags         roles
// @Produce      json
// @Param        role path string true "Role" Enums(director, manager, staff, newcomer)
// @Success      200 {object} response.APIResponse{data=RoleResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /roles/{role} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.table.Entry(Role(chi.URLParam(r, "role")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, e.ToResponse())
}

// Update handles PUT /roles/{role}
// @Summary      Override a standard role
// @Description  Change the display name and/or multiplier of a standard role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        role path string true "Role"
// @Param        request body UpdateRoleRequest true "New values"
// @Success      200 {object} response.APIResponse{data=RoleResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /roles/{role} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	role := Role(chi.URLParam(r, "role"))

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return
	}

	if req.Multiplier != nil {
		if err := h.table.SetMultiplier(r.Context(), role, *req.Multiplier); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	if req.Name != nil {
		if err := h.table.SetName(r.Context(), role, *req.Name); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	h.Get(w, r)
}

// Reset handles DELETE /roles/{role}
// @Summary      Reset a standard role to its defaults
// @Tags         roles
// @Param        role path string true "Role"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /roles/{role} [delete]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.table.Reset(r.Context(), Role(chi.URLParam(r, "role"))); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCustom handles GET /roles/custom
// @Summary      List custom roles
// @Tags         roles
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]CustomRoleResponse}
// @Router       /roles/custom [get]
func (h *Handler) ListCustom(w http.ResponseWriter, r *http.Request) {
	custom := h.table.ListCustom()
	out := make([]*CustomRoleResponse, len(custom))
	for i, c := range custom {
		out[i] = c.ToResponse()
	}
	response.JSON(w, r, http.StatusOK, out)
}

// CreateCustom handles POST /roles/custom
// @Summary      Create a custom role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        request body CustomRoleRequest true "Custom role"
// @Success      201 {object} response.APIResponse{data=CustomRoleResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /roles/custom [post]
func (h *Handler) CreateCustom(w http.ResponseWriter, r *http.Request) {
	var req CustomRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return
	}

	c, err := h.table.CreateCustom(r.Context(), req.Name, req.Multiplier)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, c.ToResponse())
}

// UpdateCustom handles PUT /roles/custom/{id}
// @Summary      Update a custom role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Custom role ID"
// @Param        request body CustomRoleRequest true "Custom role"
// @Success      200 {object} response.APIResponse{data=CustomRoleResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /roles/custom/{id} [put]
func (h *Handler) UpdateCustom(w http.ResponseWriter, r *http.Request) {
	var req CustomRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return
	}

	c, err := h.table.UpdateCustom(r.Context(), chi.URLParam(r, "id"), req.Name, req.Multiplier)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, c.ToResponse())
}

// DeleteCustom handles DELETE /roles/custom/{id}
// @Summary      Delete a custom role
// @Tags         roles
// @Param        id path string true "Custom role ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /roles/custom/{id} [delete]
func (h *Handler) DeleteCustom(w http.ResponseWriter, r *http.Request) {
	if err := h.table.DeleteCustom(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUnknownRole), errors.Is(err, ErrCustomRoleNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, ErrInvalidMultiplier), errors.Is(err, ErrMultiplierTooLarge), errors.Is(err, ErrEmptyName):
		response.BadRequest(w, r, err.Error())
	default:
		response.InternalError(w, r, "Failed to update roles", err)
	}
}
