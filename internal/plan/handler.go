package plan

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/warikan/internal/plan/allocation"
	"github.com/fkhayef/warikan/internal/plan/breakdown"
	"github.com/fkhayef/warikan/internal/role"
	"github.com/fkhayef/warikan/pkg/response"
)

// Handler handles HTTP requests for plan operations
type Handler struct {
	service *Service
	roles   role.Lookup
}

// NewHandler creates a new plan handler. roles resolves role names and
// multipliers in responses.
func NewHandler(service *Service, roles role.Lookup) *Handler {
	return &Handler{service: service, roles: roles}
}

// Routes returns the router for plan endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/calculate", h.Calculate)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Get("/{id}/summary", h.Summary)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/import-responses", h.ImportResponses)
	r.Post("/{id}/restore-roles", h.RestoreRoles)

	// Roster
	r.Post("/{id}/participants", h.AddParticipant)
	r.Put("/{id}/participants/{participantId}", h.UpdateParticipant)
	r.Delete("/{id}/participants/{participantId}", h.RemoveParticipant)
	r.Put("/{id}/participants/{participantId}/paid", h.SetPaid)

	// Breakdown items
	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemId}", h.UpdateItem)
	r.Post("/{id}/items/remove", h.RemoveItems)

	return r
}

// Create handles POST /plans
// @Summary      Create a new plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body CreatePlanRequest true "Plan creation request"
// @Success      201 {object} response.APIResponse{data=PlanResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /plans [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to create plan")
		return
	}
	response.JSON(w, r, http.StatusCreated, p.ToResponse(h.roles))
}

// List handles GET /plans
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]PlanResponse}
// @Router       /plans [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, r, "Failed to list plans", err)
		return
	}

	out := make([]*PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = p.ToResponse(h.roles)
	}
	response.JSONWithMeta(w, r, http.StatusOK, out, &response.Meta{Total: len(out)})
}

// GetByID handles GET /plans/{id}
// @Summary      Get plan by ID
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to get plan")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// Update handles PUT /plans/{id}
// @Summary      Update a plan
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body UpdatePlanRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlanRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to update plan")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// Delete handles DELETE /plans/{id}
// @Summary      Delete a plan
// @Tags         plans
// @Param        id path string true "Plan ID"
// @Success      204
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, "Failed to delete plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /plans/{id}/summary
// @Summary      Compute payments
// @Description  Allocate the effective total across the roster and report collection status
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} response.APIResponse{data=Summary}
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to compute summary")
		return
	}
	response.JSON(w, r, http.StatusOK, summary)
}

// Calculate handles POST /plans/calculate
// @Summary      Stateless allocation
// @Description  Allocate a posted total across a posted roster without storing anything
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body CalculateRequest true "Roster and amounts"
// @Success      200 {object} response.APIResponse{data=Summary}
// @Failure      400 {object} response.APIResponse
// @Router       /plans/calculate [post]
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := h.service.Calculate(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to calculate")
		return
	}
	response.JSON(w, r, http.StatusOK, summary)
}

// Confirm handles POST /plans/{id}/confirm
// @Summary      Confirm date, location and attendees
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body ConfirmRequest true "Confirmation"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /plans/{id}/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.Confirm(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to confirm plan")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// ImportResponses handles POST /plans/{id}/import-responses
// @Summary      Import scheduling responses into the roster
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} response.APIResponse{data=[]ParticipantResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /plans/{id}/import-responses [post]
func (h *Handler) ImportResponses(w http.ResponseWriter, r *http.Request) {
	added, err := h.service.ImportResponses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to import responses")
		return
	}

	out := make([]*ParticipantResponse, len(added))
	for i, p := range added {
		out[i] = p.ToResponse(h.roles)
	}
	response.JSON(w, r, http.StatusOK, out)
}

// RestoreRoles handles POST /plans/{id}/restore-roles
// @Summary      Restore the role table saved with a plan
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID"
// @Success      200 {object} response.APIResponse{data=PlanResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id}/restore-roles [post]
func (h *Handler) RestoreRoles(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.RestoreRoles(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to restore roles")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// AddParticipant handles POST /plans/{id}/participants
// @Summary      Add a participant
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body ParticipantRequest true "Participant"
// @Success      201 {object} response.APIResponse{data=ParticipantResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /plans/{id}/participants [post]
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.AddParticipant(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to add participant")
		return
	}
	response.JSON(w, r, http.StatusCreated, p.ToResponse(h.roles))
}

// UpdateParticipant handles PUT /plans/{id}/participants/{participantId}
func (h *Handler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req UpdateParticipantRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.UpdateParticipant(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantId"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to update participant")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// SetPaid handles PUT /plans/{id}/participants/{participantId}/paid
func (h *Handler) SetPaid(w http.ResponseWriter, r *http.Request) {
	var req SetPaidRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.SetPaid(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantId"), req.Paid)
	if err != nil {
		h.fail(w, r, err, "Failed to update participant")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

// RemoveParticipant handles DELETE /plans/{id}/participants/{participantId}
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveParticipant(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "participantId")); err != nil {
		h.fail(w, r, err, "Failed to remove participant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /plans/{id}/items
// @Summary      Add a breakdown item
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID"
// @Param        request body ItemRequest true "Item"
// @Success      201 {object} response.APIResponse{data=breakdown.Item}
// @Failure      400 {object} response.APIResponse
// @Router       /plans/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decode(w, r, &req) {
		return
	}

	item, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to add item")
		return
	}
	response.JSON(w, r, http.StatusCreated, item)
}

// UpdateItem handles PUT /plans/{id}/items/{itemId}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decode(w, r, &req) {
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to update item")
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

// RemoveItems handles POST /plans/{id}/items/remove
func (h *Handler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemsRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.service.RemoveItems(r.Context(), chi.URLParam(r, "id"), req.Indices)
	if err != nil {
		h.fail(w, r, err, "Failed to remove items")
		return
	}
	response.JSON(w, r, http.StatusOK, p.ToResponse(h.roles))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, ErrPlanNotFound),
		errors.Is(err, ErrParticipantNotFound),
		errors.Is(err, breakdown.ErrItemNotFound),
		errors.Is(err, role.ErrCustomRoleNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, ErrEmptyPlanName),
		errors.Is(err, ErrEmptyParticipantName),
		errors.Is(err, ErrNegativeFixedAmount),
		errors.Is(err, breakdown.ErrNegativeAmount),
		errors.Is(err, breakdown.ErrAmountTooLarge),
		errors.Is(err, role.ErrInvalidMultiplier),
		errors.Is(err, role.ErrMultiplierTooLarge),
		errors.Is(err, allocation.ErrUnknownPolicy),
		errors.Is(err, role.ErrUnknownRole),
		errors.Is(err, role.ErrInvalidRef):
		response.BadRequest(w, r, err.Error())
	case errors.Is(err, ErrNoScheduleEvent), errors.Is(err, ErrUnknownAttendee):
		response.Unprocessable(w, r, err.Error())
	case errors.Is(err, ErrResponsesUnavailable):
		response.ServiceUnavailable(w, r, err.Error())
	default:
		response.InternalError(w, r, message, err)
	}
}
