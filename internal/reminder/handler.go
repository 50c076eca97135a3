package reminder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/warikan/internal/plan"
	"github.com/fkhayef/warikan/pkg/response"
)

// Handler handles HTTP requests for reminder operations
type Handler struct {
	service *Service
}

// NewHandler creates a new reminder handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for reminder endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/plans/{planId}", h.Generate)
	r.Get("/plans/{planId}", h.ListByPlan)
	r.Post("/{id}/sent", h.MarkSent)

	return r
}

// Generate handles POST /reminders/plans/{planId}
// @Summary      Generate payment reminders
// @Description  Create a reminder for every participant who still owes money
// @Tags         reminders
// @Produce      json
// @Param        planId path string true "Plan ID"
// @Success      201 {object} response.APIResponse{data=[]ReminderResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /reminders/plans/{planId} [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.GenerateForPlan(r.Context(), chi.URLParam(r, "planId"))
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			response.NotFound(w, r, err.Error())
			return
		}
		response.InternalError(w, r, "Failed to generate reminders", err)
		return
	}

	out := make([]*ReminderResponse, len(reminders))
	for i, rem := range reminders {
		out[i] = toResponse(rem)
	}
	response.JSON(w, r, http.StatusCreated, out)
}

// ListByPlan handles GET /reminders/plans/{planId}
// @Summary      List payment reminders of a plan
// @Tags         reminders
// @Produce      json
// @Param        planId path string true "Plan ID"
// @Success      200 {object} response.APIResponse{data=[]ReminderResponse}
// @Router       /reminders/plans/{planId} [get]
func (h *Handler) ListByPlan(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.ListByPlan(r.Context(), chi.URLParam(r, "planId"))
	if err != nil {
		response.InternalError(w, r, "Failed to list reminders", err)
		return
	}

	out := make([]*ReminderResponse, len(reminders))
	for i, rem := range reminders {
		out[i] = toResponse(rem)
	}
	response.JSONWithMeta(w, r, http.StatusOK, out, &response.Meta{Total: len(out)})
}

// MarkSent handles POST /reminders/{id}/sent
func (h *Handler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, r, "Invalid reminder ID")
		return
	}

	if err := h.service.MarkSent(r.Context(), id); err != nil {
		if errors.Is(err, ErrReminderNotFound) {
			response.NotFound(w, r, err.Error())
			return
		}
		response.InternalError(w, r, "Failed to mark reminder as sent", err)
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Reminder marked as sent"})
}
