package event

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/warikan/pkg/response"
)

// Handler handles HTTP requests for scheduling events
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the organizer router for event endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/responses", h.ListResponses)

	return r
}

// PublicRoutes returns the router served to holders of the shared link
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/responses", h.SubmitResponse)

	return r
}

// Create handles POST /events
// @Summary      Create a scheduling event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request body CreateEventRequest true "Event"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return
	}

	e, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to create event")
		return
	}
	response.JSON(w, r, http.StatusCreated, e.ToResponse())
}

// GetByID handles GET /events/{id}
// @Summary      Get a scheduling event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to get event")
		return
	}
	response.JSON(w, r, http.StatusOK, e.ToResponse())
}

// SubmitResponse handles POST /public/events/{id}/responses
// @Summary      Answer a scheduling event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path string true "Event ID"
// @Param        request body SubmitResponseRequest true "Answers"
// @Success      201 {object} response.APIResponse{data=ResponseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /public/events/{id}/responses [post]
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body")
		return
	}

	resp, err := h.service.SubmitResponse(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, r, err, "Failed to submit response")
		return
	}
	response.JSON(w, r, http.StatusCreated, resp.ToResponse())
}

// ListResponses handles GET /events/{id}/responses
// @Summary      List responses to a scheduling event
// @Tags         events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} response.APIResponse{data=[]ResponseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id}/responses [get]
func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	responses, err := h.service.ListResponses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to list responses")
		return
	}

	out := make([]*ResponseResponse, len(responses))
	for i, resp := range responses {
		out[i] = resp.ToResponse()
	}
	response.JSONWithMeta(w, r, http.StatusOK, out, &response.Meta{Total: len(out)})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, ErrEmptyTitle),
		errors.Is(err, ErrNoCandidateDates),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrUnknownDate),
		errors.Is(err, ErrInvalidAnswer):
		response.BadRequest(w, r, err.Error())
	default:
		response.InternalError(w, r, message, err)
	}
}
