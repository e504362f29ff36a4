package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/service"
	"github.com/restwise/insomnia-coach/pkg/problem"
)

type PlanHandler struct {
	service service.PlanService
}

func NewPlanHandler(service service.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// Get handles GET /v1/users/{userId}/plan
// @Summary Get the active sleep-window prescription
// @Description Fetch the current bedtime/wake window. The week-1 window is derived from the sleep profile on first access.
// @Tags plan
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Success 200 {object} domain.PrescriptionResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User or profile not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/plan [get]
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	resp, err := h.service.GetPlan(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrNoProfile):
			problem.NotFound("Sleep profile not found, submit the questionnaire first").Write(w)
		default:
			problem.InternalError("Failed to get plan").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Adjust handles POST /v1/users/{userId}/plan/adjustments
// @Summary Titrate the sleep window for the next week
// @Description Compute and persist the next week's time-in-bed prescription from the last seven nights of sleep efficiency, optionally sharpened by the external forecast. Refuses with 422 until seven nights of history exist.
// @Tags plan
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Success 201 {object} domain.AdjustPlanResponse "New prescription with rationale"
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User or profile not found"
// @Failure 422 {object} problem.Problem "Fewer than seven nights of history"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/plan/adjustments [post]
func (h *PlanHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	resp, err := h.service.Adjust(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrNoProfile):
			problem.NotFound("Sleep profile not found, submit the questionnaire first").Write(w)
		case errors.Is(err, engine.ErrInsufficientData):
			problem.New(http.StatusUnprocessableEntity, "insufficient-data",
				"Insufficient Data", "At least seven nights of reports are required before adjusting the plan").Write(w)
		default:
			problem.InternalError("Failed to adjust plan").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}
