package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/api/validation"
	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/service"
	"github.com/restwise/insomnia-coach/pkg/problem"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// SubmitQuestionnaire handles POST /v1/users/{userId}/questionnaire
// @Summary Submit the chronotype questionnaire
// @Description Score the onboarding questionnaire into a chronotype and sleep-need profile. Resubmitting replaces the profile but never resets an in-progress prescription.
// @Tags profile
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param request body domain.QuestionnaireRequest true "Questionnaire answers"
// @Success 201 {object} domain.SleepProfileResponse "Computed profile"
// @Failure 400 {object} problem.Problem "Invalid request body"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 422 {object} problem.Problem "Request body contains invalid fields"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/questionnaire [post]
func (h *ProfileHandler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.QuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.SubmitQuestionnaire(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, engine.ErrInvalidQuestionnaire):
			problem.BadRequest("Questionnaire answers are invalid").Write(w)
		default:
			problem.InternalError("Failed to process questionnaire").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Get handles GET /v1/users/{userId}/profile
// @Summary Get the sleep profile
// @Description Fetch the chronotype and sleep-need profile derived from the questionnaire.
// @Tags profile
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Success 200 {object} domain.SleepProfileResponse
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User or profile not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	resp, err := h.service.Get(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrNoProfile):
			problem.NotFound("Sleep profile not found, submit the questionnaire first").Write(w)
		default:
			problem.InternalError("Failed to get profile").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
