package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/api/validation"
	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/service"
	"github.com/restwise/insomnia-coach/pkg/problem"
)

type DailyReportHandler struct {
	service service.CoachService
}

func NewDailyReportHandler(service service.CoachService) *DailyReportHandler {
	return &DailyReportHandler{service: service}
}

// Create handles POST /v1/users/{userId}/daily-reports
// @Summary Submit a daily sleep report
// @Description Store the nightly self-report and run one engine step: belief update, reward credit, and the next intervention choice. Use client_request_id for safe retries (idempotency). Returns 200 if duplicate request, 201 if new.
// @Tags daily-reports
// @Accept json
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param request body domain.CreateDailyReportRequest true "Daily self-report"
// @Success 201 {object} domain.DailyReportResponse "Report processed, decision attached"
// @Success 200 {object} domain.DailyReportResponse "Existing report returned (idempotent duplicate)"
// @Failure 400 {object} problem.Problem "Invalid request body or parameters"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 422 {object} problem.Problem "Request body contains invalid fields"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/daily-reports [post]
func (h *DailyReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	var req domain.CreateDailyReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, isExisting, err := h.service.ProcessDailyReport(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to process daily report").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if isExisting {
		w.WriteHeader(http.StatusOK) // Return 200 for idempotent duplicate
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	json.NewEncoder(w).Encode(resp)
}

// reminderCheckResponse pairs the scheduling decision with the optional
// rendered message.
type reminderCheckResponse struct {
	Decision domain.DecisionResponse `json:"decision"`
	Message  string                  `json:"message,omitempty"`
}

// EvaluateReminder handles POST /v1/users/{userId}/reminder-checks
// @Summary Evaluate the reminder cascade now
// @Description Run the just-in-time reminder rules for the user at the current instant. Every evaluation, including a no-op, is appended to the decision log and returned.
// @Tags daily-reports
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Success 200 {object} reminderCheckResponse "Scheduling decision"
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User, profile, or prescription not found"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/reminder-checks [post]
func (h *DailyReportHandler) EvaluateReminder(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	decision, message, err := h.service.EvaluateReminder(r.Context(), userID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			problem.NotFound("User not found").Write(w)
		case errors.Is(err, domain.ErrNoProfile):
			problem.NotFound("Sleep profile not found, submit the questionnaire first").Write(w)
		case errors.Is(err, domain.ErrNoPrescription):
			problem.NotFound("No active prescription").Write(w)
		default:
			problem.InternalError("Failed to evaluate reminder").Write(w)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reminderCheckResponse{Decision: *decision, Message: message})
}
