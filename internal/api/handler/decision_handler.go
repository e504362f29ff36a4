package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/service"
	"github.com/restwise/insomnia-coach/pkg/problem"
)

type DecisionHandler struct {
	service service.DecisionService
}

func NewDecisionHandler(service service.DecisionService) *DecisionHandler {
	return &DecisionHandler{service: service}
}

// List handles GET /v1/users/{userId}/decisions
// @Summary List engine decisions
// @Description Fetch the paginated audit log of engine decisions, newest first. Filter by time range and category.
// @Tags decisions
// @Produce json
// @Param userId path string true "User UUID" format(uuid) example(550e8400-e29b-41d4-a716-446655440000)
// @Param from query string false "Start of time range (RFC3339)" format(date-time) example(2026-03-01T00:00:00Z)
// @Param to query string false "End of time range (RFC3339)" format(date-time) example(2026-03-31T23:59:59Z)
// @Param category query string false "Decision category" Enums(intervention_selection, bedtime_reminder, weekend_consistency, trend_response, noop)
// @Param limit query integer false "Results per page (1-100)" default(20) minimum(1) maximum(100)
// @Param cursor query string false "Cursor from previous response's next_cursor"
// @Success 200 {object} domain.DecisionListResponse "Decisions with pagination"
// @Failure 400 {object} problem.Problem "Invalid user ID"
// @Failure 404 {object} problem.Problem "User not found"
// @Failure 422 {object} problem.Problem "Invalid query parameters"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /users/{userId}/decisions [get]
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		problem.BadRequest("Invalid user ID format").Write(w)
		return
	}

	filter, fieldErrors := parseDecisionFilter(r)
	if fieldErrors != nil {
		problem.ValidationError("Invalid query parameters", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			problem.NotFound("User not found").Write(w)
			return
		}
		problem.InternalError("Failed to list decisions").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

var validCategories = map[string]bool{
	"intervention_selection": true,
	"bedtime_reminder":       true,
	"weekend_consistency":    true,
	"trend_response":         true,
	"noop":                   true,
}

func parseDecisionFilter(r *http.Request) (domain.DecisionFilter, []problem.FieldError) {
	var filter domain.DecisionFilter
	var fieldErrors []problem.FieldError

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "from",
				Message: "must be a valid RFC3339 timestamp",
			})
		} else {
			filter.From = &from
		}
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "to",
				Message: "must be a valid RFC3339 timestamp",
			})
		} else {
			filter.To = &to
		}
	}

	if category := r.URL.Query().Get("category"); category != "" {
		if !validCategories[category] {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "category",
				Message: "must be a known decision category",
			})
		} else {
			filter.Category = category
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "limit",
				Message: "must be a positive integer",
			})
		} else {
			filter.Limit = limit
		}
	}

	filter.Cursor = r.URL.Query().Get("cursor")

	if len(fieldErrors) > 0 {
		return filter, fieldErrors
	}

	return filter, nil
}
