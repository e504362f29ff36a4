package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
)

func TestDecisionHandler_List(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		query          string
		mockService    *MockDecisionService
		wantStatusCode int
	}{
		{
			name:           "empty log",
			userID:         userID.String(),
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "category filter",
			userID:         userID.String(),
			query:          "?category=bedtime_reminder&limit=10",
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown category",
			userID:         userID.String(),
			query:          "?category=nonsense",
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "bad from timestamp",
			userID:         userID.String(),
			query:          "?from=yesterday",
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "negative limit",
			userID:         userID.String(),
			query:          "?limit=-5",
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown user",
			userID: userID.String(),
			mockService: &MockDecisionService{
				listFunc: func(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) (*domain.DecisionListResponse, error) {
					return nil, domain.ErrNotFound
				},
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid UUID",
			userID:         "not-a-uuid",
			mockService:    &MockDecisionService{},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewDecisionHandler(tt.mockService)

			req := httptest.NewRequest(http.MethodGet, "/v1/users/"+tt.userID+"/decisions"+tt.query, nil)
			req = withUserParam(req, tt.userID)
			rec := httptest.NewRecorder()

			handler.List(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("List() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}
