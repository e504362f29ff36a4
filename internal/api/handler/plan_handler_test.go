package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
)

func TestPlanHandler_Get(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		mockService    *MockPlanService
		wantStatusCode int
	}{
		{
			name:           "active plan",
			userID:         userID.String(),
			mockService:    &MockPlanService{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "no profile yet",
			userID: userID.String(),
			mockService: &MockPlanService{
				getPlanFunc: func(ctx context.Context, userID uuid.UUID) (*domain.PrescriptionResponse, error) {
					return nil, domain.ErrNoProfile
				},
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid UUID",
			userID:         "not-a-uuid",
			mockService:    &MockPlanService{},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPlanHandler(tt.mockService)

			req := httptest.NewRequest(http.MethodGet, "/v1/users/"+tt.userID+"/plan", nil)
			req = withUserParam(req, tt.userID)
			rec := httptest.NewRecorder()

			handler.Get(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Get() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}
		})
	}
}

func TestPlanHandler_Adjust(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		userID         string
		mockService    *MockPlanService
		wantStatusCode int
	}{
		{
			name:           "adjustment applied",
			userID:         userID.String(),
			mockService:    &MockPlanService{},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:   "insufficient history",
			userID: userID.String(),
			mockService: &MockPlanService{
				adjustFunc: func(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error) {
					return nil, fmt.Errorf("%w: 3 of 7 required nights", engine.ErrInsufficientData)
				},
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "unknown user",
			userID: userID.String(),
			mockService: &MockPlanService{
				adjustFunc: func(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error) {
					return nil, domain.ErrNotFound
				},
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid UUID",
			userID:         "not-a-uuid",
			mockService:    &MockPlanService{},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPlanHandler(tt.mockService)

			req := httptest.NewRequest(http.MethodPost, "/v1/users/"+tt.userID+"/plan/adjustments", nil)
			req = withUserParam(req, tt.userID)
			rec := httptest.NewRecorder()

			handler.Adjust(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("Adjust() status = %d, want %d, body: %s", rec.Code, tt.wantStatusCode, rec.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				var resp domain.AdjustPlanResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Errorf("Failed to decode response: %v", err)
				}
				if resp.Basis == "" {
					t.Error("basis missing from adjustment response")
				}
			}
		})
	}
}
