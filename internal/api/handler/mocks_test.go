package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	createFunc  func(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *MockUserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &domain.User{ID: uuid.New(), Timezone: req.Timezone}, nil
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// MockCoachService is a mock implementation of CoachService
type MockCoachService struct {
	processFunc  func(ctx context.Context, userID uuid.UUID, req *domain.CreateDailyReportRequest) (*domain.DailyReportResponse, bool, error)
	evaluateFunc func(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.DecisionResponse, string, error)
}

func (m *MockCoachService) ProcessDailyReport(ctx context.Context, userID uuid.UUID, req *domain.CreateDailyReportRequest) (*domain.DailyReportResponse, bool, error) {
	if m.processFunc != nil {
		return m.processFunc(ctx, userID, req)
	}
	return &domain.DailyReportResponse{
		Entry: domain.DiaryEntryResponse{ID: uuid.New(), UserID: userID, ReportedAt: req.ReportedAt},
		Decision: domain.DecisionResponse{
			ID: uuid.New(), UserID: userID,
			Category: "intervention_selection", Chosen: "relaxation",
		},
	}, false, nil
}

func (m *MockCoachService) EvaluateReminder(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.DecisionResponse, string, error) {
	if m.evaluateFunc != nil {
		return m.evaluateFunc(ctx, userID, now)
	}
	return &domain.DecisionResponse{
		ID: uuid.New(), UserID: userID,
		Category: "noop", Chosen: "none", Reason: "no rule matched",
	}, "", nil
}

// MockProfileService is a mock implementation of ProfileService
type MockProfileService struct {
	submitFunc func(ctx context.Context, userID uuid.UUID, req *domain.QuestionnaireRequest) (*domain.SleepProfileResponse, error)
	getFunc    func(ctx context.Context, userID uuid.UUID) (*domain.SleepProfileResponse, error)
}

func (m *MockProfileService) SubmitQuestionnaire(ctx context.Context, userID uuid.UUID, req *domain.QuestionnaireRequest) (*domain.SleepProfileResponse, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, userID, req)
	}
	return &domain.SleepProfileResponse{
		ID: uuid.New(), UserID: userID,
		Chronotype: "intermediate", SleepNeedMinutes: 450,
		OptimalWakeTime: "07:30", OptimalBedTime: "23:30",
	}, nil
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.SleepProfileResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return nil, domain.ErrNoProfile
}

// MockPlanService is a mock implementation of PlanService
type MockPlanService struct {
	getPlanFunc func(ctx context.Context, userID uuid.UUID) (*domain.PrescriptionResponse, error)
	adjustFunc  func(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error)
}

func (m *MockPlanService) GetPlan(ctx context.Context, userID uuid.UUID) (*domain.PrescriptionResponse, error) {
	if m.getPlanFunc != nil {
		return m.getPlanFunc(ctx, userID)
	}
	return &domain.PrescriptionResponse{
		ID: uuid.New(), UserID: userID, Week: 1,
		TIBMinutes: 480, Bedtime: "22:30", WakeTime: "06:30",
	}, nil
}

func (m *MockPlanService) Adjust(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error) {
	if m.adjustFunc != nil {
		return m.adjustFunc(ctx, userID)
	}
	return &domain.AdjustPlanResponse{
		Prescription: domain.PrescriptionResponse{
			ID: uuid.New(), UserID: userID, Week: 2,
			TIBMinutes: 495, Bedtime: "22:15", WakeTime: "06:30",
		},
		Delta: 15, Basis: "rule", Confidence: 0.7,
	}, nil
}

// MockDecisionService is a mock implementation of DecisionService
type MockDecisionService struct {
	listFunc func(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) (*domain.DecisionListResponse, error)
}

func (m *MockDecisionService) List(ctx context.Context, userID uuid.UUID, filter domain.DecisionFilter) (*domain.DecisionListResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return &domain.DecisionListResponse{Decisions: []domain.DecisionResponse{}}, nil
}
