package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
)

func planFixture(userID uuid.UUID, forecast *MockForecastClient) (PlanService, *MockProfileRepository, *MockPrescriptionRepository, *MockDiaryRepository) {
	userRepo := NewMockUserRepository()
	userRepo.users[userID] = &domain.User{ID: userID, Timezone: "UTC"}
	profileRepo := NewMockProfileRepository()
	planRepo := NewMockPrescriptionRepository()
	diaryRepo := NewMockDiaryRepository()
	if forecast == nil {
		forecast = &MockForecastClient{}
	}
	svc := NewPlanService(engine.DefaultConfig(), userRepo, profileRepo, planRepo, diaryRepo, forecast)
	return svc, profileRepo, planRepo, diaryRepo
}

func seedNights(diaryRepo *MockDiaryRepository, userID uuid.UUID, efficiencies []float64) {
	base := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)
	for i, eff := range efficiencies {
		diaryRepo.Create(context.Background(), &domain.DiaryEntry{
			UserID:     userID,
			ReportedAt: base.AddDate(0, 0, i),
			Efficiency: eff,
			Quality:    6,
			Adhered:    true,
			Source:     "diary",
		})
	}
}

func TestPlanService_GetPlan_BootstrapsFromProfile(t *testing.T) {
	userID := uuid.New()
	svc, profileRepo, planRepo, _ := planFixture(userID, nil)

	profileRepo.profiles[userID] = &domain.SleepProfile{
		ID: uuid.New(), UserID: userID,
		SleepNeedMinutes: 450, OptimalWakeMin: 390, OptimalBedMin: 1350,
	}

	resp, err := svc.GetPlan(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPlan() error = %v", err)
	}
	if resp.Week != 1 {
		t.Errorf("week = %d, want 1", resp.Week)
	}
	// Sleep need plus the 30-minute onboarding buffer.
	if resp.TIBMinutes != 480 {
		t.Errorf("TIB = %d, want 480", resp.TIBMinutes)
	}
	if resp.WakeTime != "06:30" {
		t.Errorf("wake time = %q, want 06:30", resp.WakeTime)
	}
	if len(planRepo.prescriptions[userID]) != 1 {
		t.Errorf("bootstrap not persisted")
	}

	// A second read returns the stored plan, not another bootstrap.
	if _, err := svc.GetPlan(context.Background(), userID); err != nil {
		t.Fatalf("second GetPlan() error = %v", err)
	}
	if len(planRepo.prescriptions[userID]) != 1 {
		t.Errorf("second read created %d prescriptions", len(planRepo.prescriptions[userID]))
	}
}

func TestPlanService_GetPlan_NoProfile(t *testing.T) {
	userID := uuid.New()
	svc, _, _, _ := planFixture(userID, nil)

	_, err := svc.GetPlan(context.Background(), userID)
	if !errors.Is(err, domain.ErrNoProfile) {
		t.Errorf("error = %v, want ErrNoProfile", err)
	}
}

func TestPlanService_Adjust(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name         string
		efficiencies []float64
		forecast     *engine.Prediction
		wantDelta    int
		wantBasis    string
		wantWeek     int
	}{
		{
			name:         "high efficiency extends by rule",
			efficiencies: []float64{92, 93, 91, 94, 92, 90, 95},
			wantDelta:    15,
			wantBasis:    string(engine.BasisRule),
			wantWeek:     2,
		},
		{
			name:         "low efficiency restricts by rule",
			efficiencies: []float64{80, 82, 78, 81, 83, 79, 80},
			wantDelta:    -15,
			wantBasis:    string(engine.BasisRule),
			wantWeek:     2,
		},
		{
			name:         "confident forecast takes over",
			efficiencies: []float64{86, 87, 86, 88, 87, 86, 88},
			forecast: &engine.Prediction{
				PointEstimate: 92, Lower95: 86, Upper95: 96,
				Trend: engine.TrendImproving, Confidence: 0.8,
			},
			wantDelta: 20,
			wantBasis: string(engine.BasisModel),
			wantWeek:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forecast := &MockForecastClient{prediction: tt.forecast}
			svc, _, planRepo, diaryRepo := planFixture(userID, forecast)

			planRepo.prescriptions[userID] = []*domain.Prescription{{
				ID: uuid.New(), UserID: userID, Week: 1,
				TIBMinutes: 480, BedtimeMin: 1350, WakeMin: 390,
			}}
			seedNights(diaryRepo, userID, tt.efficiencies)

			resp, err := svc.Adjust(context.Background(), userID)
			if err != nil {
				t.Fatalf("Adjust() error = %v", err)
			}
			if resp.Delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", resp.Delta, tt.wantDelta)
			}
			if resp.Basis != tt.wantBasis {
				t.Errorf("basis = %q, want %q", resp.Basis, tt.wantBasis)
			}
			if resp.Prescription.Week != tt.wantWeek {
				t.Errorf("week = %d, want %d", resp.Prescription.Week, tt.wantWeek)
			}
			if resp.Prescription.TIBMinutes != 480+tt.wantDelta {
				t.Errorf("TIB = %d, want %d", resp.Prescription.TIBMinutes, 480+tt.wantDelta)
			}

			// The new week is now the active prescription.
			active, err := planRepo.GetActive(context.Background(), userID)
			if err != nil {
				t.Fatalf("GetActive() error = %v", err)
			}
			if active.Week != tt.wantWeek {
				t.Errorf("active week = %d, want %d", active.Week, tt.wantWeek)
			}
		})
	}
}

func TestPlanService_Adjust_InsufficientHistory(t *testing.T) {
	userID := uuid.New()
	svc, _, planRepo, diaryRepo := planFixture(userID, nil)

	planRepo.prescriptions[userID] = []*domain.Prescription{{
		ID: uuid.New(), UserID: userID, Week: 1,
		TIBMinutes: 480, BedtimeMin: 1350, WakeMin: 390,
	}}
	seedNights(diaryRepo, userID, []float64{90, 91, 92})

	_, err := svc.Adjust(context.Background(), userID)
	if !errors.Is(err, engine.ErrInsufficientData) {
		t.Errorf("error = %v, want ErrInsufficientData", err)
	}
	if len(planRepo.prescriptions[userID]) != 1 {
		t.Errorf("refused adjustment still wrote a prescription")
	}
}

func TestPlanService_Adjust_ForecastFailureFallsBackToRule(t *testing.T) {
	userID := uuid.New()
	forecast := &MockForecastClient{err: errors.New("forecast down")}
	svc, _, planRepo, diaryRepo := planFixture(userID, forecast)

	planRepo.prescriptions[userID] = []*domain.Prescription{{
		ID: uuid.New(), UserID: userID, Week: 1,
		TIBMinutes: 480, BedtimeMin: 1350, WakeMin: 390,
	}}
	seedNights(diaryRepo, userID, []float64{92, 93, 91, 94, 92, 90, 95})

	resp, err := svc.Adjust(context.Background(), userID)
	if err != nil {
		t.Fatalf("Adjust() must degrade on forecast failure: %v", err)
	}
	if resp.Basis != string(engine.BasisRule) {
		t.Errorf("basis = %q, want rule", resp.Basis)
	}
}
