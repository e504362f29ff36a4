package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/forecast"
	"github.com/restwise/insomnia-coach/internal/repository"
)

// PlanService manages the sleep-window prescription: bootstrapping it
// from the profile and titrating it week over week.
type PlanService interface {
	// GetPlan returns the active prescription, bootstrapping the week-1
	// window from the sleep profile when none exists yet.
	GetPlan(ctx context.Context, userID uuid.UUID) (*domain.PrescriptionResponse, error)

	// Adjust computes and persists the next week's prescription from
	// recent sleep-efficiency history and the optional forecast.
	Adjust(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error)
}

type planService struct {
	cfg              engine.Config
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	prescriptionRepo repository.PrescriptionRepository
	diaryRepo        repository.DiaryRepository
	forecastClient   forecast.Client
}

func NewPlanService(
	cfg engine.Config,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prescriptionRepo repository.PrescriptionRepository,
	diaryRepo repository.DiaryRepository,
	forecastClient forecast.Client,
) PlanService {
	return &planService{
		cfg:              cfg,
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		prescriptionRepo: prescriptionRepo,
		diaryRepo:        diaryRepo,
		forecastClient:   forecastClient,
	}
}

func (s *planService) GetPlan(ctx context.Context, userID uuid.UUID) (*domain.PrescriptionResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	prescription, err := s.activeOrBootstrap(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := prescription.ToResponse()
	return &resp, nil
}

func (s *planService) Adjust(ctx context.Context, userID uuid.UUID) (*domain.AdjustPlanResponse, error) {
	tracer := otel.Tracer("insomnia-coach-api/plan")
	ctx, span := tracer.Start(ctx, "PlanService.Adjust",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	current, err := s.activeOrBootstrap(ctx, userID)
	if err != nil {
		return nil, err
	}

	recentSE, err := s.diaryRepo.RecentEfficiencies(ctx, userID, engine.MinAdjustmentHistory)
	if err != nil {
		return nil, err
	}

	// Forecast failures degrade the advisor to its rule path.
	prediction, err := s.forecastClient.Predict(ctx, userID)
	if err != nil {
		log.Printf("[plan] forecast unavailable for user %s: %v", userID, err)
		prediction = nil
	}

	adjustment, err := engine.NewTIBAdvisor(s.cfg).Recommend(current.ToEnginePrescription(), recentSE, prediction)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("adjustment.delta", adjustment.Delta),
		attribute.String("adjustment.basis", string(adjustment.Basis)),
		attribute.Float64("adjustment.confidence", adjustment.Confidence),
	)

	next := current.ToEnginePrescription().WithTIB(adjustment.ProposedTIB)
	next.Week = current.Week + 1
	if err := next.Validate(); err != nil {
		return nil, err
	}

	stored := domain.FromEnginePrescription(userID, next)
	if err := s.prescriptionRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &domain.AdjustPlanResponse{
		Prescription:      stored.ToResponse(),
		Delta:             adjustment.Delta,
		Basis:             string(adjustment.Basis),
		Confidence:        adjustment.Confidence,
		Explanation:       adjustment.Explanation,
		RiskFactors:       adjustment.RiskFactors,
		ProtectiveFactors: adjustment.ProtectiveFactors,
	}, nil
}

// activeOrBootstrap returns the active prescription, deriving and
// persisting the week-1 window from the profile on first use. A user
// with no profile cannot have a plan; ErrNoProfile propagates.
func (s *planService) activeOrBootstrap(ctx context.Context, userID uuid.UUID) (*domain.Prescription, error) {
	prescription, err := s.prescriptionRepo.GetActive(ctx, userID)
	if err == nil {
		return prescription, nil
	}
	if !errors.Is(err, domain.ErrNoPrescription) {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	initial := engine.InitialPrescription(profile.ToEngineProfile())
	stored := domain.FromEnginePrescription(userID, initial)
	if err := s.prescriptionRepo.Create(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}
