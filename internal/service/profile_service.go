package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/repository"
)

// ProfileService manages the chronotype/sleep-need profile derived from
// the onboarding questionnaire.
type ProfileService interface {
	// SubmitQuestionnaire scores the questionnaire into a profile and
	// stores it, replacing any previous profile. The first submission
	// also creates the week-1 prescription.
	SubmitQuestionnaire(ctx context.Context, userID uuid.UUID, req *domain.QuestionnaireRequest) (*domain.SleepProfileResponse, error)

	Get(ctx context.Context, userID uuid.UUID) (*domain.SleepProfileResponse, error)
}

type profileService struct {
	userRepo         repository.UserRepository
	profileRepo      repository.ProfileRepository
	prescriptionRepo repository.PrescriptionRepository
}

func NewProfileService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prescriptionRepo repository.PrescriptionRepository,
) ProfileService {
	return &profileService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		prescriptionRepo: prescriptionRepo,
	}
}

func (s *profileService) SubmitQuestionnaire(ctx context.Context, userID uuid.UUID, req *domain.QuestionnaireRequest) (*domain.SleepProfileResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := engine.FromQuestionnaire(req.ToQuestionnaire())
	if err != nil {
		return nil, err
	}

	stored := domain.FromEngineProfile(userID, profile)
	if err := s.profileRepo.Replace(ctx, stored); err != nil {
		return nil, err
	}

	// Re-administering the questionnaire updates the profile but never
	// resets an in-progress prescription.
	if _, err := s.prescriptionRepo.GetActive(ctx, userID); errors.Is(err, domain.ErrNoPrescription) {
		initial := engine.InitialPrescription(profile)
		if err := s.prescriptionRepo.Create(ctx, domain.FromEnginePrescription(userID, initial)); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	resp := stored.ToResponse()
	return &resp, nil
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*domain.SleepProfileResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := profile.ToResponse()
	return &resp, nil
}
