package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/forecast"
	"github.com/restwise/insomnia-coach/internal/llm"
	"github.com/restwise/insomnia-coach/internal/repository"
)

// AdherenceWindowDays is the lookback for the reminder cascade's recent
// adherence rate.
const AdherenceWindowDays = 7

// CoachService runs the per-user decision engine over incoming daily
// reports and real-time reminder checks.
type CoachService interface {
	// ProcessDailyReport stores the report and runs one engine step.
	// Returns (response, isExisting, error); isExisting is true when an
	// idempotent duplicate returned the previously stored entry.
	ProcessDailyReport(ctx context.Context, userID uuid.UUID, req *domain.CreateDailyReportRequest) (*domain.DailyReportResponse, bool, error)

	// EvaluateReminder runs the just-in-time reminder cascade for the
	// user at the given instant and appends the decision to the audit
	// log.
	EvaluateReminder(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.DecisionResponse, string, error)
}

type coachService struct {
	registry         *engine.Registry
	cfg              engine.Config
	userRepo         repository.UserRepository
	diaryRepo        repository.DiaryRepository
	snapshotRepo     repository.SnapshotRepository
	decisionRepo     repository.DecisionRepository
	profileRepo      repository.ProfileRepository
	prescriptionRepo repository.PrescriptionRepository
	forecastClient   forecast.Client
	coachLLM         llm.CoachLLM
}

// NewCoachService wires the engine registry to its collaborators.
// coachLLM may be nil; messages are then omitted.
func NewCoachService(
	registry *engine.Registry,
	cfg engine.Config,
	userRepo repository.UserRepository,
	diaryRepo repository.DiaryRepository,
	snapshotRepo repository.SnapshotRepository,
	decisionRepo repository.DecisionRepository,
	profileRepo repository.ProfileRepository,
	prescriptionRepo repository.PrescriptionRepository,
	forecastClient forecast.Client,
	coachLLM llm.CoachLLM,
) CoachService {
	return &coachService{
		registry:         registry,
		cfg:              cfg,
		userRepo:         userRepo,
		diaryRepo:        diaryRepo,
		snapshotRepo:     snapshotRepo,
		decisionRepo:     decisionRepo,
		profileRepo:      profileRepo,
		prescriptionRepo: prescriptionRepo,
		forecastClient:   forecastClient,
		coachLLM:         coachLLM,
	}
}

func (s *coachService) ProcessDailyReport(ctx context.Context, userID uuid.UUID, req *domain.CreateDailyReportRequest) (*domain.DailyReportResponse, bool, error) {
	tracer := otel.Tracer("insomnia-coach-api/coach")
	ctx, span := tracer.Start(ctx, "CoachService.ProcessDailyReport",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.String("report.at", req.ReportedAt.Format(time.RFC3339)),
		),
	)
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	// Idempotent retries return the already-processed entry together
	// with the decision it produced.
	if req.ClientRequestID != nil && *req.ClientRequestID != "" {
		existing, err := s.diaryRepo.GetByClientRequestID(ctx, userID, *req.ClientRequestID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			resp := &domain.DailyReportResponse{Entry: existing.ToResponse()}
			if record, err := s.decisionRepo.LatestByCategory(ctx, userID, string(engine.DecisionInterventionSelection)); err == nil && record != nil {
				resp.Decision = record.ToResponse()
			}
			return resp, true, nil
		}
	}

	source := req.Source
	if source == "" {
		source = "diary"
	}
	entry := &domain.DiaryEntry{
		ID:              uuid.New(),
		UserID:          userID,
		ReportedAt:      req.ReportedAt.UTC(),
		Efficiency:      req.Efficiency,
		ISI:             req.ISI,
		OnsetLatencyMin: req.OnsetLatencyMin,
		WASOMin:         req.WASOMin,
		Quality:         req.Quality,
		Adhered:         req.Adhered,
		Mood:            req.Mood,
		Source:          source,
		ClientRequestID: req.ClientRequestID,
	}
	if err := s.diaryRepo.Create(ctx, entry); err != nil {
		return nil, false, err
	}

	eng, err := s.loadEngine(ctx, user)
	if err != nil {
		return nil, false, err
	}

	// The intervention credited with tonight's outcome is the one chosen
	// on the previous report.
	previousAction := engine.ActionNone
	if record, err := s.decisionRepo.LatestByCategory(ctx, userID, string(engine.DecisionInterventionSelection)); err != nil {
		return nil, false, err
	} else if record != nil {
		previousAction = engine.ActionID(record.Chosen)
	}

	obs := entry.ToObservation()
	if active, err := s.prescriptionRepo.GetActive(ctx, userID); err == nil {
		week := active.Week
		obs.TreatmentWeek = &week
	}

	// Belief update, reward, credit, and the next choice run as one
	// atomic unit inside the engine.
	result := eng.ProcessObservation(obs, previousAction)
	span.SetAttributes(
		attribute.String("decision.action", string(result.Action)),
		attribute.Float64("decision.reward", result.Reward),
		attribute.Bool("decision.rewarded", result.Rewarded),
	)
	if beliefJSON, err := json.Marshal(result.Belief); err == nil {
		span.SetAttributes(attribute.String("langfuse.observation.output", string(beliefJSON)))
	}

	decision := eng.SelectionDecision(result, entry.ReportedAt)
	record, err := domain.FromEngineDecision(decision)
	if err != nil {
		return nil, false, err
	}
	if err := s.decisionRepo.Append(ctx, record); err != nil {
		return nil, false, err
	}

	if err := s.persistSnapshot(ctx, userID, eng); err != nil {
		return nil, false, err
	}

	resp := &domain.DailyReportResponse{
		Entry:    entry.ToResponse(),
		Decision: record.ToResponse(),
	}
	resp.Message = s.composeMessage(ctx, decision)
	return resp, false, nil
}

func (s *coachService) EvaluateReminder(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.DecisionResponse, string, error) {
	tracer := otel.Tracer("insomnia-coach-api/coach")
	ctx, span := tracer.Start(ctx, "CoachService.EvaluateReminder",
		trace.WithAttributes(attribute.String("user.id", userID.String())),
	)
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	prescription, err := s.prescriptionRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	adherence, err := s.diaryRepo.AdherenceRate(ctx, userID, now.AddDate(0, 0, -AdherenceWindowDays))
	if err != nil {
		return nil, "", err
	}

	// A failed forecast fetch degrades to rule-only scheduling.
	prediction, err := s.forecastClient.Predict(ctx, userID)
	if err != nil {
		log.Printf("[coach] forecast unavailable for user %s: %v", userID, err)
		prediction = nil
	}

	eng, err := s.loadEngine(ctx, user)
	if err != nil {
		return nil, "", err
	}

	localNow := now.In(user.Location())
	decision := eng.Schedule(engine.SchedulerContext{
		Now:           localNow,
		Prescription:  prescription.ToEnginePrescription(),
		Profile:       profile.ToEngineProfile(),
		AdherenceRate: adherence,
		IsFreeDay:     user.IsFreeDay(now),
		Forecast:      prediction,
	})
	span.SetAttributes(
		attribute.String("decision.category", string(decision.Category)),
		attribute.String("decision.chosen", string(decision.Chosen)),
	)

	record, err := domain.FromEngineDecision(decision)
	if err != nil {
		return nil, "", err
	}
	if err := s.decisionRepo.Append(ctx, record); err != nil {
		return nil, "", err
	}

	resp := record.ToResponse()
	return &resp, s.composeMessage(ctx, decision), nil
}

// loadEngine returns the user's registered engine, rebuilding it from
// the latest snapshot (or fresh) on a cold start. Seeding from the
// user's stored seed keeps restored engines on the same decision
// sequence.
func (s *coachService) loadEngine(ctx context.Context, user *domain.User) (*engine.Engine, error) {
	if eng, ok := s.registry.Get(user.ID); ok {
		return eng, nil
	}

	stored, err := s.snapshotRepo.GetLatest(ctx, user.ID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	var eng *engine.Engine
	if stored != nil {
		snap, err := stored.ToEngineSnapshot()
		if err != nil {
			return nil, err
		}
		eng, err = engine.Restore(user.ID, snap, user.RandomSeed)
		if err != nil {
			return nil, err
		}
	} else {
		eng, err = engine.New(user.ID, s.cfg, user.RandomSeed)
		if err != nil {
			return nil, err
		}
	}

	s.registry.Put(user.ID, eng)
	return eng, nil
}

func (s *coachService) persistSnapshot(ctx context.Context, userID uuid.UUID, eng *engine.Engine) error {
	stored, err := domain.FromEngineSnapshot(userID, eng.Snapshot())
	if err != nil {
		return err
	}
	return s.snapshotRepo.Create(ctx, stored)
}

// composeMessage renders the decision through the LLM when configured.
// Failures degrade to an empty message; delivery must not depend on the
// LLM being reachable.
func (s *coachService) composeMessage(ctx context.Context, decision engine.Decision) string {
	if s.coachLLM == nil || decision.Chosen == engine.OptionNone {
		return ""
	}
	msg, err := s.coachLLM.ComposeMessage(ctx, decision)
	if err != nil {
		log.Printf("[coach] message composition failed: %v", err)
		return ""
	}
	return msg
}
