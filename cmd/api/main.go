// Insomnia Coach API
//
// REST API for an adaptive insomnia coaching program.
//
//	@title			Insomnia Coach API
//	@version		1.0
//	@description	Daily sleep reports drive a per-user decision engine: belief tracking, intervention selection, weekly sleep-window titration, and just-in-time reminders.
//
//	@BasePath	/v1
//
//	@tag.name			users
//	@tag.description	User management endpoints
//
//	@tag.name			daily-reports
//	@tag.description	Daily self-report and reminder evaluation endpoints
//
//	@tag.name			profile
//	@tag.description	Chronotype questionnaire and sleep profile endpoints
//
//	@tag.name			plan
//	@tag.description	Sleep-window prescription endpoints
//
//	@tag.name			decisions
//	@tag.description	Decision audit log endpoints
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/restwise/insomnia-coach/internal/api"
	"github.com/restwise/insomnia-coach/internal/api/handler"
	"github.com/restwise/insomnia-coach/internal/config"
	"github.com/restwise/insomnia-coach/internal/domain"
	"github.com/restwise/insomnia-coach/internal/engine"
	"github.com/restwise/insomnia-coach/internal/forecast"
	"github.com/restwise/insomnia-coach/internal/llm"
	"github.com/restwise/insomnia-coach/internal/repository"
	"github.com/restwise/insomnia-coach/internal/seed"
	"github.com/restwise/insomnia-coach/internal/service"
	"github.com/restwise/insomnia-coach/internal/telemetry"
)

func main() {
	// Load configuration
	cfg := config.Load()

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}

	// Initialize tracing (no-op when Langfuse is not configured)
	shutdownTracer, err := telemetry.InitTracer(context.Background(), cfg, "insomnia-coach-api")
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	// Connect to database
	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.DiaryEntry{},
		&domain.SleepProfile{},
		&domain.Prescription{},
		&domain.DecisionRecord{},
		&domain.EngineSnapshot{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	if cfg.Seed {
		log.Println("Seeding database with sample data (SEED=true)...")
		if err := seed.Run(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	diaryRepo := repository.NewDiaryRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	decisionRepo := repository.NewDecisionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Initialize collaborators
	forecastClient := forecast.NewClient(forecast.Config{
		BaseURL: cfg.ForecastBaseURL,
		APIKey:  cfg.ForecastAPIKey,
	})
	if !forecastClient.IsEnabled() {
		log.Println("Forecast collaborator not configured, advisor runs on rules only")
	}

	// Initialize OpenAI client (may be nil if not configured)
	openaiClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAICoachModel)
	var coachLLM llm.CoachLLM
	if openaiClient != nil {
		coachLLM = openaiClient
	} else {
		log.Println("Warning: OpenAI API key not configured, coaching messages will be omitted")
	}

	// Initialize services
	registry := engine.NewRegistry()
	userService := service.NewUserService(userRepo)
	profileService := service.NewProfileService(userRepo, profileRepo, prescriptionRepo)
	planService := service.NewPlanService(engineCfg, userRepo, profileRepo, prescriptionRepo, diaryRepo, forecastClient)
	coachService := service.NewCoachService(registry, engineCfg, userRepo, diaryRepo,
		snapshotRepo, decisionRepo, profileRepo, prescriptionRepo, forecastClient, coachLLM)
	decisionService := service.NewDecisionService(userRepo, decisionRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	dailyReportHandler := handler.NewDailyReportHandler(coachService)
	profileHandler := handler.NewProfileHandler(profileService)
	planHandler := handler.NewPlanHandler(planService)
	decisionHandler := handler.NewDecisionHandler(decisionService)

	// Setup router
	router := api.NewRouter(userHandler, dailyReportHandler, profileHandler, planHandler, decisionHandler)
	routerHandler := router.Setup()

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, routerHandler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
