package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/restwise/insomnia-coach/docs"
	"github.com/restwise/insomnia-coach/internal/api/handler"
	"github.com/restwise/insomnia-coach/internal/api/middleware"
)

type Router struct {
	userHandler        *handler.UserHandler
	dailyReportHandler *handler.DailyReportHandler
	profileHandler     *handler.ProfileHandler
	planHandler        *handler.PlanHandler
	decisionHandler    *handler.DecisionHandler
}

func NewRouter(
	userHandler *handler.UserHandler,
	dailyReportHandler *handler.DailyReportHandler,
	profileHandler *handler.ProfileHandler,
	planHandler *handler.PlanHandler,
	decisionHandler *handler.DecisionHandler,
) *Router {
	return &Router{
		userHandler:        userHandler,
		dailyReportHandler: dailyReportHandler,
		profileHandler:     profileHandler,
		planHandler:        planHandler,
		decisionHandler:    decisionHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Tracing)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.userHandler.Create)

			// Per-user coaching resources
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", rt.userHandler.GetByID)

				r.Post("/questionnaire", rt.profileHandler.SubmitQuestionnaire)
				r.Get("/profile", rt.profileHandler.Get)

				r.Post("/daily-reports", rt.dailyReportHandler.Create)
				r.Post("/reminder-checks", rt.dailyReportHandler.EvaluateReminder)

				r.Get("/plan", rt.planHandler.Get)
				r.Post("/plan/adjustments", rt.planHandler.Adjust)

				r.Get("/decisions", rt.decisionHandler.List)
			})
		})
	})

	return r
}
