package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-iot-telemetry/internal/config"
	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/transport/http/handler"
	appmiddleware "github.com/go-iot-telemetry/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// background work owned by the router's rate limiters.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, on public credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)
	// Per-IP budget for ingest; every call is one CoreIoT round trip.
	ingestRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.IngestRatePerSec), cfg.IngestBurst)

	svcs := buildServices(cfg, deps)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(svcs.sessions)
	userH := handler.NewUserHandler(svcs.users)
	telemetryH := handler.NewTelemetryHandler(svcs.telemetry)
	forecastH := handler.NewForecastHandler(svcs.predictor)
	alarmH := handler.NewAlarmHandler(svcs.alarms)
	notifH := handler.NewNotificationHandler(svcs.notifications)
	adminH := handler.NewAdminHandler(svcs.trainer, deps.TrainingPool)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/me", userH.Me)
			r.Put("/users/me/coreiot-token", userH.UpdateCoreIoTToken)

			r.Route("/coreiot", func(r chi.Router) {
				r.With(ingestRL.Limit).Get("/coreiot-data", telemetryH.Ingest)
				r.Get("/latest", telemetryH.Latest)
				r.Get("/daily-data", telemetryH.DailyData)
				r.Post("/fan", telemetryH.Fan)
			})

			r.Get("/forecast/predict", forecastH.Predict)

			r.Route("/alarms", func(r chi.Router) {
				r.Get("/", alarmH.List)
				r.Post("/", alarmH.Create)
				r.Get("/{id}", alarmH.Get)
				r.Patch("/{id}", alarmH.Update)
				r.Delete("/{id}", alarmH.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notifH.List)
				r.Post("/read-all", notifH.MarkAllRead)
				r.Post("/{id}/read", notifH.MarkAsRead)
				r.Delete("/{id}", notifH.Delete)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Post("/admin/users/{id}/train", adminH.Train)
				r.Delete("/admin/users/{id}/models", adminH.ForgetModels)
			})
		})
	})

	return r
}
