package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/rooms"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/settings"
)

type RouterConfig struct {
	Settings *settings.Service
	Rooms    rooms.Repository
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Logger   zerolog.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Room registry
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", listRoomsHandler(cfg.Rooms))
		r.Post("/", createRoomHandler(cfg.Rooms))
		r.Patch("/{roomID}", setRoomActiveHandler(cfg.Rooms))
	})

	// Availability configuration and resolution
	r.Route("/availability", func(r chi.Router) {
		r.Get("/settings", getSettingsHandler(cfg.Settings))
		r.Put("/settings", updateSettingsHandler(cfg.Settings))

		// Room-only actions, validated against the registry
		r.Post("/rooms/{roomID}/copy-clinic-hours", copyClinicHoursHandler(cfg.Settings, cfg.Rooms))
		r.Delete("/rooms/{roomID}/override", removeOverrideHandler(cfg.Settings, cfg.Rooms))

		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/schedule", getScheduleHandler(cfg.Settings))
			r.Put("/hours/{weekday}", setHoursHandler(cfg.Settings))
			r.Post("/clear", clearHoursHandler(cfg.Settings))

			r.Put("/exceptions", putExceptionHandler(cfg.Settings))
			r.Delete("/exceptions/{date}", deleteExceptionHandler(cfg.Settings))

			r.Get("/days/{date}", getDayHandler(cfg.Settings))
			r.Get("/days/{date}/slots", getSlotsHandler(cfg.Settings))
		})
	})

	return r
}
