package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/xavierca1/frontdesk/internal/infra/http/handlers"
	"github.com/xavierca1/frontdesk/internal/infra/http/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Leads     *handlers.LeadHandler
	Bookings  *handlers.BookingHandler
	Calendar  *handlers.CalendarHandler
	Stats     *handlers.StatsHandler
	Audit     *handlers.AuditHandler
	Backup    *handlers.BackupHandler
	Google    *handlers.GoogleHandler
	Heartbeat *handlers.HeartbeatHandler
	Health    *handlers.HealthHandler
	Webhook   *handlers.WebhookHandler
}

type Options struct {
	AllowedOrigins    []string
	TrustedProxies    []string
	PrometheusEnabled bool
	Sessions          middleware.SessionParser
}

// Limiters are exposed so main can run their cleanup loops.
type Limiters struct {
	Login   *middleware.IPRateLimiter
	Webhook *middleware.IPRateLimiter
}

func NewLimiters(trustedProxies []string) Limiters {
	return Limiters{
		// login: 1 request every 2 seconds, burst of 5
		Login: middleware.NewIPRateLimiter(rate.Every(2*time.Second), 5, 10*time.Minute, trustedProxies),
		// webhook: 10 requests per minute, burst of 10
		Webhook: middleware.NewIPRateLimiter(rate.Every(6*time.Second), 10, 10*time.Minute, trustedProxies),
	}
}

func NewRouter(h Handlers, opts Options, limiters Limiters) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.SignatureHeader},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Handle)
	if opts.PrometheusEnabled {
		r.Handle("/metrics", middleware.MetricsHandler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/heartbeat", h.Heartbeat.Handle)
		r.With(limiters.Login.Middleware()).Post("/auth/login", h.Auth.Login)
		r.With(limiters.Webhook.Middleware()).Post("/webhooks/leads", h.Webhook.Handle)
		r.Get("/google/callback", h.Google.Callback)
		r.Get("/calendar/feed.ics", h.Calendar.Feed)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(opts.Sessions))

			r.Get("/me", h.Auth.Me)

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", h.Leads.List)
				r.Post("/", h.Leads.Create)
				r.Get("/{id}", h.Leads.Get)
				r.Put("/{id}", h.Leads.Update)
				r.Delete("/{id}", h.Leads.Delete)
				r.Patch("/{id}/status", h.Leads.UpdateStatus)
				r.Post("/{id}/book", h.Bookings.BookLead)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", h.Bookings.List)
				r.Post("/", h.Bookings.Create)
				r.Put("/{id}", h.Bookings.Update)
				r.Delete("/{id}", h.Bookings.Delete)
			})

			r.Get("/calendar/week", h.Calendar.Week)
			r.Get("/calendar/day", h.Calendar.Day)
			r.Get("/calendar/feed-url", h.Calendar.FeedURL)

			r.Get("/stats", h.Stats.Get)
			r.Get("/audit-logs", h.Audit.List)
			r.Get("/backup", h.Backup.Export)

			r.Get("/google/connect", h.Google.Connect)
			r.Get("/google/status", h.Google.Status)
			r.Delete("/google", h.Google.Disconnect)
		})
	})

	return r
}
