package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"congregation/internal/adapters/email"
	"congregation/internal/adapters/http/middleware"
	"congregation/internal/adapters/http/perf"
	attendanceStore "congregation/internal/adapters/storage/attendance"
	auditStore "congregation/internal/adapters/storage/audit"
	memberStore "congregation/internal/adapters/storage/member"
)

// Stores holds all storage dependencies.
type Stores struct {
	AttendanceStore attendanceStore.Store
	MemberStore     memberStore.Store
	AuditStore      auditStore.Store // optional; mutations skip auditing when nil
}

// Config carries the HTTP-facing settings resolved by cmd/server.
type Config struct {
	CSRFKey            []byte   // 32 bytes
	SecureCookies      bool     // production only
	AllowedOrigins     []string // CORS and CSRF trusted origins
	HistoryPageSize    int      // groups per history page
	RateLimitPerSecond int
	MailFrom           string
	HealthCheck        func(ctx context.Context) error // optional store ping for /healthz
}

// DefaultRateLimitPerSecond is the per-IP limit used when Config leaves it unset.
const DefaultRateLimitPerSecond = 20

// Handler serves the attendance JSON API.
type Handler struct {
	stores    *Stores
	collector *perf.Collector
	sender    email.Sender
	cfg       Config
}

// NewRouter wires the API routes and middleware.
// Middleware order, outer to inner: RequestID -> Timing -> Recoverer ->
// SecurityHeaders -> CORS -> RateLimit -> CSRF -> Actor -> routes.
// ctx bounds background work such as the rate limiter sweep.
func NewRouter(ctx context.Context, cfg Config, s *Stores, collector *perf.Collector, sender email.Sender) http.Handler {
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	if sender == nil {
		sender = email.NewNoopSender()
	}
	h := &Handler{stores: s, collector: collector, sender: sender, cfg: cfg}
	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerSecond, time.Second)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Timing(collector))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ActorHeader},
		ExposedHeaders:   []string{"Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(limiter))
	r.Use(middleware.CSRF(cfg.CSRFKey, cfg.SecureCookies, cfg.AllowedOrigins))
	r.Use(middleware.Actor)

	r.Get("/healthz", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/history", h.handleListHistory)
			r.Get("/history.csv", h.handleExportHistory)
			r.Post("/records", h.handleRecordAttendance)
			r.Delete("/records/{id}", h.handleDeleteRecord)
			r.Delete("/groups/{date}/{serviceType}", h.handleDeleteGroup)
		})

		r.Route("/members/{id}", func(r chi.Router) {
			r.Get("/attendance/summary", h.handleMemberSummary)
			r.Get("/attendance/streaks", h.handleMemberStreaks)
			r.Get("/attendance/calendar", h.handleMemberCalendar)
			r.Get("/attendance/day/{date}", h.handleMemberDay)
			r.Post("/digest", h.handleSendDigest)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/audit", h.handleAdminAudit)
			r.Get("/perf", h.handleAdminPerf)
		})
	})

	return r
}
