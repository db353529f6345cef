package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "congregation/internal/adapters/email"
	web "congregation/internal/adapters/http"
	"congregation/internal/adapters/http/perf"
	"congregation/internal/adapters/storage"
	attendanceStore "congregation/internal/adapters/storage/attendance"
	auditStore "congregation/internal/adapters/storage/audit"
	memberStore "congregation/internal/adapters/storage/member"
	"congregation/internal/application/orchestrators"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := loadDotEnv(".env"); err != nil {
		log.Fatalf("failed to read .env: %v", err)
	}
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Pragmas in the DSN apply to every pooled connection, not just the first.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		AttendanceStore: attendanceStore.NewSQLiteStore(timedDB),
		MemberStore:     memberStore.NewSQLiteStore(timedDB),
		AuditStore:      auditStore.NewSQLiteStore(timedDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed synthetic data for development only
	if !cfg.production() {
		res, err := orchestrators.ExecuteSeedSynthetic(ctx, orchestrators.SyntheticSeedDeps{
			MemberStore:     stores.MemberStore,
			AttendanceStore: stores.AttendanceStore,
		})
		if err != nil {
			log.Fatalf("failed to seed synthetic data: %v", err)
		}
		if !res.Skipped {
			log.Printf("Synthetic seed data loaded (dev mode): %d members, %d records", res.Members, res.Records)
		}
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.MailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.production() {
			log.Println("WARNING: CONGREGATION_RESEND_KEY is not set; attendance digests are NOT delivered in production")
		} else {
			log.Println("Email sender configured (noop, set CONGREGATION_RESEND_KEY for real delivery)")
		}
	}

	handler := web.NewRouter(ctx, web.Config{
		CSRFKey:         cfg.CSRFKey,
		SecureCookies:   cfg.production(),
		AllowedOrigins:  cfg.AllowedOrigins,
		HistoryPageSize: cfg.HistoryPageSize,
		MailFrom:        cfg.MailFrom,
		HealthCheck:     db.PingContext,
	}, stores, collector, sender)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("Congregation %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
