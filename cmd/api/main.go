package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/config"
	"github.com/xavierca1/frontdesk/internal/infra/database"
	httpserver "github.com/xavierca1/frontdesk/internal/infra/http"
	"github.com/xavierca1/frontdesk/internal/infra/http/handlers"
	"github.com/xavierca1/frontdesk/internal/infra/http/middleware"
	"github.com/xavierca1/frontdesk/internal/infra/integration/gcal"
	"github.com/xavierca1/frontdesk/internal/infra/mail"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/infra/session"
	"github.com/xavierca1/frontdesk/internal/infra/worker"
	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, ServiceName: "frontdesk-api"})
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	// 1. Database
	db, err := database.NewDBConnection(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		applied, err := database.ApplyMigrations(ctx, db)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Info("migrations applied", zap.Strings("files", applied))
		}
	}

	// 2. Repositories
	leadRepo := database.NewLeadRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	userRepo := database.NewUserRepository(db)
	auditRepo := database.NewAuditLogRepository(db)
	tokenRepo := database.NewCalendarTokenRepository(db)
	maintenance := database.NewMaintenanceRepository(db)

	// 3. Adapters
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	metrics := middleware.DomainMetrics{}
	audit := usecase.NewAuditTrail(auditRepo)

	var notifier usecase.LeadNotifier
	var backupMailer usecase.BackupMailer
	if cfg.MailEnabled() {
		sender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.NotifyTo, loc)
		notifier = sender
		backupMailer = sender
	}

	// 4. Google Calendar mirror, through RabbitMQ when configured
	var oauth handlers.OAuthFlow
	var gateway usecase.CalendarEventGateway
	if cfg.GoogleEnabled() {
		client := gcal.NewClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL, cfg.Google.CalendarID, tokenRepo, loc)
		oauth = client
		gateway = client
	}
	syncUC := usecase.NewCalendarSyncUseCase(bookingRepo, tokenRepo, gateway, audit, metrics)

	var publisher usecase.CalendarSyncPublisher
	var rabbit *queue.RabbitMQ
	if gateway != nil {
		if cfg.RabbitMQ.URL != "" {
			rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
			if err != nil {
				return err
			}
			defer rabbit.Close()

			publisher = queue.NewProducer(rabbit.Ch)
			consumerCh, err := rabbit.Conn.Channel()
			if err != nil {
				return err
			}
			go func() {
				if err := queue.NewWorker(consumerCh, syncUC).Start(ctx, queue.QueueName); err != nil {
					log.Error("calendar sync worker failed", zap.Error(err))
				}
			}()
		} else {
			log.Info("RABBITMQ_URL not set, applying calendar sync in-process")
			publisher = queue.NewInlinePublisher(syncUC)
		}
	}

	// 5. Use cases
	leadUC := usecase.NewLeadUseCase(leadRepo, audit, notifier, metrics, cfg.Webhook.DefaultChiropractor)
	bookingUC := usecase.NewBookingUseCase(bookingRepo, leadRepo, publisher, audit, metrics, loc)
	grid := usecase.GridConfig{Open: cfg.Calendar.OpenHour * 60, Close: cfg.Calendar.CloseHour * 60, Step: cfg.Calendar.SlotStep}
	calendarUC := usecase.NewCalendarUseCase(bookingRepo, grid, loc)
	statsUC := usecase.NewStatsUseCase(leadRepo, bookingRepo, loc)
	authUC := usecase.NewAuthUseCase(userRepo, sessions, audit)
	backupUC := usecase.NewBackupUseCase(leadRepo, bookingRepo, auditRepo, maintenance, backupMailer)

	// 6. Workers
	go worker.NewBookingCompletionWorker(bookingUC, cfg.CompletionInterval).Start(ctx)
	if backupMailer != nil {
		go worker.NewBackupWorker(backupUC, cfg.Mail.BackupTo, cfg.BackupInterval).Start(ctx)
	}

	// 7. Router
	var brokerState handlers.ConnectionState
	if rabbit != nil {
		brokerState = rabbit.Conn
	}
	h := httpserver.Handlers{
		Auth:      handlers.NewAuthHandler(authUC),
		Leads:     handlers.NewLeadHandler(leadUC),
		Bookings:  handlers.NewBookingHandler(bookingUC),
		Calendar:  handlers.NewCalendarHandler(calendarUC, sessions, cfg.BaseURL),
		Stats:     handlers.NewStatsHandler(statsUC),
		Audit:     handlers.NewAuditHandler(audit),
		Backup:    handlers.NewBackupHandler(backupUC),
		Google:    handlers.NewGoogleHandler(syncUC, oauth, sessions, returnURL(cfg)),
		Heartbeat: handlers.NewHeartbeatHandler(maintenance),
		Health:    handlers.NewHealthHandler(maintenance, brokerState, cfg.GoogleEnabled(), cfg.MailEnabled(), version),
		Webhook:   handlers.NewWebhookHandler(leadUC, cfg.Webhook.Secret),
	}
	limiters := httpserver.NewLimiters(cfg.TrustedProxies)
	go limiters.Login.Cleanup(ctx.Done())
	go limiters.Webhook.Cleanup(ctx.Done())

	router := httpserver.NewRouter(h, httpserver.Options{
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustedProxies:    cfg.TrustedProxies,
		PrometheusEnabled: cfg.PrometheusEnabled,
		Sessions:          sessions,
	}, limiters)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("front desk api listening", zap.String("addr", cfg.ListenAddr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// returnURL is where the browser lands after the Google consent screen.
func returnURL(cfg *config.Config) string {
	if cfg.FrontendURL == "" {
		return ""
	}
	return strings.TrimSuffix(cfg.FrontendURL, "/") + "/"
}
