package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/config"
	"github.com/example/studio-scheduler/internal/httpapi"
	"github.com/example/studio-scheduler/internal/logging"
	"github.com/example/studio-scheduler/internal/mail"
	"github.com/example/studio-scheduler/internal/meeting"
	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/persistence/sqlite"
)

// Outbound mail is paced at two sends per rolling second to stay inside the
// relay's volume policy.
const (
	sendLimit  = 2
	sendWindow = time.Second
)

// pollRunTimeout bounds a whole scheduled poll cycle.
const pollRunTimeout = 10 * time.Minute

func main() {
	// Optional; real deployments pass the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now
	newID := func() string { return uuid.NewString() }

	sessionRepo := sqlite.NewSessionRepository(pool, now)
	rateRepo := sqlite.NewRateRepository(pool, now)
	catalogRepo := sqlite.NewCatalogRepository(pool, now)
	identityRepo := sqlite.NewIdentityRepository(pool, now)
	bookingRepo := sqlite.NewBookingRepository(pool, now)
	tokenRepo := sqlite.NewTokenRepository(pool, now)

	tokenManager := meeting.NewTokenManager(tokenRepo, meeting.TokenManagerConfig{
		AuthURL:      cfg.Provider.AuthURL,
		APIBaseURL:   cfg.Provider.APIBaseURL,
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		AccountID:    cfg.Provider.AccountID,
		HTTPClient:   &http.Client{Timeout: cfg.Provider.Timeout},
		Logger:       logger,
	})
	meetingClient := meeting.NewClient(tokenManager, &http.Client{Timeout: cfg.Provider.Timeout})

	smtpSender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
	})
	simulated := mail.NewSimulatedSender(logger, nil)
	sender := mail.NewFallbackSender(smtpSender, simulated, logger)
	throttle := mail.NewThrottle(sendLimit, sendWindow, nil)

	rateService := application.NewRateService(rateRepo, now, logger)
	scheduleService := application.NewScheduleService(sessionRepo, rateService, newID, now, logger)
	recipientService := application.NewRecipientService(sessionRepo, bookingRepo, identityRepo,
		application.NewInstructorResolver(identityRepo, logger), logger)
	provisionService := application.NewProvisionService(sessionRepo, catalogRepo, meetingClient, now, logger)
	notificationService := application.NewNotificationService(recipientService, sender, throttle,
		application.NotificationConfig{From: cfg.Mail.From, Stakeholders: cfg.Mail.Stakeholders}, logger)
	pollerService := application.NewPollerService(sessionRepo, provisionService, notificationService,
		application.PollerConfig{
			LeadTime:         cfg.Poller.LeadTime,
			Window:           cfg.Poller.Window,
			Horizon:          cfg.Poller.Horizon,
			CandidateTimeout: cfg.Poller.CandidateStop,
		}, now, logger)

	metrics.Register()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Poller.CronSpec, func() {
		runCtx, cancel := context.WithTimeout(ctx, pollRunTimeout)
		defer cancel()
		if _, err := pollerService.RunOnce(runCtx, cfg.Poller.Forced); err != nil {
			logger.Error("scheduled poll cycle failed", "error", err)
		}
	}); err != nil {
		logger.Error("invalid poll cron spec", "spec", cfg.Poller.CronSpec, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Sessions:   httpapi.NewSessionHandler(provisionService, notificationService, logger),
		Schedules:  httpapi.NewScheduleHandler(scheduleService, logger),
		Poll:       httpapi.NewPollHandler(pollerService, logger),
		Secret:     cfg.SchedulerSecret,
		Middleware: []func(http.Handler) http.Handler{httpapi.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("studio scheduler listening", "addr", server.Addr, "poll_spec", cfg.Poller.CronSpec)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
