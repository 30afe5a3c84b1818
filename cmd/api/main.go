package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"stagecrew/config"
	"stagecrew/internal/adapters/auth"
	"stagecrew/internal/adapters/clock"
	"stagecrew/internal/adapters/email"
	delivery "stagecrew/internal/delivery/http"
	"stagecrew/internal/delivery/http/controllers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/repository/postgres"
	"stagecrew/internal/services"
)

// @title StageCrew Shift Scheduling API
// @version 1.0
// @description Helper shift scheduling and assignment engine for club events.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	templateRepo := postgres.NewTemplateRepository(db)
	eventRepo := postgres.NewEventInstanceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	waitlistRepo := postgres.NewWaitlistRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	directory := postgres.NewDirectoryRepository(db)

	// Adapters
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddr,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	jwt := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(10)
	sysClock := clock.NewSystemClock()

	// Services
	notifier := services.NewNotificationService(directory, mailer, renderer, cfg.BaseURL)
	conflicts := services.NewConflictService(assignmentRepo, reservationRepo)
	waitlist := services.NewWaitlistService(scheduleRepo, eventRepo, waitlistRepo, notifier, sysClock, cfg.OfferResponseWindow, logger)
	assignments := services.NewAssignmentService(scheduleRepo, eventRepo, assignmentRepo, conflicts, waitlist, notifier, sysClock, logger)
	tokens := services.NewTokenService(assignmentRepo, waitlistRepo, scheduleRepo, eventRepo, assignments, waitlist, sysClock, cfg.CancelCutoffWindow, cfg.FeedbackGracePeriod)
	templates := services.NewTemplateService(templateRepo)
	events := services.NewEventInstanceService(eventRepo)
	expansion := services.NewExpansionService(templateRepo, eventRepo, scheduleRepo)
	reservations := services.NewReservationService(eventRepo, reservationRepo)
	identity := services.NewIdentityService(staffRepo, hasher, jwt)

	// HTTP
	mux := delivery.NewRouter(delivery.Controllers{
		Auth:       controllers.NewAuthController(logger, identity),
		Template:   controllers.NewTemplateController(logger, templates),
		Event:      controllers.NewEventController(logger, events),
		Schedule:   controllers.NewScheduleController(logger, expansion),
		Assignment: controllers.NewAssignmentController(logger, assignments),
		Waitlist:   controllers.NewWaitlistController(logger, waitlist),
		Token:      controllers.NewTokenController(logger, tokens),
		Conflict:   controllers.NewConflictController(logger, conflicts),
		Catalog:    controllers.NewCatalogController(logger, reservations),
	}, jwt, logger)

	var handler http.Handler = mux
	handler = middleware.CORS(strings.Split(cfg.AllowedOrigins, ","), handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Offer expiry sweep. Expired offers cascade to the next queued
	// candidate even when nobody clicks anything.
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := waitlist.SweepExpiredOffers(ctx)
				if err != nil {
					logger.Error("offer sweep failed", "err", err)
					continue
				}
				if n > 0 {
					logger.Info("expired offers swept", "count", n)
				}
			}
		}
	}()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
