package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/chess-tournament/brackets"
	"github.com/Dosada05/chess-tournament/config"
	"github.com/Dosada05/chess-tournament/db"
	"github.com/Dosada05/chess-tournament/handlers"
	"github.com/Dosada05/chess-tournament/logging"
	"github.com/Dosada05/chess-tournament/middleware"
	"github.com/Dosada05/chess-tournament/repositories"
	api "github.com/Dosada05/chess-tournament/routes"
	"github.com/Dosada05/chess-tournament/scheduler"
	"github.com/Dosada05/chess-tournament/services"
	"github.com/Dosada05/chess-tournament/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("application failed", zap.Error(err))
		_ = closeLog()
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handlers.SetLogger(logger)
	store := repositories.NewMemoryStore()

	var persister services.Persister
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer closeDB(dbConn, logger)
		if err := db.Migrate(ctx, dbConn); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		snapshots := repositories.NewPostgresSnapshotRepository(dbConn)
		if err := warmLoad(ctx, store, snapshots); err != nil {
			return err
		}
		persister = snapshots
		logger.Info("database connection established")
	} else {
		logger.Warn("DATABASE_URL not set, state is kept in memory only")
	}

	var board repositories.LeaderboardRepository
	if cfg.RedisURL != "" {
		b, err := repositories.NewRedisLeaderboardRepository(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis leaderboard: %w", err)
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Error("failed to close redis client", zap.Error(err))
			}
		}()
		board = b
		logger.Info("redis leaderboard enabled")
	}

	var archiver services.Archiver
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("cloudflare r2 uploader: %w", err)
		}
		archiver = storage.NewResultsArchiver(uploader, logger)
		logger.Info("standings archiving enabled", zap.String("bucket", cfg.R2.BucketName))
	}

	hub := brackets.NewHub(logger)
	go hub.Run(ctx)

	collab := services.Collaborators{
		Store:     store,
		Notifier:  hub,
		Mailer:    newMailer(cfg),
		Persister: persister,
		Archiver:  archiver,
		Logger:    logger,
	}
	ledger := services.NewLedger(collab, board)
	generator := services.NewScheduleGenerator(collab, ledger)
	tournamentService := services.NewTournamentService(collab, ledger, generator, cfg.InvitationTTL)
	resultService := services.NewResultService(collab, ledger, tournamentService)
	matchService := services.NewMatchService(collab)
	participantService := services.NewParticipantService(collab)

	cron := scheduler.New(tournamentService, logger)
	if err := cron.Start(scheduler.Config{
		StatusPushSpec:      cfg.StatusPushSpec,
		InvitationSweepSpec: cfg.InvitationSweepSpec,
	}); err != nil {
		return err
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey, tokenTTL)
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(auth, participantService, cfg.AdminToken),
		Participant: handlers.NewParticipantHandler(participantService, tournamentService),
		Tournament:  handlers.NewTournamentHandler(tournamentService, matchService),
		Match:       handlers.NewMatchHandler(matchService, resultService),
		WebSocket:   handlers.NewWebSocketHandler(hub, auth, cfg.CORSAllowedOrigins),
	}, auth, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		cron.Stop(context.Background())
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	cron.Stop(shutdownCtx)
	logger.Info("shutting down server", zap.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", zap.Error(closeErr))
		}
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

func warmLoad(ctx context.Context, store *repositories.MemoryStore, snapshots repositories.SnapshotRepository) error {
	participants, err := snapshots.LoadParticipants(ctx)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	tournaments, err := snapshots.LoadTournaments(ctx)
	if err != nil {
		return fmt.Errorf("load tournaments: %w", err)
	}
	return repositories.Restore(store, participants, tournaments)
}

func newMailer(cfg *config.Config) services.Mailer {
	switch cfg.MailProvider {
	case config.MailSMTP:
		return services.NewSMTPMailer(services.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	case config.MailResend:
		return services.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	default:
		return services.NopMailer{}
	}
}

func closeDB(dbConn *sql.DB, logger *zap.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", zap.Error(err))
		return
	}
	logger.Info("database connection closed")
}
