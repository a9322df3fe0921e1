package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/database"
	"github.com/knowlympics/knowlympics-backend/internal/handler"
	"github.com/knowlympics/knowlympics-backend/internal/logger"
	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/knowlympics/knowlympics-backend/internal/router"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
	"github.com/knowlympics/knowlympics-backend/internal/worker"
	"github.com/rs/zerolog"
)

const sweepInterval = time.Minute

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Int("pass_threshold", cfg.PassThreshold).
		Msg("Starting Knowlympics Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	chapterRepo := repository.NewChapterRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)

	// ─── Quiz Engine ───────────────────────────────────────────────────
	catalog := service.NewQuizCatalog(quizRepo, questionRepo, rdb, cfg.QuizCacheTTL, log)
	engine := quiz.NewEngine(catalog, catalog, service.NewAttemptSubmitter(rdb),
		quiz.WithPassThreshold(cfg.PassThreshold),
		quiz.WithLogger(log),
	)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, userRepo, log)
	subjectService := service.NewSubjectService(subjectRepo, chapterRepo, log)
	quizService := service.NewQuizService(quizRepo, questionRepo, catalog, log)
	sessionService := service.NewQuizSessionService(engine, log)
	attemptService := service.NewAttemptService(attemptRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, attemptRepo, sessionService)
	exportService := service.NewExportService(attemptRepo, rdb, cfg.ExportTTL, log)
	reminderService := service.NewReminderService(userRepo, analyticsService, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, log),
		Subject: handler.NewSubjectHandler(subjectService, log),
		Quiz:    handler.NewQuizHandler(quizService, log),
		Session: handler.NewSessionHandler(sessionService, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		Attempt: handler.NewAttemptHandler(attemptService, analyticsService, log),
		Export:  handler.NewExportHandler(exportService, log),
		Admin:   handler.NewAdminHandler(analyticsService, sessionService, log),
		System:  handler.NewSystemHandler(rdb, database.NewPinger(pool, rdb), engine, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	run := func(start func(context.Context)) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			start(workerCtx)
		}()
	}

	run(worker.NewAttemptWorker(attemptRepo, rdb, log).Start)
	run(worker.NewExportWorker(exportService, rdb, log).Start)
	run(worker.NewReminderWorker(reminderService, cfg.ReminderInterval, log).Start)
	run(worker.NewSessionJanitor(sessionService, sweepInterval, cfg.SessionRetention, log).Start)

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()
	r := router.SetupRouter(authService, authLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; the attempt worker flushes its batch.
	workerCancel()
	workers.Wait()

	log.Info().Int("sessions_in_progress", engine.InProgressCount()).Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
