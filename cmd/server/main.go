package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chasfatacademy/exam-backend/internal/config"
	"github.com/chasfatacademy/exam-backend/internal/database"
	"github.com/chasfatacademy/exam-backend/internal/handler"
	"github.com/chasfatacademy/exam-backend/internal/logger"
	"github.com/chasfatacademy/exam-backend/internal/repository"
	"github.com/chasfatacademy/exam-backend/internal/router"
	"github.com/chasfatacademy/exam-backend/internal/service"
	"github.com/chasfatacademy/exam-backend/internal/validator"
	"github.com/chasfatacademy/exam-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Chasfat Exam Backend")

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
	studentRepo := repository.NewStudentRepository(pool)
	examinerRepo := repository.NewExaminerRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, examRepo, log)
	examinerService := service.NewExaminerService(examinerRepo, authService, log)
	courseService := service.NewCourseService(courseRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, courseRepo, sessionRepo, authService, rdb, log)
	accessGate := service.NewAccessGateService(pool, examRepo, sessionRepo, authService, log)
	sessionService := service.NewSessionService(cfg, pool, rdb, examRepo, sessionRepo, questionRepo, resultRepo, log)
	answerService := service.NewAnswerService(pool, rdb, answerRepo, sessionService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(studentService, examinerService, authService),
		StudentPortal: handler.NewStudentPortalHandler(studentService, accessGate),
		Session:       handler.NewSessionHandler(sessionService, answerService),
		Exam:          handler.NewExamHandler(examService),
		Course:        handler.NewCourseHandler(courseService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService, authService),
		WS:            handler.NewWSHandler(sessionService, answerService, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	expiryWorker := worker.NewExpiryWorker(cfg, sessionService, log)
	expiryWorker.Start()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.Setup(cfg, authService, handlers)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// 2. Stop the expiry worker and wait for an in-flight sweep.
	expiryWorker.Stop()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
