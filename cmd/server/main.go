package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/database"
	"github.com/medjourney/simulados-backend/internal/handler"
	"github.com/medjourney/simulados-backend/internal/logger"
	"github.com/medjourney/simulados-backend/internal/middleware"
	"github.com/medjourney/simulados-backend/internal/repository"
	"github.com/medjourney/simulados-backend/internal/router"
	"github.com/medjourney/simulados-backend/internal/service"
	"github.com/medjourney/simulados-backend/internal/storage"
	"github.com/medjourney/simulados-backend/internal/validator"
	"github.com/medjourney/simulados-backend/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// backend bundles the stores selected by STORE_DRIVER.
type backend struct {
	sessions service.SessionStore
	banks    service.BankStore
	limiter  middleware.Limiter
	pool     *pgxpool.Pool
	rdb      *redis.Client
}

func (b *backend) close() {
	if b.rdb != nil {
		_ = b.rdb.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("media", cfg.MediaDriver).
		Msg("Starting Simulados Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Stores ────────────────────────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	var be *backend
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		be = &backend{
			sessions: mem,
			banks:    mem,
			limiter:  middleware.NewMemoryLimiter(ctx, cfg.RateLimit, cfg.RateWindow),
		}
		log.Warn().Msg("Using in-memory store; data is lost on restart")
	case config.StoreDriverRedis:
		var err error
		be, err = connectRedisBackend(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize stores")
		}

		// ─── Start Background Workers ──────────────────────────────
		autosaveWorker := worker.NewAutosaveWorker(repository.NewAnswerRepository(be.pool), be.rdb, log)
		snapshotWorker := worker.NewExamSnapshotWorker(repository.NewExamRepository(be.pool), be.rdb, log)
		workers.Add(2)
		go func() {
			defer workers.Done()
			autosaveWorker.Start(workerCtx)
		}()
		go func() {
			defer workers.Done()
			snapshotWorker.Start(workerCtx)
		}()
	default:
		log.Fatal().Str("store", cfg.StoreDriver).Msg("Unknown STORE_DRIVER")
	}
	defer be.close()

	// ─── Media Storage ─────────────────────────────────────────────────
	objects, err := newObjectStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media storage")
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare media storage")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	sessionService := service.NewSessionService(be.sessions, log)
	examService := service.NewExamService(be.sessions, be.banks, log)
	bankService := service.NewQuestionBankService(be.banks, log)
	mediaService := service.NewMediaService(objects, cfg.MaxUploadBytes)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:         handler.NewExamHandler(examService),
		Session:      handler.NewSessionHandler(examService, sessionService),
		QuestionBank: handler.NewQuestionBankHandler(bankService),
		Media:        handler.NewMediaHandler(mediaService),
		WS:           handler.NewWSHandler(examService, sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, be.limiter, handlers, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queues to drain.
	workerCancel()
	workers.Wait()
	cancel()

	log.Info().Msg("Shutdown complete")
}

// connectRedisBackend wires the Redis fast lane in front of PostgreSQL.
func connectRedisBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.MaxDBConns, log)
	if err != nil {
		return nil, err
	}

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	examRepo := repository.NewExamRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)

	return &backend{
		sessions: repository.NewRedisSessionStore(rdb, examRepo, answerRepo, log),
		banks:    repository.NewQuestionBankRepository(pool),
		limiter:  middleware.NewRedisLimiter(rdb, cfg.RateLimit, cfg.RateWindow),
		pool:     pool,
		rdb:      rdb,
	}, nil
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	if cfg.MediaDriver == config.MediaDriverMinio {
		return storage.NewMinioStorage(cfg.Minio)
	}
	return storage.NewLocalStorage(cfg.UploadDir), nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
