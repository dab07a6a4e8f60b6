package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/step-challenge-api/api/swagger"
	"github.com/noah-isme/step-challenge-api/internal/handler"
	"github.com/noah-isme/step-challenge-api/internal/repository"
	"github.com/noah-isme/step-challenge-api/internal/router"
	"github.com/noah-isme/step-challenge-api/internal/service"
	"github.com/noah-isme/step-challenge-api/pkg/cache"
	"github.com/noah-isme/step-challenge-api/pkg/config"
	"github.com/noah-isme/step-challenge-api/pkg/database"
	"github.com/noah-isme/step-challenge-api/pkg/jobs"
	"github.com/noah-isme/step-challenge-api/pkg/logger"
)

// @title Step Challenge API
// @version 1.0.0
// @description Daily step submissions, leaderboards and admin audit for the campus step challenge
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := openStore(cfg, logr)
	if err != nil {
		logr.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	metrics := service.NewMetricsService()

	var boards service.BoardCache
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
		} else {
			redisBoards := repository.NewLeaderboardCache(client, cfg.Cache.Namespace, logr)
			defer redisBoards.Close() //nolint:errcheck
			boards = redisBoards
		}
	}
	cacheSvc := service.NewCacheService(boards, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	ledger := service.NewLedgerService(store, cacheSvc, metrics, logr)
	leaderboards := service.NewLeaderboardService(ledger, cacheSvc, cfg.Challenge.LeaderboardSize, logr)

	if cacheSvc.Enabled() {
		warmer := jobs.NewRefresher("leaderboard-warm", leaderboards.Warm, jobs.Config{
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		warmer.Start(context.Background())
		defer warmer.Stop()
		ledger.OnCommit(func() { warmer.Trigger() })
		warmer.Trigger()
	}

	rules, err := service.NewSubmissionValidator(validator.New(), service.SubmissionRules{
		StartDate: cfg.Challenge.StartDate,
		EndDate:   cfg.Challenge.EndDate,
		MinSteps:  cfg.Challenge.MinSteps,
		Campuses:  cfg.Challenge.Campuses,
	})
	if err != nil {
		logr.Fatal("invalid challenge configuration", zap.Error(err))
	}

	authenticator, err := service.NewCredentialAuthenticator(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		logr.Fatal("invalid admin credentials configuration", zap.Error(err))
	}
	authSvc := service.NewAuthService(authenticator, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "step-challenge-api",
	})

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Challenge.MaxScreenshotBytes,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, router.Handlers{
		Submission:  handler.NewSubmissionHandler(service.NewSubmissionService(ledger, rules, metrics, logr)),
		Leaderboard: handler.NewLeaderboardHandler(leaderboards),
		Admin:       handler.NewAdminHandler(service.NewAdminService(ledger, logr), service.NewExportService(ledger, logr, nil, nil)),
		Auth:        handler.NewAuthHandler(authSvc),
		Metrics:     handler.NewMetricsHandler(metrics, ledger),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced shutdown", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logr *zap.Logger) (service.RecordStore, func(), error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory, "":
		logr.Warn("using in-memory record store, data is lost on restart")
		return repository.NewMemoryDocumentRepository(nil), func() {}, nil
	case config.StoreDriverPostgres:
		db, err = database.NewPostgres(cfg.Database)
	case config.StoreDriverSQLite:
		db, err = database.NewSQLite(cfg.Store.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewDocumentRepository(db, cfg.Store.DocumentID)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, func() { _ = db.Close() }, nil
}
