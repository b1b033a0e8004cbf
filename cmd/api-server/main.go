package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"playlog/database"
	"playlog/internal/catalog"
	"playlog/internal/config"
	"playlog/internal/logging"
	"playlog/internal/microservices/http-api/repository"
	"playlog/internal/microservices/http-api/server"
	"playlog/internal/microservices/http-api/service"
	"playlog/internal/storage"
	"playlog/internal/validation"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	slog.SetDefault(logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.Register(); err != nil {
		return err
	}

	// 1. Database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	// 2. Game catalog
	var tokens catalog.TokenStore = catalog.NewMemoryTokenStore()
	if cfg.RedisURL != "" {
		redisTokens, err := catalog.NewRedisTokenStore(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			// the in-process cache still works for a single replica
			logger.Warn("redis unavailable, caching catalog token in memory", "error", err)
		} else {
			defer redisTokens.Close()
			tokens = redisTokens
		}
	}
	igdb := catalog.NewClient(catalog.Options{
		ClientID:     cfg.IGDBClientID,
		ClientSecret: cfg.IGDBClientSecret,
		APIURL:       cfg.IGDBAPIURL,
		TokenURL:     cfg.TwitchTokenURL,
		Timeout:      cfg.CatalogTimeout,
		Tokens:       tokens,
		Logger:       logger,
	})
	if !igdb.Configured() {
		logger.Warn("IGDB_CLIENT_ID / IGDB_CLIENT_SECRET not set, game search will fail")
	}

	// 3. File storage
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(ctx, storage.Options{
		Development:   cfg.IsDevelopment(),
		UploadDir:     cfg.UploadDir,
		BucketURL:     cfg.BlobBucketURL,
		PublicBaseURL: cfg.BlobPublicBaseURL,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("could not open upload storage: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	if store.Backend() == "none" {
		logger.Warn("BLOB_BUCKET_URL not configured, uploads will return 503")
	}

	maxUpload, err := cfg.UploadMaxBytes()
	if err != nil {
		return err
	}

	// 4. Services and routes
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cpRepo := repository.NewCurrentlyPlayingRepository(db)

	deps := server.Dependencies{
		Auth:           service.NewAuthService(userRepo, repository.NewRefreshTokenRepository(db), cfg),
		Games:          service.NewGameService(gameRepo, reviewRepo, igdb),
		Reviews:        service.NewReviewService(reviewRepo, gameRepo),
		Playing:        service.NewCurrentlyPlayingService(cpRepo, gameRepo, logger),
		Users:          service.NewUserService(userRepo, reviewRepo, cpRepo),
		Uploads:        service.NewUploadService(store, logger),
		UploadMaxBytes: maxUpload,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		AccessLog: true,
		Metrics:   cfg.PrometheusEnabled,
	}
	if local, ok := store.(*storage.LocalStore); ok {
		deps.UploadDir = local.Dir()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", srv.Addr, "env", cfg.GoEnv, "uploads", store.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
