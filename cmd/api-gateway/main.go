package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/mru-results-api/api/swagger"
	"github.com/noah-isme/mru-results-api/internal/app"
	"github.com/noah-isme/mru-results-api/internal/handler"
	"github.com/noah-isme/mru-results-api/internal/middleware"
	"github.com/noah-isme/mru-results-api/pkg/config"
	"github.com/noah-isme/mru-results-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/mru-results-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/mru-results-api/pkg/middleware/requestid"
)

// @title MRU Results API
// @version 1.0.0
// @description Remote result synchronisation and academic reporting
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to build services", zap.Error(err))
	}
	defer container.Close()

	if recovered, err := container.Sync.RecoverInterrupted(ctx); err != nil {
		logr.Warn("failed to recover interrupted sync runs", zap.Error(err))
	} else if recovered > 0 {
		logr.Info("interrupted sync runs paused", zap.Int("count", recovered))
	}
	container.Queue.Start(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(container.Metrics, "/metrics", "/health", "/ready"))

	checks := map[string]handler.Pinger{
		"local_database": container.LocalDB,
	}
	if container.Redis != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return container.Redis.Ping(ctx).Err()
		})
	}
	handler.RegisterObservability(r, handler.NewMetricsHandler(container.Metrics, checks))
	handler.RegisterRoutes(r, cfg.APIPrefix,
		handler.NewSyncHandler(container.Sync),
		handler.NewAcademicHandler(container.Reports),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
}
