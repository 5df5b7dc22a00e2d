package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/mru-results-api/internal/repository"
	"github.com/noah-isme/mru-results-api/internal/service"
	"github.com/noah-isme/mru-results-api/pkg/cache"
	"github.com/noah-isme/mru-results-api/pkg/config"
	"github.com/noah-isme/mru-results-api/pkg/database"
	"github.com/noah-isme/mru-results-api/pkg/jobs"
)

// Container holds the wired services shared by the API server and the CLI.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	LocalDB *sqlx.DB
	Remote  *sqlx.DB
	Redis   *redis.Client

	Metrics *service.MetricsService
	Cache   *service.CacheService
	Sync    *service.ResultSyncService
	Reports *service.AcademicReportService
	Queue   *jobs.Queue
}

// Build opens every connection and constructs the services. The remote
// database is opened lazily so an unreachable source surfaces on sync runs.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	localDB, err := database.NewLocal(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect local database: %w", err)
	}

	remoteDB, err := database.NewRemoteMySQL(cfg.RemoteDatabase)
	if err != nil {
		_ = localDB.Close()
		return nil, fmt.Errorf("open remote database: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, using in-process locks and no report cache", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logger)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logger, cfg.Reports.CacheEnabled && redisClient != nil)

	results := repository.NewResultRepository(localDB, cfg.Database.Driver)
	syncSvc := service.NewResultSyncService(
		repository.NewRemoteResultRepository(remoteDB),
		results,
		repository.NewSyncRunRepository(localDB),
		repository.NewSyncLockRepository(redisClient),
		nil,
		service.NewRecordTransformer(logger),
		metrics,
		validate,
		logger,
		service.ResultSyncConfig{
			DefaultRangeLimit: cfg.Sync.RangeLimit,
			MinRangeLimit:     cfg.Sync.MinRangeLimit,
			MaxRangeLimit:     cfg.Sync.MaxRangeLimit,
			UpsertMode:        cfg.Sync.UpsertMode,
			MinAcademicYear:   cfg.Sync.MinAcademicYear,
			LockTTL:           cfg.Sync.LockTTL,
			RemoteHost:        cfg.RemoteDatabase.Host,
			RemoteDatabase:    cfg.RemoteDatabase.Name,
		},
	)
	syncSvc.SetReportCache(cacheSvc)

	queue := jobs.NewQueue("result-sync", syncSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Sync.Workers,
		MaxRetries: 0,
		Logger:     logger,
	})
	syncSvc.SetQueue(queue)

	aggregator := service.NewAcademicAggregator(service.AcademicPolicy{MaxSemesterLoad: cfg.Reports.MaxSemesterLoad})
	reports := service.NewAcademicReportService(results, repository.NewCatalogRepository(localDB), aggregator, cacheSvc, cfg.Reports.CacheTTL, validate, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		LocalDB: localDB,
		Remote:  remoteDB,
		Redis:   redisClient,
		Metrics: metrics,
		Cache:   cacheSvc,
		Sync:    syncSvc,
		Reports: reports,
		Queue:   queue,
	}, nil
}

// Close stops the queue and releases every connection.
func (c *Container) Close() {
	c.Queue.Stop()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := c.Remote.Close(); err != nil {
		c.Logger.Warn("close remote database", zap.Error(err))
	}
	if err := c.LocalDB.Close(); err != nil {
		c.Logger.Warn("close local database", zap.Error(err))
	}
}
