package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"radiolink/catalog/internal/client"
	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/metrics"
	"radiolink/catalog/internal/queue"
	"radiolink/catalog/internal/repository"
	"radiolink/catalog/internal/server"
	"radiolink/catalog/internal/service"
	"radiolink/catalog/internal/state"
	"radiolink/catalog/internal/taxonomy"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.CMSClient
	Repository   repository.ProductRepository
	Queue        queue.Queue
	StateManager state.CompareStateManager
	Metrics      *metrics.Metrics

	Service *service.Service
	Server  *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(),
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	productRepo := repository.NewProductRepository(db)
	if err := productRepo.EnsureSchema(ctx); err != nil {
		// the service still runs on the CMS alone
		log.Warnf("⚠️ Snapshot store unavailable: %v", err)
	}
	container.Repository = productRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if err := rdb.Ping(ctx).Err(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue

	container.StateManager = state.NewRedisStateManager(rdb, cfg.Compare.StorageKey, cfg.Compare.TTL())
	container.Client = client.NewCMSClient(cfg.CMS)

	container.Service = service.NewService(
		taxonomy.Default(),
		container.Client,
		productRepo,
		redisQueue,
		container.Metrics,
		cfg.Catalog,
		cfg.CMS.MaxRetries,
		cfg.Redis.ConsumerGroup,
		cfg.Redis.MinIdleTime,
	)

	container.Server = server.New(
		container.Service,
		container.StateManager,
		container.Metrics,
		cfg.Server,
		cfg.Compare,
		cfg.CMS.WebhookSecret,
	)

	return container, nil
}

// Run loads the catalog, then serves the API while workers keep it fresh
func (c *Container) Run(ctx context.Context) error {
	if err := c.Service.Refresh(ctx); err != nil {
		log.Warnf("⚠️ Starting with a degraded catalog: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	g.Go(func() error {
		return c.Service.RunScheduler(ctx)
	})

	g.Go(func() error {
		return c.Service.RunWorkers(ctx, c.Config.Catalog.Workers)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
