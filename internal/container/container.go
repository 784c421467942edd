package container

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/catalogsync/internal/cart"
	"storefront/catalogsync/internal/client"
	"storefront/catalogsync/internal/config"
	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/favorite"
	"storefront/catalogsync/internal/fetch"
	"storefront/catalogsync/internal/query"
	"storefront/catalogsync/internal/queue"
	"storefront/catalogsync/internal/reference"
	"storefront/catalogsync/internal/repository"
	"storefront/catalogsync/internal/service"
	"storefront/catalogsync/internal/session"
	"storefront/catalogsync/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config      *config.Config
	Client      client.CatalogClient
	Session     *session.JWTSession
	Colors      *reference.ColorTable
	Repository  repository.CatalogRepository
	Queue       queue.Queue
	Preferences *state.PreferenceWriter

	Service    *service.Service
	Storefront *service.Storefront

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
		Colors: reference.DefaultColorTable(),
	}
	clk := clock.New()

	ids, err := domain.NewIDShape(cfg.Catalog.IDPattern)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	catalogRepo := repository.NewCatalogRepository(db)
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	container.Repository = catalogRepo

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
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

	container.Session = session.NewJWTSession(cfg.Session.Token, clk)
	catalogClient := client.NewCatalogClient(cfg.Catalog, container.Session)
	container.Client = catalogClient

	fetcher := fetch.NewRetryPolicy(fetch.NewPageFetcher(catalogClient), clk, cfg.Catalog.RetryDelay)
	coordinator := fetch.NewCoordinator(fetcher, clk, cfg.Catalog.StaggerInterval, cfg.Catalog.MaxBackgroundChunks).
		WithFailureSink(queue.NewChunkRetrySink(redisQueue))

	container.Service = service.NewService(
		catalogRepo,
		fetcher,
		coordinator,
		redisQueue,
		clk,
		AdminFilters(cfg.Catalog.Admin),
		cfg.Sync.MaxChunkRetries,
		cfg.Sync.ClaimIdle,
	)

	preferenceStore := state.NewRedisPreferenceStore(rdb, cfg.Sync.PreferenceTTL)
	container.Preferences = state.NewPreferenceWriter(preferenceStore, cfg.Session.UserKey, clk, cfg.Sync.PreferenceQuiet)

	container.Storefront = service.NewStorefront(
		fetch.NewListController(fetcher, container.Preferences),
		favorite.NewTracker(catalogClient, container.Session, ids),
		cart.NewAdapter(catalogClient, container.Session, container.Colors, ids, cfg.Catalog.DefaultColor),
		preferenceStore,
		cfg.Session.UserKey,
	)

	return container, nil
}

// AdminFilters turns the configured admin selection into a catalog query.
func AdminFilters(cfg config.AdminFilterConfig) domain.FilterState {
	return query.Normalize(nil, query.LocalFilters{
		Category: cfg.Category,
		Gender:   cfg.Gender,
		Season:   cfg.Season,
		Sort:     domain.SortMode(cfg.Sort),
		PageSize: cfg.PageSize,
	})
}

// Run mirrors the configured catalog selection and then keeps retrying failed
// chunks until ctx ends.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := c.Service.SyncAll(ctx)
		return err
	})

	g.Go(func() error {
		return c.Service.RunRetryWorkers(ctx, c.Config.Sync.MaxWorkers)
	})

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.Preferences != nil {
		c.Preferences.Close()
	}
	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			log.Warnf("⚠️ Failed to close catalog client: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
