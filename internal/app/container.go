package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/commitment"
	"github.com/felixgeelhaar/vouch/internal/commitments/domain/trust"
	"github.com/felixgeelhaar/vouch/internal/commitments/infrastructure/cache"
	"github.com/felixgeelhaar/vouch/internal/commitments/infrastructure/persistence"
	"github.com/felixgeelhaar/vouch/internal/deadlines/application/services"
	"github.com/felixgeelhaar/vouch/internal/deadlines/domain/deadline"
	"github.com/felixgeelhaar/vouch/internal/deadlines/infrastructure/anthropic"
	"github.com/felixgeelhaar/vouch/internal/deadlines/infrastructure/resilience"
	sharedApplication "github.com/felixgeelhaar/vouch/internal/shared/application"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/vouch/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/vouch/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/vouch/pkg/config"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Tracer  *observability.Tracer
	Health  *observability.Health

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	CommitmentRepo commitment.Repository
	TrustEventRepo trust.Repository
	OutboxRepo     outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Deadline resolution. Breaker is nil when no API key is configured.
	Breaker          *resilience.GuardedGenerator
	DeadlineResolver *services.DeadlineResolver

	ReportCache *cache.ReportCache

	// Commitment Command Handlers
	CreateCommitmentHandler     *commands.CreateCommitmentHandler
	CompleteCommitmentHandler   *commands.CompleteCommitmentHandler
	SnoozeCommitmentHandler     *commands.SnoozeCommitmentHandler
	RescheduleCommitmentHandler *commands.RescheduleCommitmentHandler
	LogTrustEventHandler        *commands.LogTrustEventHandler

	// Query Handlers
	ListCommitmentsHandler *queries.ListCommitmentsHandler
	GetCommitmentHandler   *queries.GetCommitmentHandler
	TrustReportHandler     *queries.TrustReportHandler
	ResolveDeadlineHandler *queries.ResolveDeadlineHandler
}

// NewContainer creates and wires all dependencies. Without DATABASE_URL it
// runs on a local SQLite file, and without REDIS_URL reports are cached in process.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	metrics := observability.NewInMemoryMetrics()

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Tracer:  observability.NewTracer(logger, metrics),
		Health:  observability.NewHealth(2 * time.Second),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.Health.Register("database", conn.Ping)
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrations.Run(ctx, conn, logger); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	// Create repositories
	c.CommitmentRepo = persistence.NewCommitmentRepository(conn)
	c.TrustEventRepo = persistence.NewTrustEventRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Deadline resolution
	var generator deadline.TextGenerator
	if cfg.AIEnabled() {
		c.Breaker = resilience.NewGuardedGenerator(
			anthropic.NewGenerator(cfg.AnthropicAPIKey, cfg.DeadlineAIModel),
			resilience.BreakerConfig{
				Name:             "anthropic",
				MaxRequests:      1,
				Interval:         time.Minute,
				Cooldown:         cfg.BreakerCooldown,
				FailureThreshold: uint32(max(cfg.BreakerFailures, 1)),
			},
			metrics,
			logger,
		)
		generator = c.Breaker
		logger.Info("deadline model fallback enabled", "model", cfg.DeadlineAIModel)
	} else {
		logger.Info("no ANTHROPIC_API_KEY, deadline resolution uses rules only")
	}
	c.DeadlineResolver = services.NewDeadlineResolver(generator, services.ResolverConfig{
		Location:    cfg.Location(),
		AITimeout:   cfg.DeadlineAITimeout,
		AIMaxTokens: cfg.DeadlineAIMaxTokens,
	}, c.Tracer, logger)

	// Report cache
	var store cache.Store = cache.NewMemoryStore()
	if c.RedisClient != nil {
		store = cache.NewRedisStore(c.RedisClient)
	}
	c.ReportCache = cache.NewReportCache(store, cfg.TrustReportCacheTTL, logger)

	deps := commands.Deps{
		Commitments: c.CommitmentRepo,
		TrustEvents: c.TrustEventRepo,
		Outbox:      c.OutboxRepo,
		UoW:         c.UnitOfWork,
		Cache:       c.ReportCache,
		Logger:      logger,
		Metrics:     metrics,
	}

	// Create command handlers
	c.CreateCommitmentHandler = commands.NewCreateCommitmentHandler(deps, c.DeadlineResolver, cfg.MaxOverdueCommitments)
	c.CompleteCommitmentHandler = commands.NewCompleteCommitmentHandler(deps)
	c.SnoozeCommitmentHandler = commands.NewSnoozeCommitmentHandler(deps)
	c.RescheduleCommitmentHandler = commands.NewRescheduleCommitmentHandler(deps, c.DeadlineResolver)
	c.LogTrustEventHandler = commands.NewLogTrustEventHandler(deps)

	// Create query handlers
	loc := cfg.Location()
	c.ListCommitmentsHandler = queries.NewListCommitmentsHandler(c.CommitmentRepo, loc)
	c.GetCommitmentHandler = queries.NewGetCommitmentHandler(c.CommitmentRepo, loc)
	c.TrustReportHandler = queries.NewTrustReportHandler(c.CommitmentRepo, c.TrustEventRepo, c.ReportCache, loc, logger)
	c.ResolveDeadlineHandler = queries.NewResolveDeadlineHandler(c.DeadlineResolver, loc)

	return c, nil
}

// connectRedis is optional in development: a bad or unreachable Redis falls
// back to the in-process cache.
func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, trust reports will be cached in memory", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, trust reports will be cached in memory", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	c.Logger.Info("connected to Redis")
	return nil
}

// NewEventPublisher connects to RabbitMQ. In development an unreachable
// broker falls back to an in-process bus.
func (c *Container) NewEventPublisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" && c.Config.IsDevelopment() {
		c.Logger.Warn("RABBITMQ_URL not set, using in-process event bus")
		return eventbus.NewMemoryBus(c.Logger), nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsDevelopment() {
			c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
			return eventbus.NewMemoryBus(c.Logger), nil
		}
		return nil, err
	}
	return publisher, nil
}

// NewOutboxProcessor builds the processor that relays outbox messages to publisher.
func (c *Container) NewOutboxProcessor(publisher eventbus.Publisher) *outbox.Processor {
	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = c.Config.OutboxPollInterval
	cfg.BatchSize = c.Config.OutboxBatchSize
	cfg.MaxRetries = c.Config.OutboxMaxRetries
	return outbox.NewProcessor(c.OutboxRepo, publisher, cfg, c.Logger)
}

// Close releases external connections.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver)
		}
	}
}
