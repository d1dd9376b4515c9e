package bootstrap

import (
	"context"

	chclient "cadence/internal/adapters/clickhouse"
	"cadence/internal/adapters/config"
	"cadence/internal/adapters/errors/noop"
	"cadence/internal/adapters/errors/sentry"
	"cadence/internal/adapters/kafka"
	pgclient "cadence/internal/adapters/postgres"
	redisclient "cadence/internal/adapters/redis"
	"cadence/internal/api"
	"cadence/internal/api/health"
	"cadence/internal/domain/classification"
	"cadence/internal/domain/workout"
	"cadence/internal/events"
	"cadence/internal/metrics"
	"cadence/internal/ml/cluster"
	chrepo "cadence/internal/repository/clickhouse"
	pgrepo "cadence/internal/repository/postgres"
	"cadence/internal/services/classifier"
	"cadence/internal/services/training"
	"cadence/internal/workers"
	"cadence/pkg/errors"
	"cadence/pkg/logger"
)

// Container holds all application dependencies and their lifecycle
// Components are organized in initialization order
type Container struct {
	// Core configuration & logging
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Infrastructure Layer (Data stores)
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	// Messaging
	KafkaProducer *kafka.Producer
	Publisher     *events.Publisher

	// Domain Layer - Repositories
	Repos *Repositories

	// Domain Layer - Services
	Services *Services

	// Background Processing
	Scheduler *workers.Scheduler

	// Application Layer
	HTTPServer *api.Server

	// Lifecycle management
	Lifecycle *Lifecycle
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories groups all domain repositories
type Repositories struct {
	Workouts        workout.Repository
	Classifications classification.Repository
	Stats           classification.StatsSink
}

// Services groups all domain services
type Services struct {
	Classifier *classifier.Service
	Training   *training.Service
}

// NewContainer creates an empty container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		Lifecycle: NewLifecycle(),
		Context:   ctx,
		Cancel:    cancel,
	}
}

// MustInitConfig loads configuration, logging and error tracking.
// Panics on failure; nothing can run without them.
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	c.Log = logger.Get()

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)

	metrics.Register()

	c.Log.Infof("Starting %s %s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Env)
}

// MustInitInfrastructure connects the data stores
func (c *Container) MustInitInfrastructure() {
	c.Log.Info("Initializing infrastructure...")

	pg, err := pgclient.NewClient(c.Config.Postgres)
	if err != nil {
		c.Log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	c.PG = pg

	ch, err := chclient.NewClient(c.Config.ClickHouse)
	if err != nil {
		c.Log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	c.CH = ch

	rds, err := redisclient.NewClient(c.Config.Redis)
	if err != nil {
		c.Log.Fatalf("Failed to connect to Redis: %v", err)
	}
	c.Redis = rds

	c.KafkaProducer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers: c.Config.Kafka.Brokers,
	})
	c.Publisher = events.NewPublisher(c.KafkaProducer)

	c.Log.Info("Infrastructure initialized")
}

// MustInitRepositories wires the data repositories
func (c *Container) MustInitRepositories() {
	c.Repos = &Repositories{
		Workouts:        pgrepo.NewWorkoutRepository(c.PG.DB()),
		Classifications: pgrepo.NewClassificationRepository(c.PG.DB()),
		Stats:           chrepo.NewStatsRepository(c.CH.Conn()),
	}
}

// MustInitServices builds the classification and training services and loads
// the persisted model. A missing model is not fatal; the classifier starts
// in fallback mode.
func (c *Container) MustInitServices() {
	cutover, err := c.Config.Fallback.CutoverTime()
	if err != nil {
		c.Log.Fatalf("Invalid fallback configuration: %v", err)
	}

	store := cluster.NewStore(c.Config.Model.ArtifactPath)
	fallback := classifier.NewEraFallback(cutover, c.Config.Fallback.Confidence)

	classifierSvc := classifier.NewService(classifier.Deps{
		Store:     store,
		Fallback:  fallback,
		Workouts:  c.Repos.Workouts,
		Results:   c.Repos.Classifications,
		Stats:     c.Repos.Stats,
		Cache:     c.Redis,
		Publisher: c.Publisher,
		ChunkSize: c.Config.Model.BatchChunkSize,
		CacheTTL:  c.Config.Model.CacheTTL,
	})
	classifierSvc.LoadModel(c.Context)

	trainingSvc := training.NewService(training.Deps{
		Workouts:   c.Repos.Workouts,
		Results:    c.Repos.Classifications,
		Store:      store,
		Classifier: classifierSvc,
		Locker:     c.Redis,
		Publisher:  c.Publisher,
		Seed:       c.Config.Model.Seed,
		MinSamples: c.Config.Model.MinTrainingSamples,
		ChunkSize:  c.Config.Model.BatchChunkSize,
	})

	c.Services = &Services{
		Classifier: classifierSvc,
		Training:   trainingSvc,
	}
}

// MustInitBackground registers the background workers
func (c *Container) MustInitBackground() {
	scheduler := workers.NewScheduler()

	scheduler.RegisterWorker(workers.NewReclassifyWorker(
		c.Services.Classifier,
		c.Redis,
		c.Config.Workers.ReclassifyInterval,
		c.Config.Workers.ReclassifyEnabled,
	))
	scheduler.RegisterWorker(workers.NewRetrainTriggerWorker(
		c.Repos.Classifications,
		c.Services.Training,
		c.Config.Model.RetrainThreshold,
		c.Config.Workers.RetrainTriggerInterval,
		c.Config.Workers.RetrainTriggerEnabled,
	))

	c.Scheduler = scheduler
}

// MustInitAPI builds the HTTP server with all routes
func (c *Container) MustInitAPI() {
	healthHandler := health.New(
		c.Log,
		c.PG.DB(),
		c.CH.Conn(),
		c.Redis.Client(),
		c.Services.Classifier,
		c.Config.App.Name,
		c.Config.App.Version,
	)

	handlers := api.NewHandlers(
		c.Services.Classifier,
		c.Services.Training,
		c.Repos.Workouts,
		c.Repos.Classifications,
	)

	c.HTTPServer = api.NewServer(api.ServerConfig{
		Port:        c.Config.HTTP.Port,
		ServiceName: c.Config.App.Name,
		Version:     c.Config.App.Version,
	}, healthHandler, handlers, c.Log)
}

// provideErrorTracker initializes error tracking (Sentry or no-op)
func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}
