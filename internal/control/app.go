package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/ecoscout/internal/classify"
	"github.com/vietddude/ecoscout/internal/core/config"
	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/health"
	"github.com/vietddude/ecoscout/internal/infra/llm/credential"
	"github.com/vietddude/ecoscout/internal/infra/llm/provider"
	"github.com/vietddude/ecoscout/internal/infra/llm/ratelimit"
	"github.com/vietddude/ecoscout/internal/infra/llm/routing"
	redisclient "github.com/vietddude/ecoscout/internal/infra/redis"
	"github.com/vietddude/ecoscout/internal/infra/storage"
	"github.com/vietddude/ecoscout/internal/infra/storage/memory"
	"github.com/vietddude/ecoscout/internal/infra/storage/sqlstore"
	"github.com/vietddude/ecoscout/internal/scrape"
)

// App is the main application struct that wires configuration, backends,
// storage and the pipeline.
type App struct {
	cfg          *config.AppConfig
	classifier   *classify.Classifier
	pipeline     *Pipeline
	repo         storage.OrganisationRepository
	db           *sqlstore.DB
	redisClient  *redisclient.Client
	review       *redisclient.ReviewQueue
	cache        *redisclient.ResultCache
	healthServer *health.Server
	log          *slog.Logger
}

// NewBackends builds one adapter per known backend from cfg. The adapters
// share a single rate limiter.
func NewBackends(cfg *config.AppConfig) []provider.Backend {
	limiter := ratelimit.New(cfg.Delays())

	var backends []provider.Backend
	for _, id := range domain.KnownBackends {
		bc := cfg.Backend(id)
		opts := provider.Options{
			Models:  bc.Models,
			BaseURL: bc.BaseURL,
			Timeout: bc.Timeout,
			Pool:    credential.Load(bc.Keys),
			Limiter: limiter,
		}
		if opts.Pool.Len() == 0 {
			slog.Warn("No credentials configured for backend", "backend", id, "env", config.KeyEnv[id])
		}

		switch id {
		case domain.BackendGroq:
			backends = append(backends, provider.NewGroqBackend(opts))
		case domain.BackendGemini:
			backends = append(backends, provider.NewGeminiBackend(opts))
		case domain.BackendOpenRouter:
			backends = append(backends, provider.NewOpenRouterBackend(opts))
		}
	}
	return backends
}

// NewClassifier builds the classifier described by cfg.
func NewClassifier(cfg *config.AppConfig) *classify.Classifier {
	return classify.NewClassifier(
		NewBackends(cfg),
		routing.NewScheduler(cfg.Slots()),
		classify.Options{
			Order:           cfg.Rotation.Order,
			ReviewThreshold: cfg.ReviewThreshold,
		},
	)
}

// OpenRepository opens the configured store and applies migrations.
// The returned DB is nil for the memory driver.
func OpenRepository(ctx context.Context, cfg sqlstore.Config) (storage.OrganisationRepository, *sqlstore.DB, error) {
	if cfg.Driver == sqlstore.DriverMemory {
		slog.Info("Using Memory storage")
		return memory.NewMemoryStorage(), nil, nil
	}

	db, err := sqlstore.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	slog.Info("Using SQL storage", "driver", cfg.Driver)
	return sqlstore.NewOrgRepo(db), db, nil
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	repo, db, err := OpenRepository(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		classifier: NewClassifier(cfg),
		repo:       repo,
		db:         db,
		log:        slog.Default(),
	}

	a.pipeline = &Pipeline{
		Classifier:      a.classifier,
		Scraper:         scrape.New(cfg.Scrape),
		Repo:            repo,
		Workers:         cfg.Pipeline.Workers,
		MinDescription:  cfg.Scrape.MinDescription,
		ReviewThreshold: a.classifier.ReviewThreshold(),
	}

	if cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, cache and review queue disabled", "error", err)
		} else {
			a.redisClient = client
			a.review = redisclient.NewReviewQueue(client)
			a.cache = redisclient.NewResultCache(client)
			a.pipeline.Cache = a.cache
			a.pipeline.Review = a.review
		}
	}

	var pinger health.Pinger
	if db != nil {
		pinger = db
	}
	a.healthServer = health.NewServer(
		health.NewMonitor(a.classifier, a.classifier.Scheduler(), pinger),
		cfg.Server.Port,
	)

	return a, nil
}

// Classifier returns the shared classifier.
func (a *App) Classifier() *classify.Classifier {
	return a.classifier
}

// Repository returns the organisation store.
func (a *App) Repository() storage.OrganisationRepository {
	return a.repo
}

// Pipeline returns the batch pipeline.
func (a *App) Pipeline() *Pipeline {
	return a.pipeline
}

// ReviewQueue returns the review queue, or nil without Redis.
func (a *App) ReviewQueue() *redisclient.ReviewQueue {
	return a.review
}

// ResultCache returns the classification cache, or nil without Redis.
func (a *App) ResultCache() *redisclient.ResultCache {
	return a.cache
}

// Run serves health and metrics while the pipeline processes urls.
func (a *App) Run(ctx context.Context, urls []string) (RunSummary, error) {
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.healthServer.Stop(stopCtx); err != nil {
			a.log.Warn("Failed to stop health server", "error", err)
		}
	}()

	a.log.Info("Starting run", "urls", len(urls), "workers", a.pipeline.Workers)
	return a.pipeline.Run(ctx, urls)
}

// Close releases storage and Redis connections.
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
