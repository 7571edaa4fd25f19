package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fpl-creator-match/external/fpl"
	"github.com/riskibarqy/fpl-creator-match/internal/config"
	"github.com/riskibarqy/fpl-creator-match/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/fpl-creator-match/internal/interfaces/httpapi"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/cache"
	idgen "github.com/riskibarqy/fpl-creator-match/internal/platform/id"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
	"github.com/riskibarqy/fpl-creator-match/internal/scheduler"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

const redisPingTimeout = 2 * time.Second

// App holds the wired services shared by the API server and the ingest CLI.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	DB         *sqlx.DB
	Managers   *sqlstore.ManagerRepository
	References *sqlstore.ReferenceRepository
	Cache      cache.Store
	Client     *fpl.Client
	Retrier    *resilience.Retrier

	Ingestion  *usecase.IngestionService
	Resolution *usecase.ResolutionService
	Squads     *usecase.SquadService
	Comparison *usecase.ComparisonService
	Refresh    *usecase.ReferenceRefreshService
	Scheduler  *scheduler.Scheduler

	closers []func() error
}

type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the instrumented client used for FPL calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	creators, err := usecase.ParseCreators(cfg.ReferenceSquads)
	if err != nil {
		return nil, fmt.Errorf("parse REFERENCE_SQUADS: %w", err)
	}

	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:        cfg,
		logger:     logger,
		DB:         db,
		Managers:   sqlstore.NewManagerRepository(db),
		References: sqlstore.NewReferenceRepository(db),
	}
	a.closers = append(a.closers, db.Close)

	a.Cache = a.buildCache(ctx)
	a.Retrier = resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
		Jitter:      cfg.RetryJitter,
	}, resilience.DefaultClassifier).WithObserver(retryObserver(logger.Named("retry")))

	a.Client = fpl.NewClient(fpl.ClientConfig{
		HTTPClient: o.httpClient,
		BaseURL:    cfg.FPLBaseURL,
		LeagueID:   cfg.FPLLeagueID,
		Timeout:    cfg.FPLTimeout,
		UserAgent:  cfg.FPLUserAgent,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailureCount,
			OpenTimeout:      cfg.FPLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpenMaxReq,
		},
	})

	cacheCfg := usecase.CacheConfig{
		ReferenceTTL: cfg.CacheReferenceTTL,
		SquadTTL:     cfg.CacheSquadTTL,
	}
	a.Ingestion = usecase.NewIngestionService(a.Client, a.Managers, a.Retrier, idgen.NewUUIDGenerator("ingest"), usecase.IngestionConfig{
		MaxPages:            cfg.IngestMaxPages,
		MinDelay:            cfg.IngestMinDelay,
		MaxDelay:            cfg.IngestMaxDelay,
		MaxConsecutiveSkips: cfg.IngestMaxConsecutiveSkips,
	}, logger)
	a.Resolution = usecase.NewResolutionService(a.Managers, logger)
	a.Squads = usecase.NewSquadService(a.Client, a.Retrier, a.Cache, cacheCfg, logger)
	a.Comparison = usecase.NewComparisonService(a.Squads, a.References, a.Cache, cacheCfg, logger)
	a.Refresh = usecase.NewReferenceRefreshService(a.Client, a.References, a.Retrier, a.Cache, cacheCfg,
		idgen.NewUUIDGenerator("refresh"),
		usecase.RefreshConfig{Creators: creators, MaxWorkers: cfg.RefreshMaxWorkers},
		logger,
	)

	a.Scheduler, err = scheduler.New(a.Refresh, scheduler.Config{
		Location: cfg.SchedulerTimezone,
		Specs:    cfg.SchedulerSpecs,
	}, logger)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	return a, nil
}

func (a *App) buildCache(ctx context.Context) cache.Store {
	if a.cfg.RedisAddr == "" {
		return cache.NewMemoryStore(a.cfg.CacheSquadTTL)
	}

	store := cache.NewRedisStore(cache.RedisConfig{
		Addr:      a.cfg.RedisAddr,
		Password:  a.cfg.RedisPassword,
		DB:        a.cfg.RedisDB,
		KeyPrefix: a.cfg.RedisKeyPrefix,
	}, a.logger.Named("cache"))

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		a.logger.Warn("redis unavailable, using in-process cache", "addr", a.cfg.RedisAddr, "error", err)
		_ = store.Close()
		return cache.NewMemoryStore(a.cfg.CacheSquadTTL)
	}

	a.closers = append(a.closers, store.Close)
	return store
}

func retryObserver(logger *logging.Logger) resilience.AttemptObserver {
	return func(attempt int, class resilience.FaultClass, wait time.Duration, err error) {
		metrics.RetryAttemptsTotal.WithLabelValues("fpl", class.String()).Inc()
		logger.Debug("remote attempt failed",
			"attempt", attempt,
			"class", class.String(),
			"wait", wait,
			"error", err,
		)
	}
}

// NewHTTPServer builds the API server. The scheduler is not started here.
func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(httpapi.Dependencies{
		Resolver:  a.Resolution,
		Squads:    a.Squads,
		Comparer:  a.Comparison,
		Progress:  a.Managers,
		Ingestion: a.Ingestion,
		Refresher: a.Scheduler,
	}, a.logger)
	router := httpapi.NewRouter(handler, a.logger, httpapi.RouterConfig{
		SwaggerEnabled:     a.cfg.SwaggerEnabled,
		CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
		InternalJobToken:   a.cfg.InternalJobToken,
		Metrics:            metrics.Handler(),
	})

	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

// Close releases the store and cache connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
