package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/HexaTeam-By-Epitech/area-sub002/internal/auth"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/catalog"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/config"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/credential"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/crypto"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/event"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/executor"
	handlerhttp "github.com/HexaTeam-By-Epitech/area-sub002/internal/handler/http"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider/github"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/provider/spotify"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/postgres"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/postgres/migrations"
	redisrepo "github.com/HexaTeam-By-Epitech/area-sub002/internal/repository/redis"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/scheduler"
	"github.com/HexaTeam-By-Epitech/area-sub002/internal/service"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/database"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/health"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/httpclient"
	pkgkafka "github.com/HexaTeam-By-Epitech/area-sub002/pkg/kafka"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/middleware"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/tracing"
)

// App owns every long-lived component of the engine and their lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *goredis.Client
	producer    *pkgkafka.Producer
	sched       *scheduler.Scheduler
	areas       *service.AreaService
	server      *http.Server

	tracingShutdown func(context.Context) error
}

// noopPublisher drops events when Kafka is disabled.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, *pkgkafka.Event) error { return nil }

// New wires the whole engine: stores, providers, executors, scheduler,
// service and HTTP surface.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	tracingCfg := tracing.DefaultConfig(cfg.ServiceName)
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tracingCfg.SampleRate = cfg.Tracing.SampleRatio
	tracingCfg.Enabled = cfg.Tracing.Enabled
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracingShutdown = shutdown

	a.pool, err = database.NewPostgresPool(ctx, cfg.PostgresPoolConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, a.pool, migrations.Files, logger); err != nil {
		return nil, err
	}

	a.redisClient, err = database.NewRedisClient(ctx, cfg.RedisClientConfig())
	if err != nil {
		return nil, err
	}

	var publisher event.Publisher = noopPublisher{}
	if cfg.Kafka.Enabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.Kafka.Brokers), logger)
		publisher = a.producer
	}
	events := event.NewAreaEventProducer(publisher, logger)

	tokenKey, err := cfg.TokenKey()
	if err != nil {
		return nil, err
	}
	cipher, err := crypto.NewTokenCipher(tokenKey)
	if err != nil {
		return nil, err
	}

	// Outbound provider traffic goes through retry, circuit breaking and
	// rate limiting, in that order.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	breaker := httpclient.NewCircuitBreakerClient(baseClient, httpclient.CircuitBreakerConfig{
		Name:         "providers",
		MaxRequests:  3,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  10,
	}, logger)
	providerClient := httpclient.NewRateLimitedClient(breaker, cfg.Engine.ProviderRPS, cfg.Engine.ProviderBurst)

	credentials := redisrepo.NewCredentialStore(a.redisClient)
	detections := redisrepo.NewDetectionStore(a.redisClient, cfg.Engine.DetectionTTL)

	registry := provider.NewRegistry(
		provider.Entry{
			Identity: spotify.New(providerClient, cfg.Providers.SpotifyAccountsURL,
				cfg.Providers.SpotifyClientID, cfg.Providers.SpotifyClientSecret),
			Linking: provider.NewStoreLinker(spotify.Key, credentials, cipher),
		},
		provider.Entry{
			Identity: github.New(),
			Linking:  provider.NewStoreLinker(github.Key, credentials, cipher),
		},
	)

	resolver := credential.NewResolver(credentials, registry, cipher)
	detector := executor.NewDetector(detections, resolver)

	actions := executor.NewActionRegistry(
		executor.NewSpotifyLikesAction(detector, providerClient, cfg.Providers.SpotifyAPIURL),
		executor.NewGitHubStarsAction(detector, providerClient, cfg.Providers.GitHubAPIURL),
	)
	reactions := executor.NewReactionRegistry(
		executor.NewEmailReaction(providerClient, cfg.Reactions.MailerURL, cfg.Reactions.MailerAPIKey),
		executor.NewWebhookReaction(providerClient),
	)

	areaRepo := postgres.NewAreaRepository(a.pool)

	// The scheduler ticks into the service, and the service starts and stops
	// scheduler loops; the closure breaks the construction cycle.
	a.sched = scheduler.New(cfg.Engine.PollInterval, func(ctx context.Context, areaID string) error {
		return a.areas.ExecuteArea(ctx, areaID)
	}, logger)

	a.areas = service.NewAreaService(areaRepo, catalog.Default(), actions, reactions, a.sched, events, logger)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessExpiry)
	validateToken := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
	}

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return a.redisClient.Ping(ctx).Err()
	})
	if a.producer != nil {
		healthHandler.Register("kafka", a.producer.Ping)
	}

	router := handlerhttp.NewRouter(handlerhttp.RouterConfig{
		ServiceName:   cfg.ServiceName,
		Environment:   cfg.Environment,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		Logger:        logger,
		AreaHandler:   handlerhttp.NewAreaHandler(a.areas, logger),
		Health:        healthHandler,
		ValidateToken: validateToken,
		TracingOn:     cfg.Tracing.Enabled,
	})

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return a, nil
}

// Run reconciles active areas, serves HTTP and blocks until ctx is cancelled,
// then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	started, err := a.areas.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile areas: %w", err)
	}
	a.logger.Info("engine started",
		slog.Int("active_areas", started),
		slog.String("addr", a.server.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	return a.Shutdown()
}

// Shutdown stops the HTTP server, drains the scheduler and closes every
// connection.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.sched.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if err := a.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis client: %w", err))
	}
	a.pool.Close()
	if err := a.tracingShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}

	a.logger.Info("engine stopped")
	return errors.Join(errs...)
}
