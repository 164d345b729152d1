package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	redisclient "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"smsgate/internal/api"
	"smsgate/internal/config"
	"smsgate/internal/constants"
	"smsgate/internal/dispatch"
	"smsgate/internal/events"
	"smsgate/internal/journal"
	"smsgate/internal/logger"
	"smsgate/internal/reassembly"
	"smsgate/internal/splitter"
	"smsgate/internal/transport"
	"smsgate/pkg/bootstrap"
	"smsgate/pkg/errors"
	"smsgate/pkg/health"
	"smsgate/pkg/metrics"
	"smsgate/pkg/middleware"
	"smsgate/pkg/migrations"
	"smsgate/pkg/ratelimit"
	"smsgate/pkg/retry"
	"smsgate/pkg/sms"
	"smsgate/pkg/tracing"
)

type App struct {
	Config *config.Config
	Logger logger.Logger

	dbConnector *bootstrap.DatabaseConnector
	db          *sql.DB
	redis       *redisclient.Client

	dispatcher *dispatch.Dispatcher
	loopback   *transport.Loopback
	sweeper    *dispatch.Sweeper
	journal    journal.Repository
	publisher  *events.Publisher

	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("gateway-service")
	}
	return &App{
		Config:      cfg,
		Logger:      log,
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	tp, err := tracing.Init(a.Config.Tracing, "gateway-service")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterDispatchMetrics()
	metrics.RegisterReassemblyMetrics()
	metrics.RegisterAPIMetrics()
	if a.Config.Transport.CircuitBreaker.Enabled || a.Config.Transport.Retry.MaxAttempts > 1 {
		metrics.RegisterTransportMetrics()
	}
	if len(a.Config.Broker.Kafka.Brokers) > 0 {
		metrics.RegisterEventMetrics()
	}
	if a.db != nil {
		metrics.RegisterJournalMetrics()
	}

	if err := a.initPipeline(ctx); err != nil {
		return fmt.Errorf("failed to initialize dispatch pipeline: %w", err)
	}

	if err := a.initHTTPServer(ctx); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db

	if a.db != nil && a.Config.Database.RunMigrations {
		if err := migrations.RunPostgres(a.db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		a.Logger.InfowCtx(ctx, "Database migrations applied")
	}

	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb

	return nil
}

func (a *App) initPipeline(ctx context.Context) error {
	if len(a.Config.Broker.Kafka.Brokers) > 0 {
		a.publisher = events.NewPublisher(a.Config.Broker.Kafka, a.Logger)
	}
	if a.db != nil {
		a.journal = journal.NewRepository(a.db)
	}

	recorder := &lifecycleRecorder{
		journal:   a.journal,
		publisher: a.publisher,
		logger:    a.Logger,
	}

	// The dispatcher needs a completion sink before the loopback exists and
	// the loopback needs the sink at construction; bridge with a closure.
	var d *dispatch.Dispatcher
	sink := func(c dispatch.Completion) { d.HandleCompletion(c) }

	a.loopback = transport.NewLoopback(transport.LoopbackConfig{
		MinLatency:    a.Config.Transport.Loopback.MinLatency,
		MaxLatency:    a.Config.Transport.Loopback.MaxLatency,
		FailureRate:   a.Config.Transport.Loopback.FailureRate,
		DuplicateRate: a.Config.Transport.Loopback.DuplicateRate,
		DropRate:      a.Config.Transport.Loopback.DropRate,
	}, sink, a.Logger)

	sender := transport.NewInstrumented(a.loopback, transport.InstrumentedConfig{
		RateLimitRPS:   a.Config.Transport.RateLimitRPS,
		RateLimitBurst: a.Config.Transport.RateLimitBurst,
		Retry:          retryPolicy(a.Config.Transport.Retry),
		BreakerEnabled: a.Config.Transport.CircuitBreaker.Enabled,
	}, a.Logger)

	d = dispatch.NewDispatcher(splitter.New(), sender, recorder, a.Logger)
	a.dispatcher = d

	if a.Config.Dispatch.Sweep.Enabled {
		interval := a.Config.Dispatch.Sweep.Interval
		if interval <= 0 {
			interval = constants.DefaultSweepInterval
		}
		ttl := a.Config.Dispatch.Sweep.TTL
		if ttl <= 0 {
			ttl = constants.DefaultSweepTTL
		}
		a.sweeper = dispatch.NewSweeper(d, interval, ttl, a.Logger)
	}

	return nil
}

func (a *App) initHTTPServer(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))
	router.Use(middleware.RecoveryMiddleware(a.Logger))

	healthRegistry := health.NewCheckerRegistry()
	if a.db != nil {
		healthRegistry.Register(health.NewPostgreSQLChecker(a.db))
	}
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	healthRegistry.Register(health.NewDispatcherChecker(a.dispatcher.Inflight, constants.MaxInflightSubscriptions))

	var store reassembly.FragmentStore
	fragmentTTL := time.Duration(a.Config.Reassembly.TTLSeconds) * time.Second
	if a.Config.Reassembly.Store == "redis" && a.redis != nil {
		store = reassembly.NewRedisStore(a.redis, fragmentTTL)
	} else {
		store = reassembly.NewMemoryStore(fragmentTTL)
	}
	reassembler := reassembly.NewReassembler(store, a.Logger)

	registry := reassembly.NewHandlerRegistry(a.Logger)
	if a.publisher != nil {
		if err := registry.Register("inbound-events", &inboundEventHandler{publisher: a.publisher}); err != nil {
			return err
		}
	}

	handler := api.NewHandler(a.dispatcher, a.journal, reassembler, registry, healthRegistry, a.Logger)

	var sendMiddleware []gin.HandlerFunc
	if a.Config.Server.RateLimit.Enabled {
		rlCfg := ratelimit.DefaultConfig()
		if a.Config.Server.RateLimit.RPS > 0 {
			rlCfg.RPS = a.Config.Server.RateLimit.RPS
		}
		if a.Config.Server.RateLimit.Burst > 0 {
			rlCfg.Burst = a.Config.Server.RateLimit.Burst
		}
		sendMiddleware = append(sendMiddleware, ratelimit.RateLimitMiddleware(rlCfg))
	}
	handler.RegisterRoutes(router, sendMiddleware...)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.sweeper != nil {
		g.Go(func() error {
			a.Logger.InfowCtx(gCtx, "Subscription sweeper starting",
				"interval", a.Config.Dispatch.Sweep.Interval,
				"ttl", a.Config.Dispatch.Sweep.TTL,
			)
			return a.sweeper.Run(gCtx)
		})
	}

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.InfowCtx(ctx, "Shutting down gateway service")

	var errs []error

	if a.loopback != nil {
		if err := a.loopback.Close(); err != nil {
			errs = append(errs, fmt.Errorf("loopback close error: %w", err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher close error: %w", err))
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
		}
	}

	errs = append(errs, a.dbConnector.ShutdownDatabases(a.redis, a.db)...)

	if len(errs) > 0 {
		return errors.ErrInternal.WithDetail("message", fmt.Sprintf("shutdown finished with %d errors: %v", len(errs), errs))
	}
	return nil
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
		Multiplier:      cfg.Multiplier,
		MaxElapsedTime:  cfg.MaxElapsedTime,
	}
}

// inboundEventHandler forwards every reassembled inbound message to the
// event stream.
type inboundEventHandler struct {
	publisher *events.Publisher
}

func (h *inboundEventHandler) HandleMessage(ctx context.Context, msg sms.Message) error {
	return h.publisher.PublishInbound(ctx, events.InboundEvent{
		MessageID: msg.ID,
		Origin:    msg.Peer.Address,
		Text:      msg.Text,
	})
}
