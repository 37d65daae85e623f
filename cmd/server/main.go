package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	_ "github.com/storefront/console/docs"
	"github.com/storefront/console/internal/application/dashboard"
	inventoryapp "github.com/storefront/console/internal/application/inventory"
	appnotification "github.com/storefront/console/internal/application/notification"
	orderapp "github.com/storefront/console/internal/application/order"
	"github.com/storefront/console/internal/infrastructure/cache"
	"github.com/storefront/console/internal/infrastructure/config"
	"github.com/storefront/console/internal/infrastructure/eventsource"
	"github.com/storefront/console/internal/infrastructure/logger"
	"github.com/storefront/console/internal/infrastructure/persistence"
	"github.com/storefront/console/internal/infrastructure/remote"
	"github.com/storefront/console/internal/infrastructure/storage"
	"github.com/storefront/console/internal/infrastructure/telemetry"
	"github.com/storefront/console/internal/interfaces/http/handler"
	"github.com/storefront/console/internal/interfaces/http/middleware"
	"github.com/storefront/console/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront Console API
//	@version		1.0
//	@description	Operator console for the storefront: orders, stock and live notifications
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry comes first so the final logger can tee into the OTEL bridge
	providers, err := telemetry.Setup(ctx, telemetry.FromConfig(cfg.Telemetry, version), bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
		Name:   cfg.App.Name,
	}, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront console",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("api", cfg.API.BaseURL),
	)

	meter := providers.Meter.Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewConsoleMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create console metrics", zap.Error(err))
	}

	systemHandler := handler.NewSystemHandler(version)

	// Storage: the inbox lives in the database or in Redis; Redis also backs the order cache
	var db *persistence.Database
	if cfg.Inbox.Backend == config.InboxBackendDatabase {
		db, err = persistence.NewDatabase(&cfg.Database,
			persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)))
		if err != nil {
			log.Fatal("Failed to open database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()

		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = cfg.Telemetry.DBTraceEnabled
		dbTracing.DBSystem = cfg.Database.Driver
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
		systemHandler.AddCheck("database", db.Ping)
		log.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	}

	var redisClient *redis.Client
	if cfg.Inbox.Backend == config.InboxBackendRedis || cfg.Cache.Backend == config.CacheBackendRedis {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			if cfg.Inbox.Backend == config.InboxBackendRedis {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			log.Warn("Redis unavailable", zap.Error(err))
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
			systemHandler.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
		}
	}

	backends := storage.Backends{Database: db, RedisPrefix: cfg.Cache.Prefix}
	cacheOpts := []cache.OrderCacheFactoryOption{cache.WithLogger(log)}
	if redisClient != nil {
		backends.Redis = redisClient
		cacheOpts = append(cacheOpts, cache.WithRedisClient(redisClient))
	}

	inboxStore, err := storage.NewStore(cfg.Inbox, backends, log)
	if err != nil {
		log.Fatal("Failed to create inbox store", zap.Error(err))
	}
	orderCache, err := cache.NewOrderCacheFactory(cfg.Cache, cacheOpts...).Create()
	if err != nil {
		log.Fatal("Failed to create order cache", zap.Error(err))
	}
	if closer, ok := orderCache.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn("Failed to close order cache", zap.Error(err))
			}
		}()
	}

	// Remote retail API
	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, log.Named("remote"), remote.WithCallMetrics(metrics))
	if err != nil {
		log.Fatal("Invalid retail API configuration", zap.Error(err))
	}
	orderStore := remote.NewOrderStore(client)
	inventoryStore := remote.NewInventoryStore(client)

	queries := orderapp.NewQueryService(orderStore, orderCache, log,
		orderapp.WithCacheTTL(cfg.Cache.OrderTTL, cfg.Cache.ListTTL))
	controller := orderapp.NewStatusController(orderStore, orderCache, log,
		orderapp.WithStatusMetrics(metrics))
	stock := inventoryapp.NewStockService(inventoryStore, log,
		inventoryapp.WithClassificationMetrics(metrics))

	// Notification inbox and the push event channel feeding it
	inbox := appnotification.NewInbox(inboxStore, log.Named("inbox"), appnotification.WithStorageKey(cfg.Inbox.Key))

	var session *dashboard.Session
	if cfg.EventSource.Enabled {
		dialer, err := eventsource.NewDialer(eventsource.Config{
			URL:              cfg.EventSource.URL,
			Token:            cfg.API.Token,
			HandshakeTimeout: cfg.EventSource.HandshakeTimeout,
			Path:             cfg.EventSource.Path,
			Namespace:        cfg.EventSource.Namespace,
		}, log.Named("eventsource"))
		if err != nil {
			log.Fatal("Invalid event source configuration", zap.Error(err))
		}
		channel := appnotification.NewChannel(dialer, log.Named("channel"),
			appnotification.WithSubscriptions(cfg.EventSource.Subscriptions),
			appnotification.WithReconnectBackOff(appnotification.NewReconnectBackOff(
				cfg.EventSource.ReconnectInitialDelay, cfg.EventSource.ReconnectMaxDelay)),
			appnotification.WithChannelMetrics(metrics),
		)
		session = dashboard.NewSession(inbox, channel, log.Named("session"))
		if err := session.Start(ctx); err != nil {
			log.Fatal("Failed to start dashboard session", zap.Error(err))
		}
		log.Info("Event channel started", zap.String("url", dialer.Endpoint()))
	} else {
		if err := inbox.Load(ctx); err != nil {
			log.Fatal("Failed to load notifications", zap.Error(err))
		}
		log.Info("Event channel disabled; inbox is read-only history")
	}

	stream := handler.NewNotificationStreamHandler(inbox,
		handler.WithSSELogger(log.Named("sse")),
		handler.WithSSEHeartbeat(cfg.HTTP.SSEHeartbeat),
	)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger:       log,
		LogSkipPaths: cfg.HTTP.RequestLogSkipped,
		CORS:         cors,
		Tracing: middleware.TracingConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			Enabled:        cfg.Telemetry.Enabled,
			TracerProvider: otel.GetTracerProvider(),
		},
		Meter:          meter,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}

	routes := router.NewRouter(engine)
	routes.Mount(router.Handlers{
		Orders:        handler.NewOrderHandler(queries, controller),
		Inventory:     handler.NewInventoryHandler(stock),
		Notifications: handler.NewNotificationHandler(inbox),
		Stream:        stream,
		System:        systemHandler,
	})
	routes.MountDocs(middleware.SwaggerConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// SSE streams never finish on their own
	stream.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if session != nil {
		if err := session.Close(); err != nil {
			log.Warn("Dashboard session closed with error", zap.Error(err))
		}
	}

	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
