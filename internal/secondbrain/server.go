package secondbrain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/secondbrain-io/secondbrain/internal/pkg/middleware"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/biz"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/handler"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/router"
	"github.com/secondbrain-io/secondbrain/internal/secondbrain/store"
	"github.com/secondbrain-io/secondbrain/pkg/app"
	"github.com/secondbrain-io/secondbrain/pkg/component/extractor"
	"github.com/secondbrain-io/secondbrain/pkg/component/groq"
	"github.com/secondbrain-io/secondbrain/pkg/component/mongodb"
	"github.com/secondbrain-io/secondbrain/pkg/component/pool"
	"github.com/secondbrain-io/secondbrain/pkg/component/vectorindex"
)

// Run runs the SecondBrain service with the given options.
func Run(opts *Options) error {
	// 1. Initialize logging.
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting SecondBrain service...")

	// 2. Initialize MongoDB.
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), opts.Mongo.ConnectTimeout)
	mongoClient, err := mongodb.NewWithContext(connectCtx, opts.Mongo)
	cancelConnect()
	if err != nil {
		return fmt.Errorf("failed to initialize mongodb: %w", err)
	}
	defer func() { _ = mongoClient.Close() }()
	logger.Info("MongoDB client initialized")

	st := store.NewMongoStore(mongoClient)

	// 3. Initialize Redis for the chat result cache. A dead Redis
	// downgrades to no caching instead of failing startup.
	var queryCache *biz.QueryCache
	if opts.Cache.Enabled {
		redisOpts := opts.Cache.Redis
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:         fmt.Sprintf("%s:%d", redisOpts.Host, redisOpts.Port),
			Password:     redisOpts.Password,
			DB:           redisOpts.Database,
			PoolSize:     redisOpts.PoolSize,
			MinIdleConns: redisOpts.MinIdleConns,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
			_ = redisClient.Close()
		} else {
			queryCache = biz.NewQueryCache(redisClient, &biz.QueryCacheConfig{
				Enabled:   true,
				TTL:       opts.Cache.TTL,
				KeyPrefix: opts.Cache.KeyPrefix,
			})
			defer func() { _ = redisClient.Close() }()
			logger.Infow("Redis cache initialized",
				"host", redisOpts.Host,
				"port", redisOpts.Port,
				"ttl", opts.Cache.TTL,
			)
		}
	} else {
		logger.Info("Cache is disabled")
	}

	// 4. Initialize the background worker pool for ingestion.
	poolConfig := pool.BackgroundConfig()
	poolConfig.Capacity = opts.Ingest.Workers
	ingestPool, err := pool.New("ingest", poolConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}
	defer func() {
		if err := ingestPool.ReleaseTimeout(opts.Server.ShutdownTimeout); err != nil {
			logger.Warnw("worker pool did not drain before shutdown", "error", err.Error())
		}
	}()
	logger.Infow("Worker pool initialized", "capacity", poolConfig.Capacity)

	// 5. Initialize external service clients.
	extractClient := extractor.New(opts.Extractor)
	indexClient := vectorindex.New(opts.Index)
	groqClient := groq.New(opts.Groq)
	logger.Info("External service clients initialized")

	// 6. Initialize the business layer.
	chatConfig := biz.NewChatConfig()
	chatConfig.TopK = opts.Chat.TopK
	if opts.Chat.SystemPrompt != "" {
		chatConfig.SystemPrompt = opts.Chat.SystemPrompt
	}
	service := biz.New(st, extractClient, indexClient, groqClient, queryCache, &biz.Config{
		Ingest: &biz.IngestConfig{ProcessTimeout: opts.Ingest.ProcessTimeout},
		Chat:   chatConfig,
	}, ingestPool.Submit)
	logger.Info("Business layer initialized")

	// 7. Initialize handlers and routes.
	engine := newEngine()
	router.Register(engine,
		handler.NewDocsHandler(service),
		handler.NewChatHandler(service),
		opts.Server.JWTKey,
		func() error { return mongoClient.Ping(context.Background()) },
	)

	// 8. Run the HTTP server until interrupted.
	return serve(engine, opts.Server)
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), gin.Recovery())
	return engine
}

// serve starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func serve(engine *gin.Engine, opts *ServerOptions) error {
	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
