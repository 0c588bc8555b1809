package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	v1 "github.com/Ubokutom222/whatsappclone/cmd/api/router/v1"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/auth"
	cacheAdapter "github.com/Ubokutom222/whatsappclone/internal/infrastructure/cache/adapter"
	cport "github.com/Ubokutom222/whatsappclone/internal/infrastructure/cache/port"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/config"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/database"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/eventstream"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/logger"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	queueAdapter "github.com/Ubokutom222/whatsappclone/internal/infrastructure/queue/adapter"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/realtime"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/notifier"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/task"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/adapter"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/presentation/controller"
	httpHandler "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/presentation/http"
	userAdapter "github.com/Ubokutom222/whatsappclone/internal/repository/adapter"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
	lg.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	pool, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	var (
		rdb   *redis.Client
		cache cport.Cache = cacheAdapter.NewMemoryCache()
	)
	if cfg.Redis.URL != "" {
		rdb, err = cacheAdapter.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = cacheAdapter.NewRedisCache(rdb)
	} else {
		lg.Warn("redis.url not set; using in-process cache and inline delivery")
	}

	router := realtime.NewRouter()
	defer router.Close()

	var workers sync.WaitGroup
	defer workers.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	background := func(name string, fn func(context.Context) error) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := fn(ctx); err != nil {
				lg.Error("background worker stopped", zap.String("worker", name), zap.Error(err))
			}
		}()
	}

	// Delivery sinks: local sockets, or the Redis bridge that feeds every
	// node's local sockets, plus Kafka when configured.
	sinks := []notifier.Sink{{Name: "local", Publisher: router}}
	if rdb != nil && cfg.Redis.RealtimeBridge {
		bridge := realtime.NewRedisBridge(rdb, router, lg.Named("bridge"))
		sinks = []notifier.Sink{{Name: "redis", Publisher: bridge}}
		background("realtime-bridge", bridge.Run)
	}
	if cfg.Kafka.Enabled() {
		producer, err := eventstream.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer producer.Close()
		sinks = append(sinks, notifier.Sink{Name: "kafka", Publisher: producer})
	}
	deliverer := notifier.NewDeliverer(lg.Named("notifier"), sinks...)

	var notify notifier.Notifier
	if rdb != nil {
		client, err := queueAdapter.NewAsynqClient(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		srv, err := queueAdapter.NewAsynqServer(queueAdapter.ServerConfig{
			RedisURL:    cfg.Redis.URL,
			Concurrency: cfg.Asynq.Concurrency,
			Queues:      cfg.Asynq.Queues,
		}, lg.Named("worker"))
		if err != nil {
			return err
		}
		task.RegisterDeliverMessageTask(srv, deliverer, lg.Named("worker"))
		background("asynq", srv.Run)
		notify = task.NewQueueNotifier(client, cfg.Asynq.MaxRetry, lg.Named("notifier"))
	} else {
		inline := notifier.NewInlineNotifier(deliverer, 5*time.Second, lg.Named("notifier"))
		defer inline.Wait()
		notify = inline
	}

	chatRepo := repoAdapter.NewPgChatRepository(pool)
	userRepo := userAdapter.NewPgUserRepository(pool)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	channelTokens := auth.NewChannelTokens(cfg.Auth.JWTSecret, cfg.Auth.ChannelTokenTTL)

	members := usecase.NewMembershipChecker(chatRepo, cache, cfg.Redis.MembershipTTL, lg)
	resolver := usecase.NewResolveConversationUseCase(chatRepo, members, lg)
	writer := usecase.NewWriteMessageUseCase(chatRepo, lg)

	if !cfg.App.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpHandler.RequestLogger(lg.Named("http")))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		hctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(hctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1.RegisterRoutes(r, httpHandler.Deps{
		Log:            lg.Named("http"),
		Debug:          cfg.App.Development(),
		RequestTimeout: cfg.App.RequestTimeout,
		Tokens:         verifier,
		Socket: controller.SocketOptions{
			RatePerSecond: cfg.Realtime.RatePerSecond,
			Burst:         cfg.Realtime.Burst,
		},

		Router:        router,
		ChannelTokens: channelTokens,

		SendMessage:       usecase.NewSendMessageUseCase(resolver, writer, notify),
		GetMessages:       usecase.NewGetMessagesUseCase(chatRepo, members),
		DeleteMessage:     usecase.NewDeleteMessageUseCase(chatRepo, members),
		StartConversation: usecase.NewStartConversationUseCase(chatRepo, resolver),
		ListConversations: usecase.NewListConversationsUseCase(chatRepo),
		ListUsers:         usecase.NewListUsersUseCase(userRepo),
		GetSession:        usecase.NewGetSessionUseCase(userRepo),
		AuthorizeChannel:  usecase.NewAuthorizeChannelUseCase(members, channelTokens),
	})

	server := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.Connect(cctx, cfg.Database.URL, database.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		return nil, err
	}
	if cfg.Database.ApplySchema {
		if err := database.ApplySchema(cctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
