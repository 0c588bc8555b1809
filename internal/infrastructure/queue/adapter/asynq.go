package adapter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/queue/port"
)

// ===================== Client =====================

// AsynqClient implements port.Client on top of asynq and Redis.
type AsynqClient struct {
	client *asynq.Client
}

// NewAsynqClient connects to the Redis instance at redisURL.
func NewAsynqClient(redisURL string) (*AsynqClient, error) {
	opt, err := parseRedis(redisURL)
	if err != nil {
		return nil, err
	}
	return &AsynqClient{client: asynq.NewClient(opt)}, nil
}

// Ensure interface is satisfied
var _ port.Client = (*AsynqClient)(nil)

func (a *AsynqClient) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	if t.Type == "" {
		return "", errors.New("asynq: task type is required")
	}
	info, err := a.client.EnqueueContext(ctx, asynq.NewTask(t.Type, t.Payload), asynqOptions(opts)...)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (a *AsynqClient) Close() error {
	return a.client.Close()
}

// asynqOptions maps the first EnqueueOption; callers pass one consolidated value.
func asynqOptions(opts []port.EnqueueOption) []asynq.Option {
	if len(opts) == 0 {
		return nil
	}
	op := opts[0]
	var out []asynq.Option
	if !op.ProcessAt.IsZero() {
		out = append(out, asynq.ProcessAt(op.ProcessAt))
	} else if op.ProcessIn > 0 {
		out = append(out, asynq.ProcessIn(op.ProcessIn))
	}
	if op.Queue != "" {
		out = append(out, asynq.Queue(op.Queue))
	}
	if op.MaxRetry > 0 {
		out = append(out, asynq.MaxRetry(op.MaxRetry))
	}
	if op.Timeout > 0 {
		out = append(out, asynq.Timeout(op.Timeout))
	}
	if op.Retention > 0 {
		out = append(out, asynq.Retention(op.Retention))
	}
	return out
}

// ===================== Server =====================

// AsynqServer implements port.Server using asynq.
type AsynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// ServerConfig tunes the worker pool. Queues is a weight list such as
// "chat=6,default=1"; an empty value consumes chat and default equally.
type ServerConfig struct {
	RedisURL    string
	Concurrency int
	Queues      string
}

func NewAsynqServer(cfg ServerConfig, log *zap.Logger) (*AsynqServer, error) {
	opt, err := parseRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	queues := map[string]int{"default": 1, "chat": 1}
	if parsed := parseQueueWeights(cfg.Queues); len(parsed) > 0 {
		queues = parsed
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		Logger:      log.Sugar().Named("asynq"),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Warn("task failed",
				zap.String("type", task.Type()),
				zap.Int("retry", retried),
				zap.Int("max_retry", maxRetry),
				zap.Error(err),
			)
		}),
	})
	return &AsynqServer{server: srv, mux: asynq.NewServeMux()}, nil
}

// Ensure interface is satisfied
var _ port.Server = (*AsynqServer)(nil)

func (s *AsynqServer) Register(taskType string, h port.Handler) {
	s.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		err := h(ctx, port.Task{Type: t.Type(), Payload: t.Payload()})
		if errors.Is(err, port.ErrSkipRetry) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	})
}

// Run starts the server and blocks until the context is canceled, then gracefully shuts down.
func (s *AsynqServer) Run(ctx context.Context) error {
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	s.server.Shutdown()
	return nil
}

// Stop gracefully shuts down the server.
func (s *AsynqServer) Stop(ctx context.Context) error {
	_ = ctx // Shutdown takes no context
	s.server.Shutdown()
	return nil
}

func parseRedis(redisURL string) (asynq.RedisConnOpt, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("asynq: redis url is not set")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis url: %w", err)
	}
	return opt, nil
}

// parseQueueWeights parses strings like "critical=6,default=3,low=1" into a map.
func parseQueueWeights(s string) map[string]int {
	res := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		w := 1
		if len(kv) == 2 {
			if i, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil && i > 0 {
				w = i
			}
		}
		res[name] = w
	}
	return res
}
