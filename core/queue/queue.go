package queue

import (
	"context"
	"time"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of asynq.Client the services depend on.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.QueueDB,
	}
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

// TaskOptions are applied to every task enqueued by the services.
func TaskOptions(cfg *config.Config) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(cfg.Worker.Queue),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
		asynq.Retention(24 * time.Hour),
	}
}

func NewServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				cfg.Worker.Queue: 1,
			},
			Logger: asynqLogger{},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("Worker:Task:Failed",
					"type", task.Type(),
					"retry", retried,
					"max_retry", maxRetry,
					"error", err,
				)
			}),
		},
	)
}

// asynqLogger routes asynq's internal logs to the package logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.L().Sugar().Debug(args...) }
func (asynqLogger) Info(args ...any)  { logger.L().Sugar().Info(args...) }
func (asynqLogger) Warn(args ...any)  { logger.L().Sugar().Warn(args...) }
func (asynqLogger) Error(args ...any) { logger.L().Sugar().Error(args...) }
func (asynqLogger) Fatal(args ...any) { logger.L().Sugar().Fatal(args...) }
