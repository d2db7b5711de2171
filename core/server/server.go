package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"go-poll-scheduler/core/cache"
	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/constants"
	"go-poll-scheduler/core/database"
	"go-poll-scheduler/core/logger"
	"go-poll-scheduler/core/metrics"
	"go-poll-scheduler/core/middleware"
	"go-poll-scheduler/core/queue"
	"go-poll-scheduler/core/validator"
	"go-poll-scheduler/modules/availability"
	availservice "go-poll-scheduler/modules/availability/service"
	"go-poll-scheduler/modules/poll"
	pollservice "go-poll-scheduler/modules/poll/service"
	"go-poll-scheduler/modules/poll/tasks"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// app holds the long-lived dependencies shared by the API and the worker.
type app struct {
	db    *database.Database
	store cache.Store
	queue *asynq.Client
	polls *pollservice.PollService
	avail availservice.AvailabilityServiceInterface
}

func newApp(cfg *config.Config, withQueue bool) (*app, error) {
	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		Migrate:  cfg.Database.MigrateOnStart,
	})
	if err != nil {
		return nil, err
	}

	store, err := cache.New(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}

	settings, err := pollservice.SettingsFromConfig(cfg)
	if err != nil {
		_ = db.Close()
		_ = store.Close()
		return nil, err
	}

	a := &app{db: db, store: store}
	a.avail = availability.NewService(cfg, store)

	var q queue.Enqueuer
	if withQueue {
		a.queue = queue.NewClient(cfg)
		q = a.queue
	}
	a.polls = poll.NewService(db, a.avail, q, settings)
	return a, nil
}

func (a *app) close() {
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			logger.Error("Server:Close:Queue", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Error("Server:Close:Cache", "error", err)
	}
	if err := a.db.Close(); err != nil {
		logger.Error("Server:Close:Database", "error", err)
	}
}

// NewEcho builds the HTTP handler with every module route registered.
func NewEcho(cfg *config.Config, avail availservice.AvailabilityServiceInterface, polls pollservice.PollServiceInterface, mw *middleware.Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(mw.RequestID())
	e.Use(mw.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	availability.Init(e, cfg, avail, mw)
	poll.Init(e, polls, mw)
	return e
}

// Run serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	e := NewEcho(cfg, a.avail, a.polls, middleware.NewMiddleware(nil))
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr, "env", cfg.Server.Env)
		if err := e.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Server:Run:ShuttingDown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// RunWorker processes queued poll tasks until ctx is cancelled.
func RunWorker(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	mux := asynq.NewServeMux()
	tasks.Register(mux, a.polls)

	srv := queue.NewServer(cfg)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	logger.Info("Server:RunWorker:Started", "queue", cfg.Worker.Queue, "concurrency", cfg.Worker.Concurrency)

	<-ctx.Done()
	logger.Info("Server:RunWorker:ShuttingDown")
	srv.Shutdown()
	return nil
}
