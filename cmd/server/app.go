package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/phrazzld/todo-core/internal/api"
	"github.com/phrazzld/todo-core/internal/config"
	"github.com/phrazzld/todo-core/internal/events"
	"github.com/phrazzld/todo-core/internal/jobs"
	"github.com/phrazzld/todo-core/internal/platform/sqlstore"
	"github.com/phrazzld/todo-core/internal/recurrence"
	"github.com/phrazzld/todo-core/internal/reminder"
	"github.com/phrazzld/todo-core/internal/service"
)

// application holds the wired dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sql.DB
	dialect sqlstore.Dialect

	dispatcher *events.Dispatcher
	tasks      service.TaskService
	lists      service.ListService

	recurrence *events.Subscription

	queue     *jobs.Queue
	pool      *jobs.WorkerPool
	scheduler *reminder.Scheduler

	cleanupOnce sync.Once
}

// newApplication opens the database, applies migrations when configured and
// wires stores, the dispatcher, services and the background workers.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, dialect, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
	}

	if err := app.setup(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) setup(ctx context.Context) error {
	if app.config.Database.AutoMigrate {
		if err := sqlstore.Migrate(ctx, app.db, app.dialect, "up", app.logger); err != nil {
			return err
		}
	}

	taskStore := sqlstore.NewTaskStore(app.db, app.dialect, app.logger)
	listStore := sqlstore.NewListStore(app.db, app.dialect, app.logger)
	app.dispatcher = events.NewDispatcher(app.logger)

	var err error
	app.tasks, err = service.NewTaskService(taskStore, listStore, app.dispatcher, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	app.lists, err = service.NewListService(listStore, app.dispatcher, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create list service: %w", err)
	}

	recurrenceHandler, err := recurrence.NewHandler(app.tasks, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create recurrence handler: %w", err)
	}
	app.recurrence = recurrenceHandler.Register(app.dispatcher)

	if app.config.Reminders.Enabled {
		app.queue = jobs.NewQueue(app.config.Reminders.QueueSize, app.logger)
		app.pool = jobs.NewWorkerPool(app.queue, jobs.WorkerPoolConfig{
			WorkerCount: app.config.Reminders.Workers,
		}, app.logger)
		app.pool.SetErrorHandler(func(job jobs.Job, err error) {
			app.logger.Warn("reminder delivery failed",
				slog.String("job_id", job.ID().String()),
				slog.String("error", err.Error()))
		})

		app.scheduler, err = reminder.NewScheduler(app.tasks, app.dispatcher, app.queue, nil, reminder.Config{
			PollInterval: app.config.Reminders.PollInterval,
		}, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create reminder scheduler: %w", err)
		}
	}

	return nil
}

// Run serves HTTP on ln and runs the reminder scheduler until ctx is
// cancelled, then shuts everything down within the configured timeout.
func (app *application) Run(ctx context.Context, ln net.Listener) error {
	defer app.cleanup()

	server := &http.Server{
		Handler:           api.NewRouter(app.tasks, app.lists, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if app.scheduler != nil {
		app.pool.Start()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.scheduler.Run(runCtx); err != nil {
				app.logger.Error("reminder scheduler failed", slog.String("error", err.Error()))
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	cancel()
	wg.Wait()

	app.logger.Info("server shutdown completed")
	return runErr
}

// cleanup releases resources in reverse order of creation. Safe to call
// more than once.
func (app *application) cleanup() {
	app.cleanupOnce.Do(func() {
		if app.pool != nil {
			app.queue.Close()
			app.pool.Stop()
		}
		if app.scheduler != nil {
			app.scheduler.Close()
		}
		if app.recurrence != nil {
			app.recurrence.Unsubscribe()
		}
		if app.tasks != nil {
			app.tasks.Close()
		}
		if app.db != nil {
			if err := app.db.Close(); err != nil {
				app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
			}
		}
	})
}
