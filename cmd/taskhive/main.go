package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskhive/taskhive/internal/broker"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/database"
	"github.com/taskhive/taskhive/internal/handler"
	"github.com/taskhive/taskhive/internal/logger"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/worker"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskhive",
		Usage: "Task tracking service with due-date reminders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the REST API server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "worker",
				Usage:  "Start the due-scan worker and reminder consumer",
				Action: runWorker,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: runMigrate,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.New(db.Pool())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var root http.Handler = mux
	root = middleware.RequestLogging(root)
	root = middleware.CORS(cfg.CORS.AllowedOrigins)(root)
	root = middleware.Correlation(root)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// runWorker starts the due-scan loop and the reminder consumer in one
// process. The worker tolerates the tasks table being briefly absent, so it
// does not run migrations itself; the serve process owns those.
func runWorker(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	b, err := broker.Connect(ctx, cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer b.Close()

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- b.ConsumeTaskDue(ctx, worker.LogTaskDue)
	}()

	scanner := worker.NewDueScanWorker(repository.NewTaskRepository(db.Pool()), b, cfg.DueScan)
	if err := scanner.Run(ctx); err != nil {
		return err
	}

	return <-consumerErr
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return database.RunMigrations(ctx, db.Pool())
}
