package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"todo-bills/internal/auth"
	"todo-bills/internal/cache"
	"todo-bills/internal/config"
	"todo-bills/internal/controller"
	"todo-bills/internal/database"
	"todo-bills/internal/queue"
	"todo-bills/internal/repository"
	"todo-bills/internal/routes"
	"todo-bills/internal/validation"
	"todo-bills/internal/worker"
	"todo-bills/pkg/logger"
)

func main() {
	// Variables already in the environment win over .env.
	_ = godotenv.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cfg := config.Get()
	logger.SetLevel(cfg.LogLevel)

	db := database.DB(ctx)
	if db == nil {
		logger.Error(ctx, "Database not available; exiting")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Warn(ctx, "JWT_SECRET is not set; authenticated requests will fail")
	}

	// Redis and Kafka are optional; without them lists are read straight
	// from Postgres and change events are dropped.
	lists := cache.NewLists(cache.Client(ctx), cfg.CacheTTLDuration())
	queue.EnsureTopic(ctx)
	events := queue.DefaultPublisher(ctx)

	todos := repository.NewTodos(db)
	bills := repository.NewBills(db)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL())

	logger.Info(ctx, "Bill ownership check", "enabled", cfg.BillOwnershipCheck)

	h := &controller.Handlers{
		Todos:              todos,
		Bills:              bills,
		Users:              repository.NewUsers(db),
		Cache:              lists,
		Events:             events,
		Validator:          validation.New(),
		Tokens:             tokens,
		BillOwnershipCheck: cfg.BillOwnershipCheck,
		SecureCookies:      cfg.SecureCookies,
		Location:           cfg.Location(),
		ReadyChecks: []controller.ReadyCheck{
			{Name: "database", Check: db.PingContext},
			{Name: "redis", Check: lists.Ping},
		},
	}

	// Consumes change events and re-warms the list cache.
	go worker.Run(ctx, &worker.Warmer{Todos: todos, Bills: bills, Cache: lists})

	var handler http.Handler = routes.Router(h, tokens)
	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
		}).Handler(handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	stop()
	if w := queue.Producer(ctx); w != nil {
		if err := w.Close(); err != nil {
			logger.Warn(shutdownCtx, "Kafka producer close failed", "error", err)
		}
	}
	logger.Info(ctx, "Server stopped")
}
