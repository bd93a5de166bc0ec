package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"minicart/internal/checkout"
	"minicart/internal/config"
	"minicart/internal/controller"
	"minicart/internal/httpserver"
	"minicart/internal/source"
	"minicart/internal/store"
	"minicart/internal/view"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[cartd] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	st, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init store: %v", err)
	}
	defer closeStore()

	var notifier checkout.Notifier = checkout.Nop{}
	if cfg.CheckoutAMQPURL != "" {
		amqpNotifier, err := checkout.NewAMQPNotifier(cfg.CheckoutAMQPURL, cfg.CheckoutQueue)
		if err != nil {
			logger.Fatalf("init checkout notifier: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
	}

	src := source.New(st, cfg.CartFeedURL, logger)
	ctrl := controller.New(src, st, notifier, view.NewFormatter(), cfg.CheckoutURL, logger)
	if err := ctrl.Load(ctx); err != nil {
		// The page renders the error state; the service still comes up.
		logger.Printf("initial cart load failed: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Ctrl:  ctrl,
		Store: st,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func buildStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store.NewRedis(client, cfg.CartKey, logger), func() { client.Close() }, nil
	case "postgres":
		pool, err := store.ConnectPostgres(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPostgres(pool, cfg.CartKey, logger), pool.Close, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
