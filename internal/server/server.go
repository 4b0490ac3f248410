// Package server owns the process lifecycle: connect backing services,
// serve HTTP (and optionally gRPC), and shut down on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/app/views"
	"github.com/shashiranjanraj/tailorshop/config"
	"github.com/shashiranjanraj/tailorshop/internal/kernel"
	"github.com/shashiranjanraj/tailorshop/pkg/cache"
	"github.com/shashiranjanraj/tailorshop/pkg/database"
	grpcserver "github.com/shashiranjanraj/tailorshop/pkg/grpc"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/session"
	"github.com/shashiranjanraj/tailorshop/pkg/storage"
	"github.com/shashiranjanraj/tailorshop/pkg/view"
)

const shutdownTimeout = 10 * time.Second

// Start blocks until the HTTP server stops or a shutdown signal arrives.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Setup(config.AppEnv(), os.Stdout)

	boot, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.Connect(boot, config.MongoURI(), config.MongoDB())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(ctx)
	}()

	if name := config.LogMongoCollection(); name != "" {
		sink := logger.NewMongoHandler(db.Database.Collection(name), slog.LevelInfo)
		defer sink.Close()
		logger.Setup(config.AppEnv(), os.Stdout, sink)
	}

	sessions, err := sessionStore(boot)
	if err != nil {
		return err
	}

	archive, err := storage.Open(boot, storage.Config{
		Driver:    config.InvoiceArchive(),
		LocalRoot: config.StorageLocalRoot(),
		S3: storage.S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		},
	})
	if err != nil {
		return err
	}

	renderer, err := view.New(views.FS)
	if err != nil {
		return fmt.Errorf("views: %w", err)
	}

	opts := session.DefaultOptions()
	opts.TTL = config.SessionTTL()
	opts.Secure = config.IsProduction()

	deps := kernel.Deps{
		Users:       repositories.NewUserRepository(db.Database),
		Customers:   repositories.NewCustomerRepository(db.Database),
		Orders:      repositories.NewOrderRepository(db.Database),
		Sessions:    sessions,
		Health:      db.Ping,
		Views:       renderer,
		Session:     opts,
		JWTSecret:   config.JWTSecret(),
		LoginLimit:  config.LoginRateLimit(),
		CORSOrigins: config.CORSAllowedOrigins(),
		Archive:     archive,

		TrustedProxies: config.TrustedProxies(),
	}

	k, err := kernel.NewHTTPKernel(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if port := config.GRPCPort(); port != "" {
		g, _, err := grpcserver.Start(port, db.Ping)
		if err != nil {
			return err
		}
		defer grpcserver.Stop(g)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "app", config.AppName(), "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func sessionStore(ctx context.Context) (cache.Store, error) {
	switch config.SessionDriver() {
	case "memory":
		logger.Warn("using in-memory sessions; they are lost on restart")
		return cache.NewMemory(), nil
	default:
		rdb, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
		if err != nil {
			return nil, err
		}
		return cache.NewRedis(rdb, config.AppName()+":"), nil
	}
}
