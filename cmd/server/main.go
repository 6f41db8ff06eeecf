package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/config"
	"invocation-adapter/pkg/lambda"
	"invocation-adapter/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	config.ConfigureLogging(cfg)

	// Initialize dependencies
	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	adapterConfig, err := lambda.AdapterConfigFrom(cfg, container.Logger)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid adapter configuration")
	}

	// Native requests pass straight through to the router
	adapter, err := lambda.NewAdapter(container.Router, adapterConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to build adapter")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           adapter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"convention": adapter.Convention(),
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}
