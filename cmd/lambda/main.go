package main

import (
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/config"
	"invocation-adapter/pkg/lambda"
)

func main() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	config.ConfigureLogging(cfg)

	manager := lambda.GetConnectionManager()
	if err := manager.Initialize(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize adapter")
	}

	// The runtime sends SIGTERM before shutting the environment down
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGTERM)
		<-quit

		if err := manager.Cleanup(); err != nil {
			logrus.WithError(err).Error("Cleanup failed")
		}
		os.Exit(0)
	}()

	logrus.WithFields(logrus.Fields{
		"convention":      cfg.Adapter.Convention,
		"deployment_mode": config.GetDeploymentMode(),
	}).Info("Adapter ready")

	awslambda.Start(manager.HandleEvent)
}
