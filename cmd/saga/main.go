package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/pixil98/go-log"
	"github.com/pixil98/go-saga/cmd/saga/command"
	"github.com/pixil98/go-service"
)

func main() {
	logger := log.NewLogger()

	// Backend credentials may come from a local .env file.
	if err := godotenv.Load(); err != nil {
		logger.WithError(err).Debug("no .env file loaded")
	}

	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		logger.WithError(err).Fatal("creating application")
	}

	err = app.Run(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("running application")
	}

	logger.Info("exiting")
}
