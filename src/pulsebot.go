package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulseworks/pulsebot/src/app"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/logging"
)

func main() {
	config.LoadEnvFile()
	logger := logging.New()

	dsn, err := data.GetMySQLDSN()
	if err != nil {
		logger.Fatal().Err(err).Msg("mysql dsn")
	}
	db, err := data.ConnectMySQL(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("mysql connect")
	}

	// Redis is optional; without it events go to the log only.
	rdb := data.MustRedis(os.Getenv("REDIS_URL"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Start(ctx, db, rdb, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("start")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info().Msg("shutting down")
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	a.Stop(stopCtx)
}
