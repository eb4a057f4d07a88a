// Package app wires the engine, scheduler, API, and notifier together.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/pulseworks/pulsebot/src/ai/providers"
	"github.com/pulseworks/pulsebot/src/api"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/engine"
	"github.com/pulseworks/pulsebot/src/events"
	"github.com/pulseworks/pulsebot/src/logging"
	"github.com/pulseworks/pulsebot/src/notify"
	"github.com/pulseworks/pulsebot/src/platform"
	"github.com/pulseworks/pulsebot/src/scheduler"
)

type App struct {
	Scheduler *scheduler.Scheduler
	API       *api.Server
	notifier  *notify.DiscordNotifier
	logger    zerolog.Logger
}

// Start loads configuration, builds the engine stack, restores scheduled
// missions, and (optionally) starts the operator API.
func Start(ctx context.Context, db *gorm.DB, rdb *redis.Client, logger zerolog.Logger) (*App, error) {
	if err := data.LoadSettings(db); err != nil {
		logger.Warn().Err(err).Msg("settings load failed, using env only")
	}

	engineCfg := config.LoadEngineConfig()
	platformCfg := config.LoadPlatformConfig()
	aiCfg := config.LoadAIConfig()

	if platformCfg.Endpoint == "" || platformCfg.Token == "" {
		return nil, fmt.Errorf("app: platform endpoint and token are required")
	}
	if engineCfg.ActorID == "" {
		return nil, fmt.Errorf("app: platform actor id is required")
	}

	store := data.NewStore(db)
	sink := events.NewStreamSink(rdb, logging.Component(logger, "events"))
	platformClient := platform.NewHTTPClient(platformCfg.Endpoint, platformCfg.Token, platformCfg.Language)

	budget := engine.NewBudgetTracker(engineCfg.BudgetWindow, engineCfg.Budgets)
	generator := engine.NewGenerator(aiCfg, logging.Component(logger, "generator"))
	dedup := engine.NewDeduplicator(store, engineCfg.DedupWindow, engineCfg.DedupSimilarity)
	sourcer := engine.NewSourcer(platformClient, generator, budget, sink,
		logging.Component(logger, "sourcer"), engineCfg.RelevanceThreshold, engineCfg.SearchLimit)
	executor := engine.NewExecutor(store, platformClient, budget, dedup, generator, sink,
		logging.Component(logger, "executor"), engineCfg.ActorID)
	orchestrator := engine.NewOrchestrator(store, sourcer, executor, sink,
		logging.Component(logger, "orchestrator"), engineCfg.InterActionDelay)

	sched := scheduler.New(store, orchestrator, sink, logging.Component(logger, "scheduler"))

	app := &App{Scheduler: sched, logger: logger}

	notifyCfg := config.LoadNotifyConfig()
	if notifyCfg.Enabled && notifyCfg.Token != "" && notifyCfg.ChannelID != "" {
		notifier, err := notify.NewDiscordNotifier(notifyCfg.Token, notifyCfg.ChannelID, logging.Component(logger, "notify"))
		if err != nil {
			logger.Warn().Err(err).Msg("discord notifier unavailable")
		} else {
			sched.SetNotifier(notifier)
			app.notifier = notifier
		}
	}

	if err := sched.Start(ctx); err != nil {
		return nil, err
	}

	apiCfg := config.LoadAPIConfig()
	if apiCfg.Enabled {
		if apiCfg.JWTSecret == "" {
			return nil, fmt.Errorf("app: api enabled but API_JWT_SECRET is not set")
		}
		app.API = api.NewServer(apiCfg, store, sched, logging.Component(logger, "api"))
		go app.API.Run()
	}

	return app, nil
}

// Stop shuts everything down; in-flight mission runs are bounded by the
// root context passed to Start.
func (a *App) Stop(ctx context.Context) {
	a.Scheduler.Stop()
	if a.API != nil {
		if err := a.API.Shutdown(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("api shutdown")
		}
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
}
