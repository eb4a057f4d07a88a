// Package api is the operator HTTP surface: auth, mission CRUD, lifecycle
// control, and run history. Thin I/O over the store and scheduler.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/api/handlers"
	"github.com/pulseworks/pulsebot/src/api/middleware"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/scheduler"
)

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

func NewServer(cfg config.APIConfig, store *data.Store, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	secret := []byte(cfg.JWTSecret)
	authH := &handlers.Auth{Store: store, JWTSecret: secret}
	missionH := &handlers.Missions{Store: store, Scheduler: sched}

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authH.Login)

		secured := v1.Group("")
		secured.Use(middleware.JWT(secret))
		secured.GET("/missions", missionH.List)
		secured.POST("/missions", missionH.Create)
		secured.GET("/missions/:id", missionH.Get)
		secured.PUT("/missions/:id", missionH.Update)
		secured.DELETE("/missions/:id", missionH.Delete)
		secured.POST("/missions/:id/start", missionH.Start)
		secured.POST("/missions/:id/stop", missionH.Stop)
		secured.GET("/missions/:id/runs", missionH.Runs)
		secured.GET("/missions/:id/actions", missionH.Actions)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Listen,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() {
	s.logger.Info().Str("listen", s.httpServer.Addr).Msg("api listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error().Err(err).Msg("api server failed")
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
