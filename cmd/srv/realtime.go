package main

import (
	"net/http"

	"github.com/intranet-lab/backend/internal/middleware"
	"github.com/intranet-lab/backend/pkg/router"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRealtime(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedis()
	s.loadSnowFlake()
	s.loadRepos()
	s.loadRealtime()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx)

	defaultRouter := router.New(s.ctx)
	defaultRouter.AddCloser(middleware.Logger())

	authVerifier := middleware.NewAuthVerifier().WithAccessToken()
	defaultRouter.Before(authVerifier.Middleware())

	router.Websocket(defaultRouter, "/realtime", s.realtimeDomain.Serve)

	router.POST(defaultRouter, "/notify", s.notificationDomain.Notify)
	router.POST(defaultRouter, "/registerDevice", s.deviceDomain.Register)
	router.POST(defaultRouter, "/removeDevice", s.deviceDomain.Remove)
	router.GET(defaultRouter, "/getPresence", s.presenceDomain.Get)
	router.GET(defaultRouter, "/getOnlineUsers", s.presenceDomain.GetOnlineUsers)

	s.server = &http.Server{
		Addr:    cfg.RealtimeServer.Address(),
		Handler: defaultRouter.Handler(cfg.RealtimeServer),
	}

	xcontext.Logger(s.ctx).Infof("Starting realtime server on port: %s", cfg.RealtimeServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	return nil
}
