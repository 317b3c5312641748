package main

import (
	"context"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/snowflake"
	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/internal/domain"
	"github.com/intranet-lab/backend/internal/notification"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/api/expo"
	"github.com/intranet-lab/backend/pkg/logger"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/intranet-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo       repository.UserRepository
	deviceRepo     repository.DeviceRepository
	chatThreadRepo repository.ChatThreadRepository

	connections *realtime.ConnectionRegistry
	rooms       *realtime.RoomRegistry
	broadcaster *realtime.Broadcaster
	coordinator *notification.Coordinator

	realtimeDomain     domain.RealtimeDomain
	notificationDomain domain.NotificationDomain
	deviceDomain       domain.DeviceDomain
	presenceDomain     domain.PresenceDomain

	server *http.Server
}

func (s *srv) loadConfig() {
	configs := config.Configs{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.toml"
	}

	if _, err := toml.DecodeFile(path, &configs); err != nil {
		panic(err)
	}

	// Secrets may be injected through the environment instead of the file.
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		configs.Auth.TokenSecret = secret
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		configs.Database.Password = password
	}

	if accessToken := os.Getenv("PUSH_ACCESS_TOKEN"); accessToken != "" {
		configs.Push.AccessToken = accessToken
	}

	s.ctx = xcontext.WithConfigs(s.ctx, configs)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadDatabase() {
	dbCfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.Open(dbCfg.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadRedis() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Redis.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("No redis address, presence is kept in memory only")
		return
	}

	redisClient, err := xredis.NewClient(s.ctx, cfg.Redis.Addr)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithRedisClient(s.ctx, redisClient)
}

func (s *srv) loadSnowFlake() {
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.deviceRepo = repository.NewDeviceRepository()
	s.chatThreadRepo = repository.NewChatThreadRepository()
}

func (s *srv) loadRealtime() {
	cfg := xcontext.Configs(s.ctx)

	s.connections = realtime.NewConnectionRegistry()
	s.rooms = realtime.NewRoomRegistry()
	s.broadcaster = realtime.NewBroadcaster(s.connections, s.rooms)

	recorder := realtime.NewPresenceRecorder(s.userRepo)
	s.connections.OnPresenceChange(recorder.UserOnline, recorder.UserOffline)

	pushDispatcher := notification.NewPushDispatcher(s.deviceRepo, expo.New(cfg.Push), cfg.Push)
	limiter := notification.NewRateLimiter(cfg.Notification.RateLimits)
	s.coordinator = notification.NewCoordinator(s.userRepo, s.rooms, s.broadcaster, pushDispatcher, limiter)
}

func (s *srv) loadDomains() {
	s.realtimeDomain = domain.NewRealtimeDomain(
		s.connections, s.rooms, s.broadcaster, s.coordinator, s.userRepo, s.chatThreadRepo)
	s.notificationDomain = domain.NewNotificationDomain(s.coordinator)
	s.deviceDomain = domain.NewDeviceDomain(s.deviceRepo)
	s.presenceDomain = domain.NewPresenceDomain(s.connections, s.userRepo)
}
