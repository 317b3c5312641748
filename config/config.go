package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	Database       DatabaseConfigs     `toml:"database"`
	RealtimeServer ServerConfigs       `toml:"realtime_server"`
	Auth           AuthConfigs         `toml:"auth"`
	Redis          RedisConfigs        `toml:"redis"`
	Push           PushConfigs         `toml:"push"`
	Notification   NotificationConfigs `toml:"notification"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host      string   `toml:"host"`
	Port      string   `toml:"port"`
	Cert      string   `toml:"cert"`
	Key       string   `toml:"key"`
	AllowCORS []string `toml:"allow_cors"`
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret     string        `toml:"token_secret"`
	TokenExpiration time.Duration `toml:"token_expiration"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type PushConfigs struct {
	Endpoint     string        `toml:"endpoint"`
	AccessToken  string        `toml:"access_token"`
	BatchSize    int           `toml:"batch_size"`
	Timeout      time.Duration `toml:"timeout"`
	CheckReceipt bool          `toml:"check_receipt"`
}

type NotificationConfigs struct {
	// RateLimits is keyed by notification kind. A kind without an entry is
	// not rate limited.
	RateLimits map[string]RateLimitConfigs `toml:"rate_limits"`
}

type RateLimitConfigs struct {
	Limit  int           `toml:"limit"`
	Window time.Duration `toml:"window"`
}
