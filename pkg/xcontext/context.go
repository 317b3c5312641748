package xcontext

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/pkg/logger"
	"github.com/intranet-lab/backend/pkg/ws"
	"github.com/intranet-lab/backend/pkg/xredis"
	"gorm.io/gorm"
)

type (
	configsKey       struct{}
	loggerKey        struct{}
	dbKey            struct{}
	redisClientKey   struct{}
	snowflakeKey     struct{}
	httpClientKey    struct{}
	httpRequestKey   struct{}
	wsClientKey      struct{}
	requestUserIDKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	if cfg, ok := ctx.Value(configsKey{}).(config.Configs); ok {
		return cfg
	}

	return config.Configs{}
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		return l
	}

	return logger.NewLogger(logger.INFO)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

func DB(ctx context.Context) *gorm.DB {
	if db, ok := ctx.Value(dbKey{}).(*gorm.DB); ok {
		return db
	}

	return nil
}

func WithRedisClient(ctx context.Context, client xredis.Client) context.Context {
	return context.WithValue(ctx, redisClientKey{}, client)
}

func RedisClient(ctx context.Context) xredis.Client {
	if client, ok := ctx.Value(redisClientKey{}).(xredis.Client); ok {
		return client
	}

	return nil
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	if node, ok := ctx.Value(snowflakeKey{}).(*snowflake.Node); ok {
		return node
	}

	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	return node
}

func WithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, httpClientKey{}, client)
}

func HTTPClient(ctx context.Context) *http.Client {
	if client, ok := ctx.Value(httpClientKey{}).(*http.Client); ok {
		return client
	}

	return http.DefaultClient
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(httpRequestKey{}).(*http.Request); ok {
		return r
	}

	return nil
}

func WithWSClient(ctx context.Context, client *ws.Client) context.Context {
	return context.WithValue(ctx, wsClientKey{}, client)
}

func WSClient(ctx context.Context) *ws.Client {
	if client, ok := ctx.Value(wsClientKey{}).(*ws.Client); ok {
		return client
	}

	return nil
}

func WithRequestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requestUserIDKey{}, userID)
}

func RequestUserID(ctx context.Context) string {
	if id, ok := ctx.Value(requestUserIDKey{}).(string); ok {
		return id
	}

	return ""
}
