package testutil

import (
	"context"
	"time"

	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/pkg/logger"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		Auth: config.AuthConfigs{
			TokenSecret:     "secret",
			TokenExpiration: time.Minute,
		},
		Notification: config.NotificationConfigs{
			RateLimits: map[string]config.RateLimitConfigs{
				"suggestion": {Limit: 1, Window: 5 * time.Second},
			},
		},
	}
}

// NewMockContext returns a context carrying a fresh in-memory database, a
// silent logger, and the test configs. Call CreateFixtureDb to migrate and
// seed it.
func NewMockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)
	return ctx
}

func NewMockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
