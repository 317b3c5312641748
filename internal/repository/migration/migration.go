package migration

import (
	"context"

	"github.com/intranet-lab/backend/internal/entity"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

func Migrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Device{},
		&entity.ChatThread{},
		&entity.ChatThreadMember{},
	)
}
