package realtime

import (
	"context"
	"strconv"
	"time"

	"github.com/intranet-lab/backend/internal/common"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

// PresenceRecorder persists presence transitions outside of the in-memory
// registry: an online set in redis and a last-seen timestamp in both redis
// and the user table. Failures are logged and swallowed, presence bookkeeping
// must never break a connection.
type PresenceRecorder struct {
	userRepo repository.UserRepository
}

func NewPresenceRecorder(userRepo repository.UserRepository) *PresenceRecorder {
	return &PresenceRecorder{userRepo: userRepo}
}

func (p *PresenceRecorder) UserOnline(ctx context.Context, userID string) {
	redisClient := xcontext.RedisClient(ctx)
	if redisClient == nil {
		return
	}

	if err := redisClient.SAdd(ctx, common.RedisKeyOnlineUsers(), userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot add %s to online set: %v", userID, err)
	}
}

func (p *PresenceRecorder) UserOffline(ctx context.Context, userID string) {
	now := time.Now()
	if err := p.userRepo.UpdateLastSeen(ctx, userID, now); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update last seen of %s: %v", userID, err)
	}

	redisClient := xcontext.RedisClient(ctx)
	if redisClient == nil {
		return
	}

	key := common.RedisKeyLastSeen(userID)
	if err := redisClient.Set(ctx, key, strconv.FormatInt(now.Unix(), 10)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set last seen key of %s: %v", userID, err)
	}

	if err := redisClient.SRem(ctx, common.RedisKeyOnlineUsers(), userID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot remove %s from online set: %v", userID, err)
	}
}
