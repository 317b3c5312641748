package domain

import (
	"context"
	"errors"
	"strconv"

	"github.com/intranet-lab/backend/internal/common"
	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PresenceDomain interface {
	Get(ctx context.Context, req *model.GetPresenceRequest) (*model.GetPresenceResponse, error)
	GetOnlineUsers(ctx context.Context, req *model.GetOnlineUsersRequest) (*model.GetOnlineUsersResponse, error)
}

type presenceDomain struct {
	connections *realtime.ConnectionRegistry
	userRepo    repository.UserRepository
}

func NewPresenceDomain(
	connections *realtime.ConnectionRegistry,
	userRepo repository.UserRepository,
) *presenceDomain {
	return &presenceDomain{connections: connections, userRepo: userRepo}
}

func (d *presenceDomain) Get(
	ctx context.Context, req *model.GetPresenceRequest,
) (*model.GetPresenceResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a user id")
	}

	if d.connections.IsOnline(req.UserID) {
		return &model.GetPresenceResponse{Online: true}, nil
	}

	return &model.GetPresenceResponse{LastSeen: d.lastSeen(ctx, req.UserID)}, nil
}

// lastSeen prefers the redis record which is written on every disconnect and
// shared across instances, then falls back to the database column. A user
// who never connected reports zero.
func (d *presenceDomain) lastSeen(ctx context.Context, userID string) int64 {
	if redisClient := xcontext.RedisClient(ctx); redisClient != nil {
		value, err := redisClient.Get(ctx, common.RedisKeyLastSeen(userID))
		if err == nil {
			lastSeen, err := strconv.ParseInt(value, 10, 64)
			if err == nil {
				return lastSeen
			}

			xcontext.Logger(ctx).Warnf("Invalid last seen record of %s: %v", userID, err)
		}
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		}

		return 0
	}

	if user.LastSeenAt.IsZero() {
		return 0
	}

	return user.LastSeenAt.Unix()
}

func (d *presenceDomain) GetOnlineUsers(
	ctx context.Context, _ *model.GetOnlineUsersRequest,
) (*model.GetOnlineUsersResponse, error) {
	if redisClient := xcontext.RedisClient(ctx); redisClient != nil {
		userIDs, err := redisClient.SMembers(ctx, common.RedisKeyOnlineUsers())
		if err == nil {
			return &model.GetOnlineUsersResponse{UserIDs: userIDs}, nil
		}

		xcontext.Logger(ctx).Warnf("Cannot get online users from redis: %v", err)
	}

	return &model.GetOnlineUsersResponse{UserIDs: d.connections.OnlineUsers()}, nil
}
