package domain

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/testutil"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Write(msg []byte, needCompression bool) error { return nil }

func Test_presenceDomain_Get(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)

	connections := realtime.NewConnectionRegistry()
	userRepo := repository.NewUserRepository()
	presenceDomain := NewPresenceDomain(connections, userRepo)

	_, err := presenceDomain.Get(ctx, &model.GetPresenceRequest{})
	require.Equal(t, "Require a user id", err.Error())

	// A user who never connected has no last seen record.
	resp, err := presenceDomain.Get(ctx, &model.GetPresenceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.False(t, resp.Online)
	require.Zero(t, resp.LastSeen)

	conn := realtime.NewConnection(testutil.User1.ID, nopSender{})
	connections.Register(ctx, conn)

	resp, err = presenceDomain.Get(ctx, &model.GetPresenceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.True(t, resp.Online)

	// After disconnecting, last seen comes from the user table.
	lastSeen := time.Now().Add(-time.Hour).Truncate(time.Second)
	connections.Unregister(ctx, conn)
	require.NoError(t, userRepo.UpdateLastSeen(ctx, testutil.User1.ID, lastSeen))

	resp, err = presenceDomain.Get(ctx, &model.GetPresenceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.False(t, resp.Online)
	require.Equal(t, lastSeen.Unix(), resp.LastSeen)

	// The redis record wins over the database when it exists.
	redisLastSeen := time.Now().Add(-time.Minute).Unix()
	ctxRedis := xcontext.WithRedisClient(ctx, &testutil.MockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			return strconv.FormatInt(redisLastSeen, 10), nil
		},
	})

	resp, err = presenceDomain.Get(ctxRedis, &model.GetPresenceRequest{UserID: testutil.User1.ID})
	require.NoError(t, err)
	require.Equal(t, redisLastSeen, resp.LastSeen)
}

func Test_presenceDomain_GetOnlineUsers(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)

	connections := realtime.NewConnectionRegistry()
	presenceDomain := NewPresenceDomain(connections, repository.NewUserRepository())

	connections.Register(ctx, realtime.NewConnection(testutil.User1.ID, nopSender{}))
	connections.Register(ctx, realtime.NewConnection(testutil.User2.ID, nopSender{}))

	resp, err := presenceDomain.GetOnlineUsers(ctx, &model.GetOnlineUsersRequest{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{testutil.User1.ID, testutil.User2.ID}, resp.UserIDs)

	// With redis available, the shared online set is authoritative.
	ctxRedis := xcontext.WithRedisClient(ctx, &testutil.MockRedisClient{
		SMembersFunc: func(ctx context.Context, key string) ([]string, error) {
			return []string{testutil.User3.ID}, nil
		},
	})

	resp, err = presenceDomain.GetOnlineUsers(ctxRedis, &model.GetOnlineUsersRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User3.ID}, resp.UserIDs)
}
