package domain

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/intranet-lab/backend/internal/common"
	"github.com/intranet-lab/backend/internal/middleware"
	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/internal/notification"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/realtime/directive"
	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/jwt"
	"github.com/intranet-lab/backend/pkg/router"
	"github.com/intranet-lab/backend/pkg/testutil"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type wireEvent struct {
	Op   string          `json:"o"`
	Seq  int64           `json:"s"`
	Data json.RawMessage `json:"d"`
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev wireEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func Test_realtimeDomain_FullScenario(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	cfg := xcontext.Configs(ctx)

	connections := realtime.NewConnectionRegistry()
	rooms := realtime.NewRoomRegistry()
	broadcaster := realtime.NewBroadcaster(connections, rooms)
	provider := &testutil.MockPushProvider{}
	coordinator := notification.NewCoordinator(
		repository.NewUserRepository(),
		rooms,
		broadcaster,
		notification.NewPushDispatcher(repository.NewDeviceRepository(), provider, cfg.Push),
		notification.NewRateLimiter(cfg.Notification.RateLimits),
	)

	realtimeDomain := NewRealtimeDomain(
		connections, rooms, broadcaster, coordinator,
		repository.NewUserRepository(), repository.NewChatThreadRepository())

	defaultRouter := router.New(ctx)
	defaultRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Middleware())
	router.Websocket(defaultRouter, "/realtime", realtimeDomain.Serve)

	server := httptest.NewServer(defaultRouter.Handler(cfg.RealtimeServer))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/realtime?token="

	engine := jwt.NewEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.TokenExpiration)
	dial := func(userID string) *websocket.Conn {
		token, err := engine.Generate(userID, model.AccessToken{ID: userID})
		require.NoError(t, err)

		conn, _, err := websocket.DefaultDialer.Dial(wsURL+token, nil)
		require.NoError(t, err)
		return conn
	}

	// An invalid token is rejected before the upgrade.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)

	conn1 := dial(testutil.User1.ID)
	defer conn1.Close()

	// The welcome event lists the thread rooms re-derived on connect.
	welcome := readEvent(t, conn1)
	require.Equal(t, "welcome", welcome.Op)

	var welcomeData event.WelcomeEvent
	require.NoError(t, json.Unmarshal(welcome.Data, &welcomeData))
	require.Equal(t, testutil.User1.ID, welcomeData.UserID)
	require.Contains(t, welcomeData.Rooms, common.ThreadRoomID(testutil.Thread1.ID))

	conn2 := dial(testutil.User2.ID)
	defer conn2.Close()
	require.Equal(t, "welcome", readEvent(t, conn2).Op)

	require.Eventually(t, func() bool {
		return connections.IsOnline(testutil.User1.ID) && connections.IsOnline(testutil.User2.ID)
	}, 3*time.Second, 10*time.Millisecond)

	// user1 sends a message into the shared thread; both members receive the
	// live event, including the sender's own echo.
	require.NoError(t, conn1.WriteJSON(
		directive.NewSendMessageDirective(testutil.Thread1.ID, "hello there")))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		ev := readEvent(t, conn)
		require.Equal(t, "new_message", ev.Op)

		var message event.NewMessageEvent
		require.NoError(t, json.Unmarshal(ev.Data, &message))
		require.Equal(t, testutil.User1.ID, message.SenderID)
		require.Equal(t, "hello there", message.Content)
		require.Equal(t, testutil.Thread1.ID, message.ThreadID)
	}

	// The push channel only targets the other member's device.
	require.Eventually(t, func() bool {
		return len(provider.SentMessages) == 1
	}, 3*time.Second, 10*time.Millisecond)
	require.Equal(t, []string{testutil.Device2.Token}, provider.SentMessages[0].To)

	// Ad hoc rooms via directives.
	require.NoError(t, conn1.WriteJSON(directive.NewJoinRoomDirective("announcements")))
	joined := readEvent(t, conn1)
	require.Equal(t, "room_joined", joined.Op)
	require.Eventually(t, func() bool {
		return rooms.IsMember(testutil.User1.ID, "announcements")
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, conn1.WriteJSON(directive.NewLeaveRoomDirective("announcements")))
	left := readEvent(t, conn1)
	require.Equal(t, "room_left", left.Op)
	require.Eventually(t, func() bool {
		return !rooms.IsMember(testutil.User1.ID, "announcements")
	}, 3*time.Second, 10*time.Millisecond)

	// Closing the socket takes the user offline, but thread membership stays.
	require.NoError(t, conn2.Close())
	require.Eventually(t, func() bool {
		return !connections.IsOnline(testutil.User2.ID)
	}, 3*time.Second, 10*time.Millisecond)
	require.True(t, rooms.IsMember(testutil.User2.ID, common.ThreadRoomID(testutil.Thread1.ID)))
}
