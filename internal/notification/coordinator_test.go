package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/testutil"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	written [][]byte
}

func (s *captureSender) Write(msg []byte, needCompression bool) error {
	s.written = append(s.written, msg)
	return nil
}

type coordinatorFixture struct {
	connections *realtime.ConnectionRegistry
	rooms       *realtime.RoomRegistry
	provider    *testutil.MockPushProvider
	coordinator *Coordinator
}

func newCoordinatorFixture(ctx context.Context) *coordinatorFixture {
	connections := realtime.NewConnectionRegistry()
	rooms := realtime.NewRoomRegistry()
	broadcaster := realtime.NewBroadcaster(connections, rooms)
	provider := &testutil.MockPushProvider{}

	cfg := xcontext.Configs(ctx)
	coordinator := NewCoordinator(
		repository.NewUserRepository(),
		rooms,
		broadcaster,
		NewPushDispatcher(repository.NewDeviceRepository(), provider, cfg.Push),
		NewRateLimiter(cfg.Notification.RateLimits),
	)

	return &coordinatorFixture{
		connections: connections,
		rooms:       rooms,
		provider:    provider,
		coordinator: coordinator,
	}
}

func Test_Coordinator_Notify_RequiresOneTarget(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	fixture := newCoordinatorFixture(ctx)

	_, err := fixture.coordinator.Notify(ctx, &Envelope{Kind: KindAnnouncement})
	require.Equal(t, "Require exactly one target", err.Error())

	_, err = fixture.coordinator.Notify(ctx, &Envelope{
		ToUser: testutil.User1.ID, ToRoom: "room1", Kind: KindAnnouncement,
	})
	require.Equal(t, "Require exactly one target", err.Error())

	_, err = fixture.coordinator.Notify(ctx, &Envelope{
		ToUser: "nobody", Kind: KindAnnouncement,
	})
	require.Equal(t, "Not found user nobody", err.Error())
}

func Test_Coordinator_Notify_RoomFanOut(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	fixture := newCoordinatorFixture(ctx)

	fixture.rooms.Join(testutil.User1.ID, "room1")
	fixture.rooms.Join(testutil.User2.ID, "room1")
	fixture.rooms.Join(testutil.User3.ID, "room1")

	// user1 is online on two devices, user2 and the actor are offline.
	device1 := &captureSender{}
	device2 := &captureSender{}
	fixture.connections.Register(ctx, realtime.NewConnection(testutil.User1.ID, device1))
	fixture.connections.Register(ctx, realtime.NewConnection(testutil.User1.ID, device2))

	summary, err := fixture.coordinator.Notify(ctx, &Envelope{
		ToRoom:  "room1",
		Kind:    KindAnnouncement,
		ActorID: testutil.User3.ID,
		Title:   "Maintenance",
		Body:    "The office closes early today",
	})
	require.NoError(t, err)

	// One online member over the socket; both non-actor members have one
	// registered device each for the push channel.
	require.Equal(t, 1, summary.SocketDelivered)
	require.Equal(t, 2, summary.PushTotal)
	require.Equal(t, 2, summary.PushSuccess)

	require.Len(t, device1.written, 1)
	require.Len(t, device2.written, 1)

	var resp event.EventResponse
	require.NoError(t, json.Unmarshal(device1.written[0], &resp))
	require.Equal(t, "new_notification", resp.Op)

	// The actor's own devices are never pushed to.
	pushedTokens := []string{}
	for _, message := range fixture.provider.SentMessages {
		pushedTokens = append(pushedTokens, message.To...)
	}
	require.ElementsMatch(t,
		[]string{testutil.Device1.Token, testutil.Device2.Token}, pushedTokens)
}

func Test_Coordinator_Notify_UserTarget(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	fixture := newCoordinatorFixture(ctx)

	// user2 is offline, so only the push channel delivers.
	summary, err := fixture.coordinator.Notify(ctx, &Envelope{
		ToUser:  testutil.User2.ID,
		Kind:    KindTaskAssigned,
		ActorID: testutil.User3.ID,
		Data:    map[string]string{"task_name": "Quarterly report"},
	})
	require.NoError(t, err)
	require.Equal(t, 0, summary.SocketDelivered)
	require.Equal(t, 1, summary.PushTotal)
	require.Equal(t, 1, summary.PushSuccess)

	// The template renders the push payload when no explicit text is given.
	require.Len(t, fixture.provider.SentMessages, 1)
	require.Equal(t, "Task assigned", fixture.provider.SentMessages[0].Title)
	require.Equal(t, "You have been assigned to Quarterly report",
		fixture.provider.SentMessages[0].Body)
}

func Test_Coordinator_Notify_RateLimit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	fixture := newCoordinatorFixture(ctx)

	// The test configs allow one suggestion per five seconds.
	delivered := 0
	limited := 0
	for i := 0; i < 3; i++ {
		summary, err := fixture.coordinator.Notify(ctx, &Envelope{
			ToUser:  testutil.User2.ID,
			Kind:    KindSuggestion,
			ActorID: testutil.User1.ID,
			Data:    map[string]string{"sender_name": testutil.User1.Name},
		})
		require.NoError(t, err)

		if summary.RateLimited {
			limited++
		} else {
			delivered++
		}
	}

	require.Equal(t, 1, delivered)
	require.Equal(t, 2, limited)
}

func Test_Coordinator_Notify_DuplicateSkipsRateWindow(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)

	connections := realtime.NewConnectionRegistry()
	rooms := realtime.NewRoomRegistry()
	provider := &testutil.MockPushProvider{}
	coordinator := NewCoordinator(
		repository.NewUserRepository(),
		rooms,
		realtime.NewBroadcaster(connections, rooms),
		NewPushDispatcher(repository.NewDeviceRepository(), provider, xcontext.Configs(ctx).Push),
		NewRateLimiter(map[string]config.RateLimitConfigs{
			KindSuggestion: {Limit: 2, Window: 5 * time.Second},
		}),
	)

	env := func(key string) *Envelope {
		return &Envelope{
			ToUser:    testutil.User2.ID,
			Kind:      KindSuggestion,
			ActorID:   testutil.User1.ID,
			Data:      map[string]string{"sender_name": testutil.User1.Name},
			DedupeKey: key,
		}
	}

	summary, err := coordinator.Notify(ctx, env("suggestion-7"))
	require.NoError(t, err)
	require.False(t, summary.RateLimited)
	require.Equal(t, 1, summary.PushSuccess)

	// A collapsed duplicate is not a new event, so it must report
	// Deduplicated and leave the actor's window budget untouched.
	for i := 0; i < 3; i++ {
		summary, err = coordinator.Notify(ctx, env("suggestion-7"))
		require.NoError(t, err)
		require.True(t, summary.Deduplicated)
		require.False(t, summary.RateLimited)
	}

	// The second window slot is still available after the duplicates.
	summary, err = coordinator.Notify(ctx, env("suggestion-8"))
	require.NoError(t, err)
	require.False(t, summary.RateLimited)
	require.Equal(t, 1, summary.PushSuccess)

	summary, err = coordinator.Notify(ctx, env("suggestion-9"))
	require.NoError(t, err)
	require.True(t, summary.RateLimited)
}

func Test_Coordinator_Notify_Dedupe(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	fixture := newCoordinatorFixture(ctx)

	env := func() *Envelope {
		return &Envelope{
			ToUser:    testutil.User2.ID,
			Kind:      KindAnnouncement,
			ActorID:   testutil.User3.ID,
			Title:     "Maintenance",
			DedupeKey: "announcement-42",
		}
	}

	summary, err := fixture.coordinator.Notify(ctx, env())
	require.NoError(t, err)
	require.False(t, summary.Deduplicated)
	require.Equal(t, 1, summary.PushSuccess)

	// A repeated key inside the TTL collapses into nothing.
	summary, err = fixture.coordinator.Notify(ctx, env())
	require.NoError(t, err)
	require.True(t, summary.Deduplicated)
	require.Equal(t, 0, summary.PushTotal)

	// After the TTL the key delivers again.
	fixture.coordinator.now = func() time.Time { return time.Now().Add(2 * dedupeTTL) }
	summary, err = fixture.coordinator.Notify(ctx, env())
	require.NoError(t, err)
	require.False(t, summary.Deduplicated)
	require.Equal(t, 1, summary.PushSuccess)
}
