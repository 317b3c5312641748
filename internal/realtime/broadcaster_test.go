package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/stretchr/testify/require"
)

func Test_Broadcaster_SendToUser(t *testing.T) {
	ctx := context.Background()
	connections := NewConnectionRegistry()
	rooms := NewRoomRegistry()
	broadcaster := NewBroadcaster(connections, rooms)

	ev := event.New(
		&event.NewNotificationEvent{Kind: "announcement", Title: "Hello"},
		event.Metadata{ToUser: "user1"},
	)

	// Offline user, nothing delivered.
	require.False(t, broadcaster.SendToUser(ctx, "user1", ev))

	healthy := &fakeSender{}
	broken := &fakeSender{failing: true}
	connections.Register(ctx, NewConnection("user1", healthy))
	connections.Register(ctx, NewConnection("user1", broken))

	// One dead handle does not prevent delivery on the other.
	require.True(t, broadcaster.SendToUser(ctx, "user1", ev))
	require.Len(t, healthy.written, 1)

	var resp event.EventResponse
	require.NoError(t, json.Unmarshal(healthy.written[0], &resp))
	require.Equal(t, "new_notification", resp.Op)
	require.Equal(t, int64(1), resp.Seq)

	// The sequence number increases on every send.
	require.True(t, broadcaster.SendToUser(ctx, "user1", ev))
	require.NoError(t, json.Unmarshal(healthy.written[1], &resp))
	require.Equal(t, int64(2), resp.Seq)
}

func Test_Broadcaster_CompressesLargeEvents(t *testing.T) {
	ctx := context.Background()
	connections := NewConnectionRegistry()
	broadcaster := NewBroadcaster(connections, NewRoomRegistry())

	sender := &fakeSender{}
	connections.Register(ctx, NewConnection("user1", sender))

	small := event.New(
		&event.NewNotificationEvent{Kind: "announcement", Title: "Hello"},
		event.Metadata{ToUser: "user1"},
	)
	large := event.New(
		&event.NewNotificationEvent{
			Kind:  "announcement",
			Title: "Hello",
			Body:  strings.Repeat("the quarterly report is out ", 64),
		},
		event.Metadata{ToUser: "user1"},
	)

	require.True(t, broadcaster.SendToUser(ctx, "user1", small))
	require.True(t, broadcaster.SendToUser(ctx, "user1", large))

	require.Equal(t, []bool{false, true}, sender.compressed)
	require.GreaterOrEqual(t, len(sender.written[1]), compressThreshold)
}

func Test_Broadcaster_SendToRoom(t *testing.T) {
	ctx := context.Background()
	connections := NewConnectionRegistry()
	rooms := NewRoomRegistry()
	broadcaster := NewBroadcaster(connections, rooms)

	rooms.Join("user1", "room1")
	rooms.Join("user2", "room1")
	rooms.Join("user3", "room1")

	// user1 is online on two devices, user2 on one, user3 is offline.
	device1 := &fakeSender{}
	device2 := &fakeSender{}
	device3 := &fakeSender{}
	connections.Register(ctx, NewConnection("user1", device1))
	connections.Register(ctx, NewConnection("user1", device2))
	connections.Register(ctx, NewConnection("user2", device3))

	ev := event.New(
		&event.RoomJoinedEvent{RoomID: "room1", UserID: "user3"},
		event.Metadata{ToRoom: "room1"},
	)

	// Delivered counts members, not handles.
	require.Equal(t, 2, broadcaster.SendToRoom(ctx, "room1", ev))
	require.Len(t, device1.written, 1)
	require.Len(t, device2.written, 1)
	require.Len(t, device3.written, 1)

	// Non-members receive nothing.
	require.Equal(t, 0, broadcaster.SendToRoom(ctx, "room2", ev))
}
