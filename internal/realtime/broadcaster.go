package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

// Events at or past this size are zlib-compressed before hitting the wire.
const compressThreshold = 1024

// Broadcaster fans a single event out to whichever live connections the
// registry reports. Offline targets are an expected outcome, not an error.
type Broadcaster struct {
	connections *ConnectionRegistry
	rooms       *RoomRegistry

	seq int64
}

func NewBroadcaster(connections *ConnectionRegistry, rooms *RoomRegistry) *Broadcaster {
	return &Broadcaster{
		connections: connections,
		rooms:       rooms,
	}
}

// SendToUser returns true iff at least one live handle accepted the event. A
// failed write on one handle never aborts delivery to the remaining handles.
func (b *Broadcaster) SendToUser(ctx context.Context, userID string, ev *event.EventRequest) bool {
	handles := b.connections.HandlesFor(userID)
	if len(handles) == 0 {
		return false
	}

	raw, err := json.Marshal(event.Format(ev, atomic.AddInt64(&b.seq, 1)))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", ev.Op, err)
		return false
	}

	delivered := false
	for _, conn := range handles {
		if err := conn.Sender.Write(raw, len(raw) >= compressThreshold); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot send event %s to handle %s: %v", ev.Op, conn.ID, err)
			continue
		}

		delivered = true
	}

	return delivered
}

// SendToRoom resolves membership at call time and returns the number of
// members that were online and accepted the event.
func (b *Broadcaster) SendToRoom(ctx context.Context, roomID string, ev *event.EventRequest) int {
	delivered := 0
	for _, userID := range b.rooms.MembersOf(roomID) {
		if b.SendToUser(ctx, userID, ev) {
			delivered++
		}
	}

	return delivered
}
