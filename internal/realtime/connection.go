package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender is one live duplex channel to a client. ws.Client satisfies it; tests
// substitute their own.
type Sender interface {
	Write(msg []byte, needCompression bool) error
}

type Connection struct {
	ID          string
	UserID      string
	Sender      Sender
	ConnectedAt time.Time
}

func NewConnection(userID string, sender Sender) *Connection {
	return &Connection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Sender:      sender,
		ConnectedAt: time.Now(),
	}
}

// ConnectionRegistry is the authoritative map of which users are reachable
// over a live duplex channel. A user may hold any number of concurrent
// connections; the user counts as online while at least one remains.
type ConnectionRegistry struct {
	connections map[string]map[string]*Connection

	onOnline  func(ctx context.Context, userID string)
	onOffline func(ctx context.Context, userID string)

	mutex sync.RWMutex
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		connections: make(map[string]map[string]*Connection),
		mutex:       sync.RWMutex{},
	}
}

// OnPresenceChange installs hooks invoked when a user transitions between
// online and offline. The offline hook fires on removal of the last handle,
// whether the disconnect was clean or not.
func (r *ConnectionRegistry) OnPresenceChange(
	online func(ctx context.Context, userID string),
	offline func(ctx context.Context, userID string),
) {
	r.onOnline = online
	r.onOffline = offline
}

func (r *ConnectionRegistry) Register(ctx context.Context, conn *Connection) {
	r.mutex.Lock()
	handles, ok := r.connections[conn.UserID]
	if !ok {
		handles = make(map[string]*Connection)
		r.connections[conn.UserID] = handles
	}

	wasOffline := len(handles) == 0
	handles[conn.ID] = conn
	r.mutex.Unlock()

	if wasOffline && r.onOnline != nil {
		r.onOnline(ctx, conn.UserID)
	}
}

// Unregister removes exactly one handle. Unregistering a handle that was
// never registered is a no-op, guarding against double-fired close events.
func (r *ConnectionRegistry) Unregister(ctx context.Context, conn *Connection) {
	r.mutex.Lock()
	handles, ok := r.connections[conn.UserID]
	if !ok {
		r.mutex.Unlock()
		return
	}

	if _, ok := handles[conn.ID]; !ok {
		r.mutex.Unlock()
		return
	}

	delete(handles, conn.ID)
	wentOffline := len(handles) == 0
	if wentOffline {
		delete(r.connections, conn.UserID)
	}
	r.mutex.Unlock()

	if wentOffline && r.onOffline != nil {
		r.onOffline(ctx, conn.UserID)
	}
}

func (r *ConnectionRegistry) IsOnline(userID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.connections[userID]) > 0
}

func (r *ConnectionRegistry) HandlesFor(userID string) []*Connection {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	handles := make([]*Connection, 0, len(r.connections[userID]))
	for _, conn := range r.connections[userID] {
		handles = append(handles, conn)
	}

	return handles
}

func (r *ConnectionRegistry) OnlineUsers() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]string, 0, len(r.connections))
	for userID := range r.connections {
		users = append(users, userID)
	}

	return users
}
