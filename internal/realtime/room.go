package realtime

import "sync"

// RoomRegistry keeps membership bookkeeping decoupled from connection state.
// Rooms spring into existence on first join and disappear on last leave. The
// two maps are mirror images and are only mutated together under the lock.
type RoomRegistry struct {
	roomUsers map[string]map[string]struct{}
	userRooms map[string]map[string]struct{}

	mutex sync.RWMutex
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		roomUsers: make(map[string]map[string]struct{}),
		userRooms: make(map[string]map[string]struct{}),
		mutex:     sync.RWMutex{},
	}
}

func (r *RoomRegistry) Join(userID, roomID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.roomUsers[roomID]; !ok {
		r.roomUsers[roomID] = make(map[string]struct{})
	}
	r.roomUsers[roomID][userID] = struct{}{}

	if _, ok := r.userRooms[userID]; !ok {
		r.userRooms[userID] = make(map[string]struct{})
	}
	r.userRooms[userID][roomID] = struct{}{}
}

func (r *RoomRegistry) Leave(userID, roomID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if users, ok := r.roomUsers[roomID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(r.roomUsers, roomID)
		}
	}

	if rooms, ok := r.userRooms[userID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.userRooms, userID)
		}
	}
}

func (r *RoomRegistry) IsMember(userID, roomID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.roomUsers[roomID][userID]
	return ok
}

func (r *RoomRegistry) MembersOf(roomID string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	members := make([]string, 0, len(r.roomUsers[roomID]))
	for userID := range r.roomUsers[roomID] {
		members = append(members, userID)
	}

	return members
}

func (r *RoomRegistry) RoomsOf(userID string) []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rooms := make([]string, 0, len(r.userRooms[userID]))
	for roomID := range r.userRooms[userID] {
		rooms = append(rooms, roomID)
	}

	return rooms
}
