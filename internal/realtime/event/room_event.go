package event

// ROOM JOINED EVENT
type RoomJoinedEvent struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

func (*RoomJoinedEvent) Op() string {
	return "room_joined"
}

// ROOM LEFT EVENT
type RoomLeftEvent struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

func (*RoomLeftEvent) Op() string {
	return "room_left"
}
