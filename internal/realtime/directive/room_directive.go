package directive

// JOIN ROOM
type JoinRoomDirective struct {
	RoomID string `json:"room_id"`
}

func NewJoinRoomDirective(roomID string) *ClientDirective {
	return &ClientDirective{
		Op:   JoinRoomDirectiveOp,
		Data: JoinRoomDirective{RoomID: roomID},
	}
}

// LEAVE ROOM
type LeaveRoomDirective struct {
	RoomID string `json:"room_id"`
}

func NewLeaveRoomDirective(roomID string) *ClientDirective {
	return &ClientDirective{
		Op:   LeaveRoomDirectiveOp,
		Data: LeaveRoomDirective{RoomID: roomID},
	}
}

// SEND MESSAGE
type SendMessageDirective struct {
	ThreadID string `json:"thread_id"`
	Content  string `json:"content"`
}

func NewSendMessageDirective(threadID, content string) *ClientDirective {
	return &ClientDirective{
		Op:   SendMessageDirectiveOp,
		Data: SendMessageDirective{ThreadID: threadID, Content: content},
	}
}
