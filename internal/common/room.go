package common

// ThreadRoomID maps a persistent chat thread to its realtime room. Thread
// rooms are re-derived from the thread entity on connect rather than owned
// by the room registry.
func ThreadRoomID(threadID string) string {
	return "thread:" + threadID
}
