package event

import "time"

type NewMessageEvent struct {
	ID        int64     `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (*NewMessageEvent) Op() string {
	return "new_message"
}
