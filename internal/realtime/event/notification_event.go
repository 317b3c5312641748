package event

type NewNotificationEvent struct {
	Kind  string            `json:"kind"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (*NewNotificationEvent) Op() string {
	return "new_notification"
}
