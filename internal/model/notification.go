package model

type NotifyRequest struct {
	ToUser string `json:"to_user"`
	ToRoom string `json:"to_room"`

	Kind    string            `json:"kind"`
	ActorID string            `json:"actor_id"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data"`

	DedupeKey string `json:"dedupe_key"`
}

type NotifyResponse struct {
	RateLimited     bool `json:"rate_limited"`
	Deduplicated    bool `json:"deduplicated"`
	SocketDelivered int  `json:"socket_delivered"`
	PushSuccess     int  `json:"push_success"`
	PushTotal       int  `json:"push_total"`
}
