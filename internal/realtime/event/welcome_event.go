package event

type WelcomeEvent struct {
	UserID string   `json:"user_id"`
	Rooms  []string `json:"rooms"`
}

func (*WelcomeEvent) Op() string {
	return "welcome"
}
