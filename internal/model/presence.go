package model

type GetPresenceRequest struct {
	UserID string `json:"user_id"`
}

type GetPresenceResponse struct {
	Online   bool  `json:"online"`
	LastSeen int64 `json:"last_seen,omitempty"`
}

type GetOnlineUsersRequest struct{}

type GetOnlineUsersResponse struct {
	UserIDs []string `json:"user_ids"`
}
