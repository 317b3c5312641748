package model

type ServeRealtimeRequest struct{}
