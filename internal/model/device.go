package model

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type RegisterDeviceResponse struct{}

type RemoveDeviceRequest struct {
	Token string `json:"token"`
}

type RemoveDeviceResponse struct{}
