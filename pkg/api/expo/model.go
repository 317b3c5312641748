package expo

import "strings"

const (
	TicketStatusOK    = "ok"
	TicketStatusError = "error"
)

// Terminal provider error codes. DeviceNotRegistered means the token will
// never become valid again and must be deactivated in the device store.
const (
	ErrDeviceNotRegistered = "DeviceNotRegistered"
	ErrMessageTooBig       = "MessageTooBig"
	ErrMessageRateExceeded = "MessageRateExceeded"
	ErrInvalidCredentials  = "InvalidCredentials"
)

type PushMessage struct {
	To       []string          `json:"to" mapstructure:"to"`
	Title    string            `json:"title,omitempty" mapstructure:"title"`
	Body     string            `json:"body,omitempty" mapstructure:"body"`
	Data     map[string]string `json:"data,omitempty" mapstructure:"data"`
	Sound    string            `json:"sound,omitempty" mapstructure:"sound"`
	Priority string            `json:"priority,omitempty" mapstructure:"priority"`
}

type TicketDetails struct {
	Error string `json:"error,omitempty" mapstructure:"error"`
}

// PushTicket acknowledges that the provider received one message for one
// token. It is not an end-device delivery receipt.
type PushTicket struct {
	ID      string        `json:"id,omitempty" mapstructure:"id"`
	Status  string        `json:"status" mapstructure:"status"`
	Message string        `json:"message,omitempty" mapstructure:"message"`
	Details TicketDetails `json:"details,omitempty" mapstructure:"details"`
}

type PushReceipt struct {
	Status  string        `json:"status" mapstructure:"status"`
	Message string        `json:"message,omitempty" mapstructure:"message"`
	Details TicketDetails `json:"details,omitempty" mapstructure:"details"`
}

// IsPushToken reports whether the token has the provider's expected format.
// Malformed tokens are rejected before any network call.
func IsPushToken(token string) bool {
	if !strings.HasSuffix(token, "]") {
		return false
	}

	return strings.HasPrefix(token, "ExponentPushToken[") ||
		strings.HasPrefix(token, "ExpoPushToken[")
}
