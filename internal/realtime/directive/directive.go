package directive

import "encoding/json"

type DirectiveOp int64

const (
	PingDirectiveOp        DirectiveOp = 2000
	JoinRoomDirectiveOp    DirectiveOp = 2001
	LeaveRoomDirectiveOp   DirectiveOp = 2002
	SendMessageDirectiveOp DirectiveOp = 2003
)

type ClientDirective struct {
	Op   DirectiveOp `json:"op"`
	Data any         `json:"data"`
}

type ServerDirective struct {
	Op   DirectiveOp     `json:"op"`
	Data json.RawMessage `json:"data"`
}
