package ws

import (
	"errors"

	"github.com/gorilla/websocket"
)

type messageInfo struct {
	msg             []byte
	needCompression bool
}

// Client wraps a websocket connection with buffered read and write pumps. All
// writes go through the W channel, so concurrent callers never interleave
// frames on the wire.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte
	W    chan messageInfo
}

func NewClient(conn *websocket.Conn) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn: conn,
		R:    make(chan []byte, 128),
		W:    make(chan messageInfo, 128),
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t == websocket.CloseMessage {
			return
		}

		if t == websocket.TextMessage {
			c.R <- msg
		}

		// Binary frames carry zlib-compressed text. A frame that does not
		// inflate is dropped, not fatal for the connection.
		if t == websocket.BinaryMessage {
			plain, err := Decompress(msg)
			if err != nil {
				continue
			}

			c.R <- plain
		}
	}
}

func (c *Client) runWriter() {
	defer close(c.W)

	for {
		msgInfo := <-c.W

		msg := msgInfo.msg
		msgType := websocket.TextMessage
		if msgInfo.needCompression {
			var err error
			msg, err = Compress(msgInfo.msg)
			if err != nil {
				continue
			}

			msgType = websocket.BinaryMessage
		}

		if err := c.Conn.WriteMessage(msgType, msg); err != nil {
			break
		}
	}
}

// Write queues a message for sending. It returns an error instead of
// panicking if the connection was already closed.
func (c *Client) Write(msg []byte, needCompression bool) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if s, ok := r.(string); ok {
			err = errors.New(s)
		} else {
			err = errors.New("connection is closed")
		}
	}()

	c.W <- messageInfo{msg: msg, needCompression: needCompression}
	return nil
}

func (c *Client) Close() error {
	return c.Conn.Close()
}
