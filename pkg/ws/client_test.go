package ws

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newSocketPair(t *testing.T) (*Client, *websocket.Conn) {
	upgrader := websocket.Upgrader{}
	accepted := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		accepted <- conn
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	client := NewClient(conn)
	t.Cleanup(func() { client.Close() })

	peer := <-accepted
	t.Cleanup(func() { peer.Close() })
	return client, peer
}

func readFromClient(t *testing.T, client *Client) []byte {
	select {
	case msg := <-client.R:
		return msg
	case <-time.After(3 * time.Second):
		require.FailNow(t, "no message arrived")
		return nil
	}
}

func Test_Client_WritePlain(t *testing.T) {
	client, peer := newSocketPair(t)

	require.NoError(t, client.Write([]byte("hello"), false))

	msgType, msg, err := peer.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)
	require.Equal(t, []byte("hello"), msg)
}

func Test_Client_WriteCompressed(t *testing.T) {
	client, peer := newSocketPair(t)

	plain := bytes.Repeat([]byte("announcement "), 256)
	require.NoError(t, client.Write(plain, true))

	// Compressed frames travel as binary so the peer knows to inflate them.
	msgType, msg, err := peer.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)
	require.Less(t, len(msg), len(plain))

	inflated, err := Decompress(msg)
	require.NoError(t, err)
	require.Equal(t, plain, inflated)
}

func Test_Client_ReadInflatesBinary(t *testing.T) {
	client, peer := newSocketPair(t)

	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"op":2000}`)))
	require.Equal(t, []byte(`{"op":2000}`), readFromClient(t, client))

	compressed, err := Compress([]byte(`{"op":2001}`))
	require.NoError(t, err)
	require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, compressed))
	require.Equal(t, []byte(`{"op":2001}`), readFromClient(t, client))

	// A binary frame that does not inflate is dropped, the connection and the
	// frames behind it survive.
	require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, []byte("garbage")))
	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"op":2002}`)))
	require.Equal(t, []byte(`{"op":2002}`), readFromClient(t, client))
}
