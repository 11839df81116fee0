package chatclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/snow6692/chat/internal/hub"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func TestSendGuards(t *testing.T) {
	client := New("ws://localhost:0/ws", Handlers{})

	require.ErrorIs(t, client.Send(""), ErrEmptyMessage)
	require.ErrorIs(t, client.Send("   \t"), ErrEmptyMessage)
	require.ErrorIs(t, client.Send("hello"), ErrNotConnected)
}

func TestConnectAndReceiveDeduplicated(t *testing.T) {
	received := make(chan hub.Message, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		msg := hub.Message{ID: "m1", Content: "hello", SenderID: "peer"}
		// Send the same message twice; the client must keep one.
		_ = conn.WriteJSON(msg)
		_ = conn.WriteJSON(msg)
		_ = conn.WriteJSON(hub.Message{ID: "m2", Content: "world", SenderID: "peer"})
		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := New("ws"+strings.TrimPrefix(srv.URL, "http"), Handlers{
		OnMessage: func(msg hub.Message) { received <- msg },
	})
	require.NoError(t, client.Connect())
	defer func() { _ = client.Close() }()
	require.True(t, client.Connected())

	first := waitForMessage(t, received)
	second := waitForMessage(t, received)
	require.Equal(t, "hello", first.Content)
	require.Equal(t, "world", second.Content)

	msgs := client.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "m1", msgs[0].ID)
	require.Equal(t, "m2", msgs[1].ID)
}

func TestConnectRetriesThenFails(t *testing.T) {
	var terminalErr error
	errCh := make(chan error, 1)

	client := New("ws://127.0.0.1:1/ws", Handlers{
		OnError: func(err error) { errCh <- err },
	})
	client.attempts = 2
	client.delay = 10 * time.Millisecond

	err := client.Connect()
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 2 attempts")

	select {
	case terminalErr = <-errCh:
	case <-time.After(time.Second):
		t.Fatal("OnError was not called")
	}
	require.Error(t, terminalErr)
	require.False(t, client.Connected())
}

func waitForMessage(t *testing.T, ch <-chan hub.Message) hub.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return hub.Message{}
	}
}
