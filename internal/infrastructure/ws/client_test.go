package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/configs"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

var testWebSocketConfig = configs.WebSocketConfig{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	SendQueueSize:   16,
	MaxMessageSize:  4096,
	WriteWait:       time.Second,
	PongWait:        5 * time.Second,
	PingPeriod:      4 * time.Second,
}

// newTestServer serves /ws?user=<id> with real gorilla clients on top of hub.
func newTestServer(t *testing.T, hub *testHub) *httptest.Server {
	t.Helper()
	upgrader := NewUpgrader(testWebSocketConfig, []string{"*"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		userID := domain.UserID(r.URL.Query().Get("user"))
		client := NewClient(conn, userID, ClientOptionsFromConfig(testWebSocketConfig))
		go client.WritePump()

		NewSession(userID, client, hub.Hub, nil, hub.metrics, logging.NewNop(), SessionConfig{}).Run(context.Background())
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readType(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == want {
			return msg
		}
	}
}

func TestClient_EndToEnd(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t)
	srv := newTestServer(t, hub)

	// Given two connected users
	alice := dial(t, srv, "1")
	req.Equal(float64(1), readType(t, alice, ConnectionEstablishedEvent)["user_id"])
	bob := dial(t, srv, "2")
	readType(t, bob, ConnectionEstablishedEvent)

	// When both join and alice moves
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_space","space_id":"plaza"}`)))
	readType(t, alice, SpaceInfoEvent)
	req.NoError(bob.WriteMessage(websocket.TextMessage, []byte(`{"type":"join_space","space_id":"plaza"}`)))
	info := readType(t, bob, SpaceInfoEvent)
	req.Equal([]any{float64(1), float64(2)}, info["users_in_space"])

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"move","space_id":"plaza","position":{"x":3}}`)))

	// Then bob sees it
	move := readType(t, bob, MoveEvent)
	req.Equal(float64(1), move["user_id"])
	req.Equal(map[string]any{"x": float64(3)}, move["position"])

	// When alice hangs up, bob is told
	_ = alice.Close()
	left := readType(t, bob, UserLeftEvent)
	req.Equal([]any{float64(2)}, left["users_in_space"])
	req.Eventually(func() bool { return hub.ConnectionCount() == 1 }, waitFor, tick)
}

func TestClient_SendAfterClose(t *testing.T) {
	req := require.New(t)

	var server *Client
	ready := make(chan struct{})
	upgrader := NewUpgrader(testWebSocketConfig, []string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		server = NewClient(conn, "1", ClientOptions{SendQueueSize: 1, MaxMessageSize: 1024, WriteWait: time.Second, PongWait: time.Minute, PingPeriod: time.Minute})
		close(ready)
	}))
	t.Cleanup(srv.Close)

	dial(t, srv, "1")
	<-ready

	// Without a write pump the queue fills after one message
	req.NoError(server.Send([]byte("a")))
	req.ErrorIs(server.Send([]byte("b")), ErrSendBufferFull)

	req.NoError(server.Close())
	req.NoError(server.Close())
	req.ErrorIs(server.Send([]byte("c")), ErrConnClosed)

	select {
	case <-server.Done():
	default:
		req.Fail("Done not closed")
	}
}

func TestCheckOrigin(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/ws/1", nil)
	r.Header.Set("Origin", "https://evil.example")

	req.True(checkOrigin([]string{"*"})(r))
	req.False(checkOrigin([]string{"https://app.example"})(r))

	r.Header.Set("Origin", "https://app.example")
	req.True(checkOrigin([]string{"https://app.example"})(r))

	r.Header.Del("Origin")
	req.True(checkOrigin([]string{"https://app.example"})(r))
}
