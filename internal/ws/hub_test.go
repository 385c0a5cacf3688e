package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func dial(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, hub, userID).Run()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(userID) > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub, _ := startHub(t)
	owner := uuid.New()
	other := uuid.New()

	conn := dial(t, hub, owner)
	otherConn := dial(t, hub, other)

	require.NoError(t, hub.BroadcastToUser(owner, "notification", map[string]string{"message": "hello"}))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "hello", got.Data["message"])

	// чужое соединение ничего не получает
	_ = otherConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_NoConnectionsIsNotAnError(t *testing.T) {
	hub, _ := startHub(t)
	assert.NoError(t, hub.BroadcastToUser(uuid.New(), "notification", nil))
}

func TestHub_UnregistersClosedConnection(t *testing.T) {
	hub, _ := startHub(t)
	userID := uuid.New()

	conn := dial(t, hub, userID)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StoppedHubRejectsBroadcast(t *testing.T) {
	hub, cancel := startHub(t)
	cancel()

	assert.Eventually(t, func() bool {
		return hub.BroadcastToUser(uuid.New(), "notification", nil) == ErrHubStopped
	}, time.Second, 10*time.Millisecond)
}
