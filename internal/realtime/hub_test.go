package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, strings.TrimPrefix(r.URL.Path, "/ws/"))
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/"
}

func TestHub_DeliverToConnectedUser(t *testing.T) {
	hub, base := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(base+"rider-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return hub.Connected("rider-1") }, time.Second, 10*time.Millisecond)

	sent := domain.Notification{ID: "n-1", UserID: "rider-1", Type: "accept", Message: "accepted"}
	require.NoError(t, hub.Deliver(context.Background(), sent))

	var got domain.Notification
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "n-1", got.ID)
	assert.Equal(t, "accepted", got.Message)
}

func TestHub_NoSession(t *testing.T) {
	hub := NewHub(nil)
	err := hub.Deliver(context.Background(), domain.Notification{UserID: "nobody"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestHub_DisconnectRemovesSession(t *testing.T) {
	hub, base := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(base+"driver-1", nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return hub.Connected("driver-1") }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return !hub.Connected("driver-1") }, time.Second, 10*time.Millisecond)
}
