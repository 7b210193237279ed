package websocket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostflow/pkg/adapters/websocket"
	"github.com/aretw0/hostflow/pkg/domain"
)

// serve upgrades one connection and hands the server-side transport to the test.
func serve(t *testing.T) (*gorilla.Conn, *websocket.Transport) {
	t.Helper()
	ready := make(chan *websocket.Transport, 1)
	upgrader := gorilla.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ready <- websocket.New(conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case tr := <-ready:
		return client, tr
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
		return nil, nil
	}
}

func readFrame(t *testing.T, conn *gorilla.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

func TestTransport_ReceivesGuestText(t *testing.T) {
	client, tr := serve(t)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "user-text-input", "data": map[string]any{"text": "Hi, I'm Ada."}}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	text, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hi, I'm Ada.", text)
}

func TestTransport_AnswersPing(t *testing.T) {
	client, _ := serve(t)

	require.NoError(t, client.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, client)["type"])
}

func TestTransport_SpeaksAndNotifies(t *testing.T) {
	client, tr := serve(t)
	ctx := context.Background()

	require.NoError(t, tr.Speak(ctx, "Welcome to Build Notes!"))
	frame := readFrame(t, client)
	assert.Equal(t, "bot-text", frame["type"])
	assert.Equal(t, "Welcome to Build Notes!", frame["data"].(map[string]any)["text"])

	prev := domain.NewSession("ep-1", "greeting")
	next := prev.Clone()
	next.CurrentNodeID = "origin_story"
	require.NoError(t, tr.Notify(websocket.UpdateFrame(domain.Diff(prev, next))))
	frame = readFrame(t, client)
	assert.Equal(t, "session-update", frame["type"])
	assert.Equal(t, "origin_story", frame["data"].(map[string]any)["current_node_id"])
}

func TestTransport_ClientDisconnect(t *testing.T) {
	client, tr := serve(t)
	require.NoError(t, client.Close())

	select {
	case <-tr.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("transport did not notice the disconnect")
	}
	_, err := tr.Receive(context.Background())
	assert.ErrorIs(t, err, domain.ErrDisconnected)
	assert.ErrorIs(t, tr.Speak(context.Background(), "anyone?"), domain.ErrDisconnected)
}

func TestTransport_CloseFlushesAndSendsCloseFrame(t *testing.T) {
	client, tr := serve(t)

	require.NoError(t, tr.Speak(context.Background(), "Goodbye everyone!"))
	require.NoError(t, tr.Close())

	frame := readFrame(t, client)
	assert.Equal(t, "Goodbye everyone!", frame["data"].(map[string]any)["text"])

	_, _, err := client.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseNormalClosure), "got %v", err)
}

func TestTransport_IgnoresMalformedFrames(t *testing.T) {
	client, tr := serve(t)

	require.NoError(t, client.WriteMessage(gorilla.TextMessage, []byte("{not json")))
	require.NoError(t, client.WriteJSON(map[string]any{"type": "cursor-moved"}))
	require.NoError(t, client.WriteJSON(map[string]any{"type": "user-text-input", "data": map[string]any{"text": "still here"}}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	text, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "still here", text)
}
