package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"elexon/pkg"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) outgoingMsg {
	t.Helper()
	select {
	case data := <-c.send:
		var msg outgoingMsg
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return outgoingMsg{}
	}
}

func TestHubRoutesByDownloadID(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, "a")
	b := NewClient(hub, nil, "b")
	enqueue(hub, hub.register, a)
	enqueue(hub, hub.register, b)
	enqueue(hub, hub.subscribe, subscribeMsg{client: a, downloadID: "d1"})
	enqueue(hub, hub.subscribe, subscribeMsg{client: b, downloadID: "d2"})

	assert.Equal(t, "subscribed", receive(t, a).Type)
	assert.Equal(t, "subscribed", receive(t, b).Type)

	data, id, err := envelope("elexon.download.d1.progress", []byte(`{"chunk":1,"total":3}`))
	require.NoError(t, err)
	hub.Publish(id, data)

	msg := receive(t, a)
	assert.Equal(t, "download.progress", msg.Type)
	assert.Equal(t, "d1", msg.DownloadID)
	assert.JSONEq(t, `{"chunk":1,"total":3}`, string(msg.Payload))

	select {
	case <-b.send:
		t.Fatal("client b is not subscribed to d1")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "a")
	enqueue(hub, hub.register, c)
	enqueue(hub, hub.subscribe, subscribeMsg{client: c, downloadID: "d1"})
	receive(t, c)
	enqueue(hub, hub.unregister, c)

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestParseDownloadIDFromSubject(t *testing.T) {
	id, err := parseDownloadIDFromSubject("elexon.download.0b9c.progress")
	require.NoError(t, err)
	assert.Equal(t, "0b9c", id)

	id, err = parseDownloadIDFromSubject("tenant.acme.download.42.progress")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	for _, bad := range []string{"elexon.job.1.progress", "elexon.download.1.done", "download..progress", "x"} {
		_, err := parseDownloadIDFromSubject(bad)
		assert.Error(t, err, bad)
	}
}

func TestServeWS(t *testing.T) {
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, "secret", w, r)
	}))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+"?token=bad", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := pkg.GenerateToken("analyst", "", "secret", time.Minute)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(incomingMsg{Action: "subscribe", DownloadID: "d1"}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ackMsg outgoingMsg
	require.NoError(t, conn.ReadJSON(&ackMsg))
	assert.Equal(t, "subscribed", ackMsg.Type)

	data, id, err := envelope("elexon.download.d1.progress", []byte(`{"status":"completed"}`))
	require.NoError(t, err)
	hub.Publish(id, data)

	var msg outgoingMsg
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "d1", msg.DownloadID)
	assert.JSONEq(t, `{"status":"completed"}`, string(msg.Payload))
}
