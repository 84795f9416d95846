// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freqlab/internal/pipeline"
	"freqlab/pkg/utils"
)

func testResult() *pipeline.Result {
	return &pipeline.Result{Seq: 3, Version: 9, Rows: 1, Cols: 3, Mode: pipeline.Real, Data: []float64{0, 0.5, 1}}
}

func TestNewFrame(t *testing.T) {
	t.Parallel()
	f := NewFrame(testResult(), pipeline.Clip)
	assert.Equal(t, "result", f.Type)
	assert.Equal(t, uint64(3), f.Seq)
	assert.Equal(t, uint64(9), f.Version)
	assert.Equal(t, "real", f.Mode)
	assert.Equal(t, []byte{0, 127, 255}, f.Pixels)
}

func TestResultPublisher(t *testing.T) {
	t.Parallel()
	mock := &utils.MockTransport{}
	p := NewResultPublisher(mock, pipeline.Normalize)
	p.Publish(testResult())

	sent := mock.Sent()
	require.Len(t, sent, 1)
	f, ok := sent[0].(Frame)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 127, 255}, f.Pixels)
}

func TestLoggingTransport(t *testing.T) {
	t.Parallel()
	lt := NewLoggingTransport()
	assert.NoError(t, lt.Send(NewFrame(testResult(), pipeline.Clip)))
	assert.NoError(t, lt.Send(map[string]any{"type": "band_energy"}))
	assert.NoError(t, lt.Close())
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketTransport_Broadcast(t *testing.T) {
	t.Parallel()
	wst := NewWebSocketTransport("127.0.0.1:0", 0)
	defer wst.Close()
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, wst.Send(NewFrame(testResult(), pipeline.Clip)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, uint64(3), got.Seq)
	assert.Equal(t, []byte{0, 127, 255}, got.Pixels)
}

func TestWebSocketTransport_RateLimit(t *testing.T) {
	t.Parallel()
	wst := NewWebSocketTransport("127.0.0.1:0", 0.001)
	defer wst.Close()
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return wst.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, wst.Send(map[string]int{"n": 1}))
	require.NoError(t, wst.Send(map[string]int{"n": 2}))

	var got map[string]int
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, 1, got["n"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	assert.Error(t, conn.ReadJSON(&got), "second message should have been rate limited")
}

func TestWebSocketTransport_MetricsAndClose(t *testing.T) {
	t.Parallel()
	wst := NewWebSocketTransport("127.0.0.1:0", 0)
	srv := httptest.NewServer(wst.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, wst.Close())
	require.NoError(t, wst.Close())
	assert.Error(t, wst.Send("late"))
}
