package stream

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/linalg"
	"github.com/pthm-cable/snowfall/mpm"
)

func testStreamConfig() config.StreamConfig {
	return config.StreamConfig{
		Path:           "/ws",
		BroadcastEvery: 1,
		WriteTimeout:   1,
		ReadBuffer:     1024,
		WriteBuffer:    1024,
	}
}

// startHub serves a hub and returns it with a connected client.
func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(testStreamConfig())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn := dial(t, srv.URL)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return hub, conn
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (uint64, []float32) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)

	step, vertices, err := DecodeFrame(data)
	require.NoError(t, err)
	return step, vertices
}

func TestBroadcast(t *testing.T) {
	hub, conn := startHub(t)

	sent := hub.Broadcast(EncodeFrame(7, []float32{0.5, 0.5, 0}))
	assert.Equal(t, 1, sent)

	step, vertices := readFrame(t, conn)
	assert.Equal(t, uint64(7), step)
	assert.Equal(t, []float32{0.5, 0.5, 0}, vertices)
}

func TestLateClientGetsLastFrame(t *testing.T) {
	hub := NewHub(testStreamConfig())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	assert.Zero(t, hub.Broadcast(EncodeFrame(3, []float32{1, 2, 3})))

	conn := dial(t, srv.URL)
	step, _ := readFrame(t, conn)
	assert.Equal(t, uint64(3), step)
}

func TestPublish(t *testing.T) {
	hub, conn := startHub(t)

	blobs := []mpm.Blob{{Center: linalg.V2(0.5, 0.5), Count: 20, Radius: 0.1, Tag: 0xf2b134}}
	s, err := mpm.New(mpm.DefaultConfig(32), blobs, func() float32 { return 0.25 })
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Advance(1e-4))

	assert.Equal(t, 1, hub.Publish(s))

	step, vertices := readFrame(t, conn)
	assert.Equal(t, uint64(1), step)
	require.Len(t, vertices, 20*mpm.VertexStride)
	p := s.Particles()[0]
	assert.Equal(t, p.Position.X, vertices[0])
	assert.Equal(t, p.Position.Y, vertices[1])
}

func TestClientDisconnectRemoves(t *testing.T) {
	hub, conn := startHub(t)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCommands(t *testing.T) {
	hub, conn := startHub(t)

	require.NoError(t, conn.WriteJSON(Command{Action: ActionSpeed, Speed: 4}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Command{Action: ActionPause}))

	var got []Command
	for len(got) < 2 {
		select {
		case cmd := <-hub.Commands():
			got = append(got, cmd)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d commands", len(got))
		}
	}
	assert.Equal(t, []Command{{Action: ActionSpeed, Speed: 4}, {Action: ActionPause}}, got)
}

type fakeController struct {
	paused   bool
	speed    int
	resets   int
	resetErr error
}

func (f *fakeController) Paused() bool   { return f.paused }
func (f *fakeController) TogglePause()   { f.paused = !f.paused }
func (f *fakeController) SetSpeed(n int) { f.speed = n }
func (f *fakeController) Reset() error {
	f.resets++
	return f.resetErr
}

func TestApply(t *testing.T) {
	c := &fakeController{speed: 1}

	require.NoError(t, Apply(c, Command{Action: ActionPause}))
	assert.True(t, c.paused)
	require.NoError(t, Apply(c, Command{Action: ActionPause}))
	assert.True(t, c.paused, "pause is idempotent")

	require.NoError(t, Apply(c, Command{Action: ActionResume}))
	assert.False(t, c.paused)
	require.NoError(t, Apply(c, Command{Action: ActionResume}))
	assert.False(t, c.paused, "resume is idempotent")

	require.NoError(t, Apply(c, Command{Action: ActionSpeed, Speed: 5}))
	assert.Equal(t, 5, c.speed)

	require.NoError(t, Apply(c, Command{Action: ActionReset}))
	assert.Equal(t, 1, c.resets)

	c.resetErr = errors.New("boom")
	assert.Error(t, Apply(c, Command{Action: ActionReset}))

	assert.Error(t, Apply(c, Command{Action: "melt"}))
}

func TestCommandJSON(t *testing.T) {
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(`{"action":"speed","speed":3}`), &cmd))
	assert.Equal(t, Command{Action: ActionSpeed, Speed: 3}, cmd)
}

func TestNilHub(t *testing.T) {
	var hub *Hub
	assert.Zero(t, hub.Broadcast([]byte("x")))
	assert.Zero(t, hub.Clients())
	hub.Drain(&fakeController{})
	hub.Close()
}
