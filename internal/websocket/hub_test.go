package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeepulse/internal/charts"
	"coffeepulse/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// stubRenderer answers every render with a canned view or error.
type stubRenderer struct {
	view *services.TabView
	err  error
}

func (s *stubRenderer) Render(_ context.Context, state services.State) (*services.TabView, error) {
	if s.err != nil {
		return nil, s.err
	}
	view := *s.view
	view.Tab = state.Tab
	return &view, nil
}

func newTestClient(hub *Hub) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, 8),
		id:          "test-client",
		connectedAt: time.Now(),
		pongWait:    time.Minute,
		pingPeriod:  30 * time.Second,
		logger:      testLogger(),
		renderer: &stubRenderer{view: &services.TabView{
			Year:    2019,
			Figures: map[string]charts.Figure{"treemap": {}},
		}},
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.running)
}

func TestHubStartStop(t *testing.T) {
	hub := NewHub(testLogger(), nil)

	hub.Start()
	assert.True(t, hub.running)

	// Starting again should be idempotent
	hub.Start()

	time.Sleep(10 * time.Millisecond)

	hub.Stop()
	assert.False(t, hub.running)

	// Stopping again should be idempotent
	hub.Stop()
}

func TestHubClientRegistration(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := newTestClient(hub)
	hub.Register(client)

	// Registration delivers a connection greeting
	select {
	case msg := <-client.send:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, TypeConnection, envelope["type"])
	case <-time.After(time.Second):
		t.Fatal("expected connection message")
	}

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHubBroadcastJSON(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	defer hub.Stop()

	client := newTestClient(hub)
	hub.Register(client)
	<-client.send // drain the greeting

	hub.BroadcastJSON(map[string]interface{}{
		"type": "reload",
	})

	select {
	case msg := <-client.send:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, "reload", envelope["type"])
	case <-time.After(time.Second):
		t.Fatal("expected broadcast message")
	}
}

func TestClientHandleMessageRender(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	client := newTestClient(hub)

	client.handleMessage([]byte(`{"type":"render","state":{"tab":"production","year":2015}}`))

	select {
	case msg := <-client.send:
		var envelope struct {
			Type string           `json:"type"`
			Data services.TabView `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, TypeView, envelope.Type)
		assert.Equal(t, "production", envelope.Data.Tab)
	default:
		t.Fatal("expected a view reply")
	}
}

func TestClientHandleMessageMalformed(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	client := newTestClient(hub)

	client.handleMessage([]byte(`not json`))

	select {
	case msg := <-client.send:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, TypeError, envelope["type"])
	default:
		t.Fatal("expected an error reply")
	}
}

func TestClientHandleMessageHeartbeat(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	client := newTestClient(hub)

	client.handleMessage([]byte(`{"type":"heartbeat"}`))

	assert.Empty(t, client.send)
}

func TestClientHandleMessageUnknownType(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	client := newTestClient(hub)

	client.handleMessage([]byte(`{"type":"mystery"}`))

	select {
	case msg := <-client.send:
		var envelope map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &envelope))
		assert.Equal(t, TypeError, envelope["type"])
	default:
		t.Fatal("expected an error reply")
	}
}
