package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "coffeepulse/internal/errors"
	"coffeepulse/internal/infrastructure"
	"coffeepulse/internal/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. Inbound frames are
	// selection states plus a small envelope.
	maxMessageSize = 4096
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Renderer turns a dashboard selection into a rendered tab view. The
// dashboard service satisfies it.
type Renderer interface {
	Render(ctx context.Context, state services.State) (*services.TabView, error)
}

// inboundMessage is the envelope the browser shell sends.
type inboundMessage struct {
	Type  string         `json:"type"`
	State services.State `json:"state"`
}

// Client is a middleman between the websocket connection and the hub.
// Each inbound render request is answered on the same connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	renderer Renderer

	// Buffered channel of outbound messages
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	pongWait   time.Duration
	pingPeriod time.Duration

	logger *slog.Logger
}

// NewClient creates a new Client with dependency injection.
func NewClient(hub *Hub, conn *websocket.Conn, renderer Renderer, pongWait, pingPeriod time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)

	remoteAddr := ""
	if conn != nil {
		remoteAddr = conn.RemoteAddr().String()
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		renderer:    renderer,
		send:        make(chan []byte, 256),
		id:          id,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		pongWait:    pongWait,
		pingPeriod:  pingPeriod,
		logger:      logger,
	}
}

// NewClientWithTrace creates a new Client carrying the upgrade
// request's trace ID.
func NewClientWithTrace(hub *Hub, conn *websocket.Conn, renderer Renderer, pongWait, pingPeriod time.Duration, traceID string, logger *slog.Logger) *Client {
	client := NewClient(hub, conn, renderer, pongWait, pingPeriod, logger)
	client.traceID = traceID
	client.logger = client.logger.With(slog.String("trace_id", traceID))
	return client
}

// ReadPump pumps messages from the websocket connection to the render
// service and queues replies on the client's send channel.
func (c *Client) ReadPump() {
	defer func() {
		ctx := c.ctx()
		c.logger.InfoContext(ctx, "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(c.pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.ctx(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			break
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))

		c.recordMessage("received")
		c.handleMessage(message)
	}
}

// handleMessage dispatches one inbound frame.
func (c *Client) handleMessage(message []byte) {
	ctx := c.ctx()

	var in inboundMessage
	if err := json.Unmarshal(message, &in); err != nil {
		c.logger.WarnContext(ctx, "Malformed client message",
			slog.String("error", err.Error()))
		c.queue(errorEnvelope("INVALID_MESSAGE", "message is not valid JSON"))
		return
	}

	switch in.Type {
	case TypeHeartbeat:
		// Connection is alive; the pong handler already pushed the
		// read deadline forward.
		c.logger.DebugContext(ctx, "Heartbeat received")

	case TypeRender:
		view, err := c.renderer.Render(ctx, in.State)
		if err != nil {
			c.logger.WarnContext(ctx, "Render request failed",
				slog.String("tab", in.State.Tab),
				slog.String("error", err.Error()))
			code, detail := "RENDER_FAILED", err.Error()
			var apiErr *apierrors.APIError
			if errors.As(err, &apiErr) {
				code, detail = apiErr.ErrorCode, apiErr.Message
			}
			c.queue(errorEnvelope(code, detail))
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"type":      TypeView,
			"data":      view,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		if err != nil {
			c.logger.ErrorContext(ctx, "Error marshaling view",
				slog.String("error", err.Error()))
			return
		}
		c.queue(payload)

	default:
		c.queue(errorEnvelope("UNKNOWN_MESSAGE_TYPE", "unsupported message type: "+in.Type))
	}
}

// queue enqueues an outbound frame without blocking the read pump.
func (c *Client) queue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("Send buffer full, dropping reply")
	}
}

// WritePump pumps messages from the send channel to the websocket
// connection and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.InfoContext(c.ctx(), "WebSocket write pump stopped")
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.recordMessage("sent")

			// Drain any queued messages as separate frames
			n := len(c.send)
			for i := 0; i < n; i++ {
				select {
				case msg := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						c.logger.ErrorContext(c.ctx(), "Error writing queued message to WebSocket",
							slog.String("error", err.Error()))
						return
					}
					c.recordMessage("sent")
				default:
				}
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (c *Client) ctx() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

func (c *Client) recordMessage(direction string) {
	if c.hub == nil || c.hub.metrics == nil {
		return
	}
	c.hub.metrics.WSMessagesTotal.Add(c.ctx(), 1,
		metric.WithAttributes(attribute.String("direction", direction)))
}

func errorEnvelope(code, message string) []byte {
	payload, err := json.Marshal(map[string]interface{}{
		"type": TypeError,
		"data": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return payload
}
