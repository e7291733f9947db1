package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"coffeepulse/internal/config"
	"coffeepulse/internal/infrastructure"
)

// Handler upgrades dashboard connections and hands them to the hub.
type Handler struct {
	hub      *Hub
	renderer Renderer
	cfg      *config.Config
	logger   *slog.Logger
}

// NewHandler creates the upgrade handler.
func NewHandler(hub *Hub, renderer Renderer, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Handler{
		hub:      hub,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "websocket.handler")),
	}
}

// ServeHTTP handles the websocket upgrade request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traceID := infrastructure.GetTraceID(ctx)

	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: h.cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// No Origin means a same-origin or non-browser request.
			if origin == "" {
				return true
			}

			for _, allowed := range h.cfg.Security.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}

			h.logger.WarnContext(ctx, "WebSocket origin not allowed",
				slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already wrote the HTTP error response.
		h.logger.ErrorContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := NewClientWithTrace(h.hub, conn, h.renderer,
		h.cfg.WebSocket.PongWait, h.cfg.WebSocket.PingPeriod, traceID, h.logger)
	h.hub.Register(client)

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr))

	go client.WritePump()
	go client.ReadPump()
}
