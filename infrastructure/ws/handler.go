// Package ws is the websocket edge of the delivery layer. It upgrades HTTP
// requests, runs the handshake against the lifecycle manager, and pumps
// events from the connection's sink onto the wire. Inbound frames carry no
// application data; the read side only keeps the liveness clock running.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chat-relay/realtime"
	"chat-relay/sink"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	maxInboundFrameSize = 512
	writeWait           = 10 * time.Second
)

type Config struct {
	HeartbeatTimeout time.Duration
	BufferSize       int
	DeliveryTimeout  time.Duration
}

type Handler struct {
	log       *slog.Logger
	lifecycle *realtime.Lifecycle
	cfg       Config
	upgrader  websocket.Upgrader
}

func NewHandler(log *slog.Logger, lifecycle *realtime.Lifecycle, cfg Config) *Handler {
	return &Handler{
		log:       log,
		lifecycle: lifecycle,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and hands the socket to the lifecycle manager.
// A rejected handshake closes the socket with a policy-violation frame; the
// connection was never registered so nobody else observed it.
func (h *Handler) Serve(c *gin.Context) {
	credential := extractCredential(c)

	socket, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	snk := sink.NewConnectionSink(h.log, h.cfg.BufferSize, h.cfg.DeliveryTimeout)
	conn, err := h.lifecycle.Handshake(c.Request.Context(), credential, snk)
	if err != nil {
		deadline := time.Now().Add(writeWait)
		closeFrame := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed")
		_ = socket.WriteControl(websocket.CloseMessage, closeFrame, deadline)
		_ = socket.Close()
		return
	}

	go h.writePump(socket, conn, snk)
	go h.readPump(socket, conn)
}

// extractCredential accepts the session token from the Authorization header,
// a token query parameter, or the jwt cookie set at login.
func extractCredential(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if token := c.Query("token"); token != "" {
		return token
	}
	if cookie, err := c.Cookie("jwt"); err == nil {
		return cookie
	}
	return ""
}

// writePump is the single consumer of the connection's sink: every event is
// written in the order it was consumed, which is what preserves per-recipient
// delivery order on the wire. It also owns the ping clock.
func (h *Handler) writePump(socket *websocket.Conn, conn *realtime.Connection, snk *sink.ConnectionSink) {
	pingPeriod := h.cfg.HeartbeatTimeout * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = socket.Close()
	}()

	for {
		select {
		case e, ok := <-snk.Events():
			if !ok {
				return
			}
			frame, err := encodeFrame(e)
			if err != nil {
				h.log.Error("dropping unencodable event", "connection_id", conn.ID, "error", err)
				continue
			}
			_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err = socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Debug("write failed, closing connection",
					"connection_id", conn.ID, "error", err)
				h.lifecycle.Close(context.Background(), conn)
				return
			}
		case <-snk.Done():
			deadline := time.Now().Add(writeWait)
			closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = socket.WriteControl(websocket.CloseMessage, closeFrame, deadline)
			return
		case <-ticker.C:
			_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.lifecycle.Close(context.Background(), conn)
				return
			}
		}
	}
}

// readPump keeps the liveness clock running. Each pong (or any inbound frame)
// pushes the read deadline forward by the heartbeat timeout; a silent peer
// times out and goes through the normal close path.
func (h *Handler) readPump(socket *websocket.Conn, conn *realtime.Connection) {
	defer h.lifecycle.Close(context.Background(), conn)

	socket.SetReadLimit(maxInboundFrameSize)
	_ = socket.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
	})

	for {
		// Inbound payloads are ignored: messages enter through the REST
		// edge, the socket is outbound-only.
		if _, _, err := socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("unexpected websocket close",
					"connection_id", conn.ID, "error", err)
			}
			return
		}
		_ = socket.SetReadDeadline(time.Now().Add(h.cfg.HeartbeatTimeout))
	}
}
