package http

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/router"
)

const (
	wsMaxMessageSize = 64 * 1024
	wsWriteWait      = 10 * time.Second
)

// AskAgentWebSocket serves GET /ws/ask_agent. Each text message is a
// {query, session_id} request answered with the same frames as the SSE
// endpoint. A request without session_id continues the connection's last
// session.
func (h *Handler) AskAgentWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	defer conn.Close()

	metrics.StreamsActive.WithLabelValues("websocket").Inc()
	defer metrics.StreamsActive.WithLabelValues("websocket").Dec()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(wsMaxMessageSize)
	var sessionID string

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", map[string]interface{}{"error": err.Error()})
			}
			return nil
		}

		q, err := decodeQuery(data)
		if err != nil {
			if err := h.writeFrame(conn, StreamFrame{Type: FrameError, Error: err.Error()}); err != nil {
				return nil
			}
			continue
		}
		if q.SessionID == "" {
			q.SessionID = sessionID
		}

		for frag := range h.agent.RouteQueryStream(ctx, q.Text, q.SessionID) {
			if frag.Kind == router.FragmentSession {
				sessionID = frag.SessionID
			}
			if err := h.writeFrame(conn, frameFor(frag)); err != nil {
				h.logger.Warn("websocket write failed", map[string]interface{}{"error": err.Error()})
				return nil
			}
		}
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, frame StreamFrame) error {
	data, err := marshalFrame(frame)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
