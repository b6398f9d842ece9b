package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"pv-query-router/internal/common/metrics"
)

// AskAgent serves POST /ask_agent.
func (h *Handler) AskAgent(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return err
	}

	resp, err := h.agent.RouteQuery(c.Request().Context(), q.Text, q.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// AskAgentStream serves POST /ask_agent_stream as server-sent events, one
// JSON frame per data line.
func (h *Handler) AskAgentStream(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	metrics.StreamsActive.WithLabelValues("sse").Inc()
	defer metrics.StreamsActive.WithLabelValues("sse").Dec()

	for frag := range h.agent.RouteQueryStream(c.Request().Context(), q.Text, q.SessionID) {
		if err := writeEvent(w, frameFor(frag)); err != nil {
			h.logger.Warn("stream client gone", map[string]interface{}{"error": err.Error()})
			return nil
		}
	}
	return nil
}

func writeEvent(w *echo.Response, frame StreamFrame) error {
	data, err := marshalFrame(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// ClearSession serves DELETE /sessions/:session_id.
func (h *Handler) ClearSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	found, err := h.agent.ClearSession(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	if !found {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"session_id": sessionID,
			"cleared":    false,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"cleared":    true,
	})
}
