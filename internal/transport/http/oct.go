package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pv-query-router/internal/dbagent"
)

const msgDBAgentDisabled = "database agent is not configured"

// AskOct serves POST /ask_oct.
func (h *Handler) AskOct(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return err
	}
	if h.dbAgent == nil {
		return c.JSON(http.StatusServiceUnavailable, OctResponse{
			Question: q.Text,
			Answer:   msgDBAgentDisabled,
			Status:   dbagent.StatusError,
		})
	}

	answer := h.dbAgent.Ask(c.Request().Context(), &dbagent.Input{Question: q.Text})
	return c.JSON(http.StatusOK, OctResponse{
		Question: q.Text,
		Answer:   answer.Answer,
		Status:   answer.Status,
		Success:  answer.Status == dbagent.StatusSuccess,
	})
}

// DatabaseInfo serves GET /oct/database_info.
func (h *Handler) DatabaseInfo(c echo.Context) error {
	if h.dbAgent == nil {
		return c.JSON(http.StatusServiceUnavailable, dbagent.DatabaseInfo{
			Error:  msgDBAgentDisabled,
			Status: dbagent.StatusError,
		})
	}
	return c.JSON(http.StatusOK, h.dbAgent.DatabaseInfo(c.Request().Context()))
}
