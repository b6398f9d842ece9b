package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pv-query-router/internal/tools"
)

// QueryTool serves POST /<tool path>: the tool's sentence and whether it is a
// success sentence.
func (h *Handler) QueryTool(tool tools.Tool) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := h.bindQuery(c)
		if err != nil {
			return err
		}

		result, err := h.registry.Execute(c.Request().Context(), tool.Name(), q.Text)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, ToolResponse{
			Result:  result.Message,
			Success: !tools.IsFailure(result.Message, tool.FailurePrefix()),
		})
	}
}
