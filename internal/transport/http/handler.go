// Package http exposes the router, the tools and the database agent over
// REST, server-sent events and websocket.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/validation"
	"pv-query-router/internal/dbagent"
	"pv-query-router/internal/models"
	"pv-query-router/internal/router"
	"pv-query-router/internal/tools"
	"pv-query-router/internal/tools/toolset"
)

const rootMessage = "大侠找光 AI 工具集 - 智能问答系统 & 专业工具服务"

// Dependencies are the components served by the Handler. DBAgent is nil when
// the database agent is disabled.
type Dependencies struct {
	Agent    *router.Agent
	DBAgent  *dbagent.Handler
	Version  string
	Services []string
}

type Handler struct {
	agent    *router.Agent
	registry *tools.Registry
	dbAgent  *dbagent.Handler
	version  string
	services []string
	upgrader websocket.Upgrader
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(deps Dependencies, log logger.Logger) *Handler {
	log = logger.ForComponent(log, "http")
	return &Handler{
		agent:    deps.Agent,
		registry: deps.Agent.Registry(),
		dbAgent:  deps.DBAgent,
		version:  deps.Version,
		services: deps.Services,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}
}

// RegisterRoutes registers every route with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/tools", h.ListTools)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	for _, tool := range h.registry.List() {
		e.POST(endpointFor(tool.Name()), h.QueryTool(tool))
	}

	e.POST("/ask_agent", h.AskAgent)
	e.POST("/ask_agent_stream", h.AskAgentStream)
	e.GET("/ws/ask_agent", h.AskAgentWebSocket)
	e.DELETE("/sessions/:session_id", h.ClearSession)

	e.POST("/ask_oct", h.AskOct)
	e.GET("/oct/database_info", h.DatabaseInfo)
}

func endpointFor(name models.ToolName) string {
	if endpoint, ok := toolset.Endpoints[name]; ok {
		return endpoint
	}
	return "/" + string(name)
}

func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": rootMessage})
}

// Health lists the tools and services this instance serves.
func (h *Handler) Health(c echo.Context) error {
	services := make([]string, 0, len(h.services)+8)
	for _, tool := range h.registry.List() {
		services = append(services, string(tool.Name()))
	}
	services = append(services, "main_router_agent")
	if h.dbAgent != nil {
		services = append(services, "oct_database_agent")
	}
	services = append(services, h.services...)

	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Version:  h.version,
		Strategy: h.agent.Strategy(),
		Services: services,
	})
}

// ListTools returns the tool catalog.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, toolset.Catalog(h.registry, h.version))
}

// bindQuery reads and validates a {query, session_id} body.
func (h *Handler) bindQuery(c echo.Context) (*models.Query, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	q, err := decodeQuery(body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return q, nil
}

func decodeQuery(body []byte) (*models.Query, error) {
	result, err := validation.ValidateBytes(validation.QueryRequestSchema, body)
	if err != nil {
		return nil, errors.New("request body is not valid JSON")
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid request: %s", strings.Join(result.GetErrorMessages(), "; "))
	}
	var q models.Query
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// ErrorHandler renders echo errors as JSON and anything unexpected as a
// "系统错误" answer.
func (h *Handler) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, map[string]interface{}{"error": he.Message})
		return
	}
	_ = c.JSON(http.StatusInternalServerError, ToolResponse{
		Result:  h.errors.SystemError("http", err),
		Success: false,
	})
}

// Recover turns a handler panic into a "系统错误" answer.
func (h *Handler) Recover(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return next(c)
	}
}

func marshalFrame(frame StreamFrame) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(frame); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func frameFor(f router.Fragment) StreamFrame {
	switch f.Kind {
	case router.FragmentSession:
		return StreamFrame{Type: FrameSession, SessionID: f.SessionID}
	case router.FragmentDone:
		return StreamFrame{Type: FrameDone}
	default:
		return StreamFrame{Type: FrameContent, Chunk: f.Text}
	}
}
