// internal/tools/generation-duration/handler.go
package generationduration

import (
	"context"
	"net/url"

	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const (
	Name          = models.ToolGenerationDuration
	FailurePrefix = "有效发电小时数查询失败"
	Description   = "当用户需要查询特定城市的有效发电小时数时，应使用此工具。输入应包含城市名称。"
)

type Handler struct {
	config  *Config
	backend httpc.Backend
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return NewHandlerWithBackend(config, tools.NewBackend(config.Config, nil, mockResponse, log), log)
}

func NewHandlerWithBackend(config *Config, backend httpc.Backend, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"tool": string(Name),
	})
	return &Handler{
		config:  config,
		backend: backend,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

func (h *Handler) Name() models.ToolName { return Name }
func (h *Handler) Description() string   { return Description }
func (h *Handler) FailurePrefix() string { return FailurePrefix }

func (h *Handler) Query(ctx context.Context, query string) *models.ToolResult {
	return h.Execute(ctx, &Input{Query: query})
}

func (h *Handler) Run(ctx context.Context, query string) string {
	return h.Query(ctx, query).Message
}

func (h *Handler) Execute(ctx context.Context, input *Input) *models.ToolResult {
	message, env, err := h.execute(ctx, input)
	if err != nil {
		return tools.Failed(Name, FailurePrefix, err, env, h.errors)
	}
	return tools.Succeeded(Name, message, env)
}

func (h *Handler) execute(ctx context.Context, input *Input) (string, *httpc.Envelope, error) {
	params := Extract(input.Query)
	h.logger.Info("parsed query", map[string]interface{}{
		"city": params.City,
	})

	if params.City == "" {
		return "", nil, apperrors.NewExtractionFailedError("city", "无法从查询中识别出城市信息，请提供具体的城市名称。")
	}

	env, err := h.backend.Get(ctx, h.config.DurationPath, url.Values{"city": {params.City}})
	if err != nil {
		return "", nil, err
	}
	if err := env.Err(h.config.DurationPath); err != nil {
		return "", env, err
	}

	if !env.Has("res") {
		return "", env, apperrors.NewFormatFailedError("返回数据格式错误")
	}
	hours, ok := env.Field("res")
	if !ok {
		return "", env, apperrors.NewFormatFailedError("未找到发电小时数据")
	}
	return "查询成功：" + params.City + "的有效发电小时数为" + tools.Text(hours) + "小时。", env, nil
}
