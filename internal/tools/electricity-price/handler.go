// internal/tools/electricity-price/handler.go
package electricityprice

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
	Name          = models.ToolElectricityPrice
	FailurePrefix = "电价查询失败"
	Description   = "当用户需要查询中国特定城市的上网电价、脱硫煤电价或工商业电价时，应使用此工具。此工具会返回格式化的电价信息。"
)

type Handler struct {
	config  *Config
	backend httpc.Backend
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

// NewHandler builds the adapter. Without mock data an authorization token is
// required.
func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	if !config.UseMock && config.AuthorizationToken == "" {
		return nil, apperrors.NewConfigurationMissingError("AUTHORIZATION_TOKEN")
	}
	headers := map[string]string{"Authorization": config.AuthorizationToken}
	backend := tools.NewBackend(config.Config, headers, mockResponse, log)
	return NewHandlerWithBackend(config, backend, log), nil
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
		"city":      params.City,
		"priceType": string(params.PriceType),
	})

	if params.City == "" {
		return "", nil, apperrors.NewExtractionFailedError("city", "无法从查询中识别出城市信息，请提供具体的城市名称。")
	}
	if params.PriceType == "" {
		return "", nil, apperrors.NewExtractionFailedError("priceType", "无法从查询中识别出电价类型，请指定查询脱硫煤电价、上网电价或工商加权电价。")
	}

	path := h.config.PricePath
	query := url.Values{}
	if params.PriceType == PriceTypeIndustrialCommercial {
		path = h.config.IndustrialPricePath
		query.Set("city", params.City)
	} else {
		query.Set("city", FormatCity(params.City))
		query.Set("type", params.PriceType.TypeParam())
	}

	env, err := h.backend.Get(ctx, path, query)
	if err != nil {
		return "", nil, err
	}
	if err := env.Err(path); err != nil {
		return "", env, err
	}

	message, err := formatResponse(env, params.PriceType)
	return message, env, err
}

func formatResponse(env *httpc.Envelope, priceType PriceType) (string, error) {
	raw, ok := env.Field("res")
	if !ok {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}
	res, err := tools.Object(raw)
	if err != nil {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}
	city := tools.StringField(res, "city", "未知城市")

	if priceType == PriceTypeIndustrialCommercial {
		price, ok := res["weighted_avg_price"]
		if !ok {
			return "", apperrors.NewFormatFailedError("未找到工商加权电价数据")
		}
		return "查询成功：" + city + "的工商加权电价为" + tools.Text(price) + "元/千瓦时。", nil
	}

	price, ok := res["elec_price"]
	if !ok {
		return "", apperrors.NewFormatFailedError("未找到" + string(priceType) + "数据")
	}
	return "查询成功：" + city + "的" + string(priceType) + "为" + tools.Text(price) + "元/千瓦时。", nil
}
