// internal/tools/pv-capacity/handler.go
package pvcapacity

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const (
	Name          = models.ToolPVCapacity
	FailurePrefix = "光伏承载力查询失败"
	Description   = "当用户需要查询中国特定省、市、区、县的光伏承载力、可开放容量或相关状态时，应使用此工具。输入应包含尽可能详细的地理位置信息。"
)

var locationKeys = []string{"province", "city", "district", "county"}

type Handler struct {
	config  *Config
	backend httpc.Backend
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	headers := map[string]string{"Authorization": config.APIToken}
	return NewHandlerWithBackend(config, tools.NewBackend(config.Config, headers, mockResponse, log), log)
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
		"province": params.Province,
		"city":     params.City,
		"district": params.District,
		"county":   params.County,
	})

	if params.Empty() {
		return "", nil, apperrors.NewExtractionFailedError("location", "无法从查询中识别出地理位置信息，请提供具体的省、市、区、县信息。")
	}

	env, err := h.backend.Get(ctx, h.config.CapacityPath, h.buildQuery(params))
	if err != nil {
		return "", nil, err
	}
	if err := env.Err(h.config.CapacityPath); err != nil {
		return "", env, err
	}

	message, err := formatResponse(env, params)
	return message, env, err
}

func (h *Handler) buildQuery(p Params) url.Values {
	q := url.Values{}
	for key, value := range map[string]string{
		"province": p.Province,
		"city":     p.City,
		"district": p.District,
		"county":   p.County,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	q.Set("page", "1")
	q.Set("page_size", strconv.Itoa(h.config.PageSize))
	return q
}

// capacityData is the "data" body. Fields are kept raw so that missing and
// null values can be told apart from empty strings.
type capacityData struct {
	Results    []map[string]json.RawMessage `json:"results"`
	PVSummary  map[string]json.RawMessage   `json:"pv_summary"`
	TotalCount float64                      `json:"total_count"`
}

func formatResponse(env *httpc.Envelope, params Params) (string, error) {
	raw, ok := env.Field("data")
	if !ok {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}
	var data capacityData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}

	location := strings.Join(params.Levels(), "")
	if location == "" {
		location = "查询区域"
	}

	var parts []string
	if summary := tools.DropNulls(data.PVSummary); len(summary) > 0 {
		summaryLocation := ""
		for _, key := range locationKeys {
			summaryLocation += tools.StringField(summary, key, "")
		}
		if summaryLocation == "" {
			summaryLocation = location
		}
		parts = append(parts, "查询成功："+summaryLocation+"的光伏承载力状态为'"+
			tools.StringField(summary, "color", "未知")+"'色，乡镇汇总的可开放容量为"+
			tools.StringField(summary, "jdkkf", "未知"))
	}

	if len(data.Results) > 0 && data.TotalCount > 0 {
		parts = append(parts, "详细台变数据共有"+strconv.FormatFloat(data.TotalCount, 'f', -1, 64)+"条记录")

		first := tools.DropNulls(data.Results[0])
		parts = append(parts, "例如'"+tools.StringField(first, "transformer_name", "未知台变")+
			"'的状态为'"+tools.StringField(first, "color", "未知")+"'色")
	}

	if len(parts) == 0 {
		return "查询成功：" + location + "的光伏承载力信息已获取，但暂无详细数据。", nil
	}
	return strings.Join(parts, "。") + "。", nil
}
