// internal/tools/policy-search/handler.go
package policysearch

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
	Name          = models.ToolPolicySearch
	FailurePrefix = "政策查询失败"
	Description   = "当用户需要根据地区、主题、电站模式、上网模式等多个条件查询光伏相关政策时，应使用此工具。这是一个功能强大的多条件搜索引擎。"

	maxTopics   = 3
	maxPolicies = 2
)

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
		"region":          params.Region,
		"isCountrywide":   params.IsCountrywide,
		"topic":           params.Topic,
		"elecStationMode": params.ElecStationMode,
		"networkMode":     params.NetworkMode,
		"capacity":        params.Capacity,
	})

	if params.Empty() {
		return "", nil, apperrors.NewExtractionFailedError("conditions", "无法从查询中识别出具体的搜索条件，请提供地区、主题、电站模式或上网模式等信息。")
	}

	env, err := h.backend.Get(ctx, h.config.SearchPath, h.buildQuery(params))
	if err != nil {
		return "", nil, err
	}
	if err := env.Err(h.config.SearchPath); err != nil {
		return "", env, err
	}

	message, err := formatResponse(env, params)
	return message, env, err
}

// buildQuery omits empty conditions. is_countrywide is always sent, spelled
// True/False as the search service expects.
func (h *Handler) buildQuery(p Params) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("region", p.Region)
	if p.IsCountrywide {
		q.Set("is_countrywide", "True")
	} else {
		q.Set("is_countrywide", "False")
	}
	set("topic", p.Topic)
	set("elec_station_mode", p.ElecStationMode)
	set("network_mode", p.NetworkMode)
	set("capacity", p.Capacity)
	q.Set("page", "1")
	q.Set("page_size", strconv.Itoa(h.config.PageSize))
	return q
}

type searchData struct {
	TopicList  []string                     `json:"topic_list"`
	Categories []string                     `json:"categories"`
	Content    []map[string]json.RawMessage `json:"content"`
	TotalCount json.RawMessage              `json:"total_count"`
}

func formatResponse(env *httpc.Envelope, params Params) (string, error) {
	raw, ok := env.Field("data")
	if !ok {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}
	var data searchData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", apperrors.NewFormatFailedError("返回数据格式错误")
	}

	total := "0"
	if len(data.TotalCount) > 0 && string(data.TotalCount) != "null" {
		total = tools.Text(data.TotalCount)
	}

	parts := []string{"查询成功：根据" + describeConditions(params) + "，找到了" + total + "条相关政策"}

	if n := len(data.TopicList); n > 0 {
		shown := data.TopicList
		if n > maxTopics {
			shown = shown[:maxTopics]
		}
		topicStr := strings.Join(shown, "、")
		if n > maxTopics {
			topicStr += "等" + strconv.Itoa(n) + "个主题"
		}
		parts = append(parts, "涉及主题包括："+topicStr)
	}

	if len(data.Categories) > 0 {
		parts = append(parts, "政策类别："+strings.Join(data.Categories, "、"))
	}

	if len(data.Content) > 0 {
		parts = append(parts, "具体政策内容如下：")
		for i, item := range data.Content {
			if i == maxPolicies {
				break
			}
			item = tools.DropNulls(item)
			desc := "《" + tools.StringField(item, "title", "未知标题") + "》"
			if r := tools.StringField(item, "region", ""); r != "" {
				desc += "（适用范围：" + r + "）"
			}
			if s := tools.StringField(item, "summary", ""); s != "" {
				desc += "：" + s
			}
			parts = append(parts, strconv.Itoa(i+1)+". "+desc)
		}
		if len(data.Content) > maxPolicies {
			parts = append(parts, "等共"+strconv.Itoa(len(data.Content))+"条政策详情")
		}
	}

	return strings.Join(parts, "。") + "。", nil
}

func describeConditions(p Params) string {
	var conditions []string
	if p.IsCountrywide {
		conditions = append(conditions, "全国范围")
	} else if p.Region != "" {
		conditions = append(conditions, p.Region)
	}
	if p.Topic != "" {
		conditions = append(conditions, p.Topic+"相关")
	}
	if p.ElecStationMode != "" {
		conditions = append(conditions, p.ElecStationMode+"模式")
	}
	if p.NetworkMode != "" {
		conditions = append(conditions, p.NetworkMode)
	}
	if len(conditions) == 0 {
		return "您的条件"
	}
	return strings.Join(conditions, "、")
}
