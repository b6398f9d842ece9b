// internal/tools/business-knowledge/handler.go
package businessknowledge

import (
	"context"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const (
	Name          = models.ToolBusinessKnowledge
	FailurePrefix = "抱歉"
	Description   = "当用户询问关于公司业务、投资策略、项目要求等非结构化、解释性的问题时，应优先使用此工具。此工具不用于查询具体的数字数据（如电价或容量）。"

	msgUnavailable = "抱歉，暂时无法获取业务知识库数据，请稍后再试。"
	msgNoMatch     = "抱歉，在业务知识库中未找到与您问题相关的答案。建议您联系我们的业务人员获取更详细的信息，或者尝试用不同的方式描述您的问题。"
)

type Handler struct {
	config  *Config
	source  Source
	matcher *Matcher
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

// NewHandler reads the corpus from the domain API, or its mock.
func NewHandler(config *Config, log logger.Logger) *Handler {
	backendCfg := config.Config
	backendCfg.Timeout = config.KnowledgeTimeout
	backend := tools.NewBackend(backendCfg, nil, mockResponse, log)
	return NewHandlerWithSource(config, NewAPISource(backend, config.KnowledgePath, config.PageSize), log)
}

func NewHandlerWithSource(config *Config, source Source, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"tool": string(Name),
	})
	return &Handler{
		config:  config,
		source:  source,
		matcher: NewMatcher(config.Threshold),
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
	params := Params{Text: input.Query}

	entries, err := h.source.Fetch(ctx, h.config.MaxPages)
	if err != nil {
		stdErr := h.errors.Record(string(Name), err)
		if len(entries) == 0 {
			return &models.ToolResult{
				Tool:      Name,
				Message:   msgUnavailable,
				ErrorCode: string(stdErr.Code),
			}
		}
		h.logger.Warn("using partial corpus", map[string]interface{}{
			"entries": len(entries),
		})
	}
	if len(entries) == 0 {
		return &models.ToolResult{
			Tool:      Name,
			Message:   msgUnavailable,
			ErrorCode: string(apperrors.ErrCodeRemoteCallFailed),
		}
	}

	entry, score, ok := h.matcher.BestMatch(params.Text, entries)
	h.logger.Info("matched corpus", map[string]interface{}{
		"entries": len(entries),
		"matched": ok,
		"score":   score,
	})
	if !ok {
		return &models.ToolResult{Tool: Name, Message: msgNoMatch}
	}

	return &models.ToolResult{
		Tool:        Name,
		Success:     true,
		Message:     "根据业务知识库，关于「" + entry.Question + "」的回答是：\n\n" + entry.Answer,
		RawResponse: Match{Entry: *entry, Score: score},
	}
}
