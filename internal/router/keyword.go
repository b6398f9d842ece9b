package router

import (
	"context"
	"strings"

	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const msgCannotUnderstand = "抱歉，我无法理解您的问题。请询问关于电价、发电小时数、光伏承载力、政策或业务相关的问题。"

var (
	capacityKeywords    = []string{"承载力", "可开放容量", "光伏承载"}
	policyKeywords      = []string{"政策", "补贴", "法规", "标准"}
	electricityKeywords = []string{"电价", "上网电价", "工商电价", "脱硫煤电价"}
	durationKeywords    = []string{"发电小时", "发电时长", "有效发电"}
	gridKeywords        = []string{"并网"}
	businessKeywords    = []string{"投资", "合作", "业务", "项目", "门槛", "周期", "模式", "地面", "屋顶"}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func single(tool models.ToolName, header string) ToolInvocationPlan {
	return ToolInvocationPlan{Header: header, Tools: []models.ToolName{tool}, Labels: []string{""}}
}

// KeywordStrategy routes by fixed keyword sets when no model is configured.
// It never reads conversation history, so follow-up questions that rely on
// an earlier turn ("那边") are not resolved in this mode.
type KeywordStrategy struct {
	registry *tools.Registry
	logger   logger.Logger
}

func NewKeywordStrategy(registry *tools.Registry, log logger.Logger) *KeywordStrategy {
	return &KeywordStrategy{
		registry: registry,
		logger:   log.With(map[string]interface{}{"strategy": StrategyKeyword}),
	}
}

func (s *KeywordStrategy) Name() string { return StrategyKeyword }

// SelectTools picks tools for query. Capacity plus policy selects both;
// otherwise the first matching domain in priority order wins.
func (s *KeywordStrategy) SelectTools(query string) ToolInvocationPlan {
	hasCapacity := containsAny(query, capacityKeywords)
	hasPolicy := containsAny(query, policyKeywords)

	switch {
	case hasCapacity && hasPolicy:
		return ToolInvocationPlan{
			Header: "[模拟路由] 检测到多工具查询需求：",
			Tools:  []models.ToolName{models.ToolPVCapacity, models.ToolPolicySearch},
			Labels: []string{"📊 光伏承载力信息：", "📋 相关政策信息："},
		}
	case containsAny(query, electricityKeywords):
		return single(models.ToolElectricityPrice, "[模拟路由] 检测到电价查询，调用电价工具：")
	case containsAny(query, durationKeywords):
		return single(models.ToolGenerationDuration, "[模拟路由] 检测到发电小时数查询，调用发电小时数工具：")
	case hasCapacity:
		return single(models.ToolPVCapacity, "[模拟路由] 检测到光伏承载力查询，调用光伏承载力工具：")
	case hasPolicy || containsAny(query, gridKeywords):
		return single(models.ToolPolicySearch, "[模拟路由] 检测到政策查询，调用政策工具：")
	case containsAny(query, businessKeywords):
		return single(models.ToolBusinessKnowledge, "[模拟路由] 检测到业务咨询，调用业务知识库工具：")
	default:
		return ToolInvocationPlan{}
	}
}

// Execute runs the selected tools in plan order and emits the composed text
// as a single unlabeled answer. history is ignored.
func (s *KeywordStrategy) Execute(ctx context.Context, query string, _ []models.Turn, emit EventSink) (string, error) {
	plan := s.SelectTools(query)
	s.logger.Info("selected tools", map[string]interface{}{
		"tools": plan.Tools,
	})

	if plan.Empty() {
		emit(FinalAnswer{Text: msgCannotUnderstand})
		return msgCannotUnderstand, nil
	}

	var b strings.Builder
	b.WriteString(plan.Header)
	for i, name := range plan.Tools {
		result, err := s.registry.Run(ctx, name, query)
		if err != nil {
			return "", err
		}
		if plan.Labels[i] != "" {
			b.WriteString("\n\n")
			b.WriteString(plan.Labels[i])
		}
		b.WriteString("\n")
		b.WriteString(result)
	}

	answer := b.String()
	emit(FinalAnswer{Text: answer})
	return answer, nil
}
