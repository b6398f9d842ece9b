package router

import (
	"strings"

	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const promptTemplate = `你是"大侠找光"AI智能助手，专门帮助用户查询光伏相关信息。

你的角色和能力：
- 你是一个专业的光伏行业智能顾问
- 你可以理解用户的自然语言问题，并智能地选择合适的工具来回答
- 你可以同时调用多个工具来提供全面的答案
- 你的回答应该专业、准确、用户友好

可用工具：
{tools}

工具名称：{tool_names}

工具使用指南：
1. query_electricity_price: 当用户询问电价相关问题时使用（上网电价、脱硫煤电价、工商业电价）
2. query_power_generation_duration: 当用户询问发电小时数或发电时长相关问题时使用
3. query_photovoltaic_capacity: 当用户询问光伏承载力、可开放容量相关问题时使用
4. query_policies: 当用户询问政策、法规、补贴、标准等相关问题时使用
5. query_business_knowledge_base: 当用户询问关于公司业务、投资策略、项目要求等非结构化、解释性的问题时使用

思考过程：
- 仔细分析用户的问题，识别其中的关键信息和意图
- 判断需要使用哪个或哪些工具来回答问题
- 如果问题涉及多个方面，可以依次调用多个工具
- 将工具返回的结果整合成完整、连贯的回答
- 如果问题中出现"那边"、"那里"、"这个地方"等指代，请结合最近对话历史确定具体地区

请使用以下格式进行思考和行动：

Question: 用户的问题
Thought: 我需要分析这个问题并决定使用哪些工具
Action: 选择的工具名称
Action Input: 传递给工具的输入
Observation: 工具返回的结果
... (如果需要，可以重复 Thought/Action/Action Input/Observation)
Thought: 我现在知道最终答案了
Final Answer: 给用户的最终回答
{history}
开始！

Question: {input}
Thought: `

// buildPrompt renders the reasoning prompt without the scratchpad.
func buildPrompt(list []tools.Tool, history []models.Turn, query string) string {
	descriptions := make([]string, 0, len(list))
	names := make([]string, 0, len(list))
	for _, t := range list {
		descriptions = append(descriptions, string(t.Name())+": "+t.Description())
		names = append(names, string(t.Name()))
	}

	return strings.NewReplacer(
		"{tools}", strings.Join(descriptions, "\n"),
		"{tool_names}", strings.Join(names, ", "),
		"{history}", renderHistory(history),
		"{input}", query,
	).Replace(promptTemplate)
}

// renderHistory formats turns as alternating 用户/助手 lines.
func renderHistory(history []models.Turn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n最近对话历史:\n")
	for _, t := range history {
		b.WriteString("用户: ")
		b.WriteString(t.Query)
		b.WriteString("\n助手: ")
		b.WriteString(t.Response)
		b.WriteString("\n\n")
	}
	return b.String()
}
