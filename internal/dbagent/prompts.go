package dbagent

import "fmt"

const schemaInfo = `
数据库包含以下表格：
1. h1_carry_over_performance - 上半年经营指标完成情况(结转)
   - project_name: 项目名称 (VARCHAR)
   - period: 期间 (VARCHAR) - '上半年实际' 或 '下半年预计'
   - units_transferred: 结转套数 (INTEGER)
   - revenue: 收入(万元) (DECIMAL)
   - gross_profit: 毛利(万元) (DECIMAL)
   - taxes_and_surcharges: 税金及附加(万元) (DECIMAL)
   - period_expenses: 期间费用(万元) (DECIMAL)
   - net_profit: 净利润(万元) (DECIMAL)

2. h1_collections_performance - 上半年经营指标完成情况(回款)
   - project_name: 项目名称 (VARCHAR)
   - annual_target: 全年目标(万元) (DECIMAL)
   - h1_budget: 上半年预算(万元) (DECIMAL)
   - h1_actual: 上半年实际(万元) (DECIMAL)
   - h1_completion_rate: 上半年完成率 (VARCHAR)
   - annual_completion_rate: 年度完成率 (VARCHAR)
`

func sqlPrompt(question string) string {
	return fmt.Sprintf(`你是一个专业的华侨城集团数据分析师。根据用户问题生成PostgreSQL查询语句。

%s

用户问题: %s

请生成一个PostgreSQL查询语句来回答这个问题。只返回SQL语句，不要包含任何解释或其他文本。
如果问题涉及多个项目的汇总，请使用SUM函数。
如果问题询问数据来源，请在查询中包含表名信息。

SQL查询:`, schemaInfo, question)
}

func answerPrompt(question, sqlQuery, results string) string {
	return fmt.Sprintf(`作为华侨城集团数据分析师，请根据以下查询结果回答用户问题。

用户问题: %s
执行的SQL查询: %s
查询结果: %s

请用中文提供专业、清晰的回答。如果涉及金额，请使用合适的单位（万元、亿元等）。
如果用户询问数据来源，请说明数据来自相应的数据表。

回答:`, question, sqlQuery, results)
}
