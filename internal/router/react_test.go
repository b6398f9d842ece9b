package router

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/models"
)

const electricityAction = "我需要查询杨浦区的上网电价\nAction: query_electricity_price\nAction Input: 查询上海市杨浦区的上网电价"

func recordEvents() (*[]Event, EventSink) {
	var events []Event
	return &events, func(ev Event) { events = append(events, ev) }
}

func TestReActStrategy_ActionThenAnswer(t *testing.T) {
	client := llm.NewScriptedClient(
		electricityAction,
		"我现在知道最终答案了\nFinal Answer: 上海市杨浦区的上网电价为0.4155元/千瓦时。",
	)
	s := NewReActStrategy(client, createTestRegistry(t), 5, time.Second, createTestLogger(t))
	events, sink := recordEvents()

	answer, err := s.Execute(context.Background(), "杨浦区上网电价多少", nil, sink)
	require.NoError(t, err)
	assert.Equal(t, "上海市杨浦区的上网电价为0.4155元/千瓦时。", answer)

	observation := "查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。"
	assert.Equal(t, []Event{
		AgentThought{Text: "我需要查询杨浦区的上网电价"},
		ToolInvocation{Tool: models.ToolElectricityPrice, Input: "查询上海市杨浦区的上网电价"},
		ToolObservation{Tool: models.ToolElectricityPrice, Output: observation},
		AgentThought{Text: "我现在知道最终答案了"},
		FinalAnswer{Text: answer, Labeled: true},
	}, *events)

	calls := client.Calls()
	require.Len(t, calls, 2)
	first := calls[0][0].Content
	assert.Contains(t, first, "query_business_knowledge_base: ")
	assert.Contains(t, first, "工具名称：query_electricity_price, query_power_generation_duration")
	assert.True(t, strings.HasSuffix(first, "Question: 杨浦区上网电价多少\nThought: "))
	assert.Equal(t, first+electricityAction+"\nObservation: "+observation+"\nThought: ", calls[1][0].Content)
}

func TestReActStrategy_InvalidToolAndParseErrors(t *testing.T) {
	client := llm.NewScriptedClient(
		"Action: query_weather\nAction Input: 上海",
		"我不确定",
		"Final Answer: 无法回答天气问题",
	)
	s := NewReActStrategy(client, createTestRegistry(t), 5, time.Second, createTestLogger(t))

	answer, err := s.Execute(context.Background(), "上海天气", nil, discard)
	require.NoError(t, err)
	assert.Equal(t, "无法回答天气问题", answer)

	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[1][0].Content, "query_weather is not a valid tool, try one of [query_electricity_price, ")
	assert.Contains(t, calls[2][0].Content, "我不确定\nObservation: "+obsMissingAction)
}

func TestReActStrategy_IterationBound(t *testing.T) {
	responses := make([]string, 10)
	for i := range responses {
		responses[i] = electricityAction
	}
	client := llm.NewScriptedClient(responses...)
	s := NewReActStrategy(client, createTestRegistry(t), 3, 5*time.Second, createTestLogger(t))
	events, sink := recordEvents()

	answer, err := s.Execute(context.Background(), "杨浦区上网电价", nil, sink)
	require.NoError(t, err)
	assert.Equal(t, "查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。", answer, "best effort uses the last observation")
	assert.Len(t, client.Calls(), 3)
	assert.Equal(t, FinalAnswer{Text: answer, Labeled: true}, (*events)[len(*events)-1])
}

func TestReActStrategy_TimeBound(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, messages []llm.Message, stop []string) (string, error) {
		<-ctx.Done()
		return "", apperrors.NewLLMCallFailedError(ctx.Err())
	})
	s := NewReActStrategy(client, createTestRegistry(t), 15, 50*time.Millisecond, createTestLogger(t))

	start := time.Now()
	answer, err := s.Execute(context.Background(), "杨浦区上网电价", nil, discard)
	require.NoError(t, err)
	assert.Equal(t, msgBoundExceeded, answer)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReActStrategy_ModelFailure(t *testing.T) {
	client := llm.NewScriptedClient().FailAt(0, apperrors.NewLLMCallFailedError(fmt.Errorf("LLM API error [500]: overloaded")))
	s := NewReActStrategy(client, createTestRegistry(t), 5, time.Second, createTestLogger(t))

	_, err := s.Execute(context.Background(), "杨浦区上网电价", nil, discard)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLLMCallFailed))
}

func TestReActStrategy_PromptCarriesHistory(t *testing.T) {
	client := llm.NewScriptedClient("Final Answer: 好的")
	s := NewReActStrategy(client, createTestRegistry(t), 5, time.Second, createTestLogger(t))
	history := []models.Turn{{Query: "我想了解一下河南开封的光伏承载力", Response: "查询成功：开封市的光伏承载力信息已获取"}}

	_, err := s.Execute(context.Background(), "那边的补贴政策呢？", history, discard)
	require.NoError(t, err)

	prompt := client.Calls()[0][0].Content
	assert.Contains(t, prompt, "最近对话历史:\n用户: 我想了解一下河南开封的光伏承载力\n助手: 查询成功：开封市的光伏承载力信息已获取\n\n")
}
