package router

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/models"
	"pv-query-router/internal/session"
	"pv-query-router/internal/tools"
)

// ==========================
// Construction Tests
// ==========================

func TestNewFromConfig_SelectsStrategy(t *testing.T) {
	cfg := createTestConfig()
	registry := createTestRegistry(t)

	agent, err := NewFromConfig(cfg, registry, session.NewMemoryStore(10), nil, createTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, StrategyKeyword, agent.Strategy())

	cfg.LLM = config.LLMConfig{APIKey: "key", BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: 100}
	agent, err = NewFromConfig(cfg, registry, session.NewMemoryStore(10), nil, createTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, StrategyReAct, agent.Strategy())
}

// ==========================
// RouteQuery Tests
// ==========================

func TestAgent_RouteQuery_Keyword(t *testing.T) {
	agent, store := createKeywordAgent(t)
	ctx := context.Background()

	resp, err := agent.RouteQuery(ctx, "查询上海市杨浦区的上网电价", "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.True(t, resp.Success)
	assert.Equal(t, "[模拟路由] 检测到电价查询，调用电价工具：\n查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。", resp.Answer)

	history, err := store.History(ctx, resp.SessionID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.Answer, history[0].Response)

	resp, err = agent.RouteQuery(ctx, "今天天气怎么样", resp.SessionID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, msgCannotUnderstand, resp.Answer)
}

func TestAgent_RouteQuery_ModelFailure(t *testing.T) {
	client := llm.NewScriptedClient().FailAt(0, apperrors.NewLLMCallFailedError(fmt.Errorf("LLM API error [503]: unavailable")))
	agent, _ := createReActAgent(t, client)

	resp, err := agent.RouteQuery(context.Background(), "杨浦区电价", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "处理查询时出现错误：LLM API error [503]: unavailable", resp.Answer)
	assert.False(t, resp.Success)
}

func TestAgent_RouteQuery_PanicBecomesSystemError(t *testing.T) {
	registry := tools.NewRegistry(createTestLogger(t), nil, panicTool{name: models.ToolElectricityPrice})
	agent := NewAgent(registry, session.NewMemoryStore(10), Options{}, createTestLogger(t))

	resp, err := agent.RouteQuery(context.Background(), "上海电价", "")
	require.NoError(t, err)
	assert.Equal(t, "系统错误: index out of range", resp.Answer)
	assert.False(t, resp.Success)
}

// Keyword routing records turns but never reads them; the reasoning loop
// sees them in its prompt.
func TestAgent_MemoryAsymmetry(t *testing.T) {
	ctx := context.Background()

	t.Run("keyword", func(t *testing.T) {
		agent, store := createKeywordAgent(t)
		_, err := agent.RouteQuery(ctx, "我想了解一下河南开封的光伏承载力", "s")
		require.NoError(t, err)

		followUp, err := agent.RouteQuery(ctx, "那边的补贴政策呢？", "s")
		require.NoError(t, err)
		fresh, err := agent.RouteQuery(ctx, "那边的补贴政策呢？", "other")
		require.NoError(t, err)

		assert.Equal(t, fresh.Answer, followUp.Answer)
		history, err := store.History(ctx, "s", 0)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("react", func(t *testing.T) {
		client := llm.NewScriptedClient("Final Answer: 开封市承载力充足", "Final Answer: 开封市有补贴")
		agent, _ := createReActAgent(t, client)

		_, err := agent.RouteQuery(ctx, "我想了解一下河南开封的光伏承载力", "s")
		require.NoError(t, err)
		_, err = agent.RouteQuery(ctx, "那边的补贴政策呢？", "s")
		require.NoError(t, err)

		calls := client.Calls()
		require.Len(t, calls, 2)
		assert.NotContains(t, calls[0][0].Content, "最近对话历史")
		assert.Contains(t, calls[1][0].Content, "用户: 我想了解一下河南开封的光伏承载力\n助手: 开封市承载力充足")
	})
}

// ==========================
// Session Tests
// ==========================

func TestAgent_ClearSession_Isolation(t *testing.T) {
	agent, store := createKeywordAgent(t)
	ctx := context.Background()

	_, err := agent.RouteQuery(ctx, "查询上海市杨浦区的上网电价", "a")
	require.NoError(t, err)
	_, err = agent.RouteQuery(ctx, "北京的有效发电小时数", "b")
	require.NoError(t, err)

	found, err := agent.ClearSession(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	historyA, _ := store.History(ctx, "a", 0)
	historyB, _ := store.History(ctx, "b", 0)
	assert.Empty(t, historyA)
	require.Len(t, historyB, 1)
	assert.Equal(t, "北京的有效发电小时数", historyB[0].Query)

	found, err = agent.ClearSession(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
}

// ==========================
// Streaming Tests
// ==========================

func TestAgent_RouteQueryStream_Keyword(t *testing.T) {
	agent, _ := createKeywordAgent(t)
	ctx := context.Background()
	query := "我想了解一下河南开封的光伏承载力，顺便再看看那边有什么相关的补贴政策。"

	frags := collect(agent.RouteQueryStream(ctx, query, "stream-1"))

	require.NotEmpty(t, frags)
	assert.Equal(t, Fragment{Kind: FragmentSession, SessionID: "stream-1"}, frags[0])
	assert.Equal(t, FragmentDone, frags[len(frags)-1].Kind)
	assert.Equal(t, 1, countKind(frags, FragmentDone))
	assert.Greater(t, countKind(frags, FragmentContent), 1)

	resp, err := agent.RouteQuery(ctx, query, "stream-2")
	require.NoError(t, err)
	assert.Equal(t, resp.Answer, content(frags))
}

func TestAgent_RouteQueryStream_ReAct(t *testing.T) {
	client := llm.NewScriptedClient(
		electricityAction,
		electricityAction,
		"Final Answer: 0.4155元/千瓦时",
	)
	agent, store := createReActAgent(t, client)

	frags := collect(agent.RouteQueryStream(context.Background(), "杨浦区上网电价", "r"))

	var texts []string
	for _, f := range frags {
		if f.Kind == FragmentContent {
			texts = append(texts, f.Text)
		}
	}
	assert.Equal(t, []string{
		"我需要查询杨浦区的上网电价",
		"\nAction: query_electricity_price",
		"\nAction Input: 查询上海市杨浦区的上网电价",
		"\nObservation: 查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。",
		"\nFinal Answer: 0.4155元/千瓦时",
	}, texts, "the repeated step is suppressed")
	assert.Equal(t, 1, countKind(frags, FragmentDone))

	history, err := store.History(context.Background(), "r", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "0.4155元/千瓦时", history[0].Response)
}

func TestAgent_RouteQueryStream_ErrorsEndWithDone(t *testing.T) {
	t.Run("model failure", func(t *testing.T) {
		client := llm.NewScriptedClient().FailAt(0, fmt.Errorf("connection refused"))
		agent, _ := createReActAgent(t, client)

		frags := collect(agent.RouteQueryStream(context.Background(), "杨浦区电价", ""))
		require.Len(t, frags, 3)
		assert.Equal(t, FragmentSession, frags[0].Kind)
		assert.Equal(t, Fragment{Kind: FragmentContent, Text: "处理查询时出现错误：connection refused"}, frags[1])
		assert.Equal(t, FragmentDone, frags[2].Kind)
	})

	t.Run("panic", func(t *testing.T) {
		registry := tools.NewRegistry(createTestLogger(t), nil, panicTool{name: models.ToolElectricityPrice})
		agent := NewAgent(registry, session.NewMemoryStore(10), Options{}, createTestLogger(t))

		frags := collect(agent.RouteQueryStream(context.Background(), "上海电价", ""))
		require.Len(t, frags, 3)
		assert.Equal(t, Fragment{Kind: FragmentContent, Text: "系统错误: index out of range"}, frags[1])
		assert.Equal(t, FragmentDone, frags[2].Kind)
	})
}

func TestAgent_RouteQueryStream_AbandonedConsumer(t *testing.T) {
	agent, store := createKeywordAgent(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := agent.RouteQueryStream(ctx, "查询上海市杨浦区的上网电价", "gone")

	require.Eventually(t, func() bool {
		history, _ := store.History(context.Background(), "gone", 0)
		return len(history) == 1
	}, time.Second, 10*time.Millisecond, "the query still runs to completion")

	for range ch {
	}
}

func TestSuccessful(t *testing.T) {
	assert.True(t, Successful("查询成功：0.4155元/千瓦时"))
	assert.False(t, Successful(msgCannotProcess))
	assert.False(t, Successful(msgCannotUnderstand))
	assert.False(t, Successful("处理查询时出现错误：x"))
}
