package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/models"
	"pv-query-router/internal/session"
	"pv-query-router/internal/tools"
	"pv-query-router/internal/tools/toolset"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *config.Config {
	return &config.Config{
		Tools: config.ToolsConfig{
			UseMock: true,
			BaseURL: "http://localhost:8080/server/",
			Timeout: 3000,
			Knowledge: config.KnowledgeConfig{
				MaxPages: 3,
				PageSize: 20,
				Timeout:  1000,
				Source:   config.KnowledgeSourceAPI,
			},
		},
		Session: config.SessionConfig{MaxTurns: 10, ContextTurns: 3},
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func createTestRegistry(t *testing.T) *tools.Registry {
	registry, err := toolset.NewRegistry(createTestConfig(), nil, nil, createTestLogger(t))
	require.NoError(t, err)
	return registry
}

func createKeywordAgent(t *testing.T) (*Agent, *session.MemoryStore) {
	store := session.NewMemoryStore(10)
	return NewAgent(createTestRegistry(t), store, Options{ContextTurns: 3}, createTestLogger(t)), store
}

func createReActAgent(t *testing.T, client llm.Client) (*Agent, *session.MemoryStore) {
	store := session.NewMemoryStore(10)
	return NewAgent(createTestRegistry(t), store, Options{
		LLM:              client,
		MaxIterations:    5,
		MaxExecutionTime: 2 * time.Second,
		ContextTurns:     3,
	}, createTestLogger(t)), store
}

func collect(ch <-chan Fragment) []Fragment {
	var out []Fragment
	for f := range ch {
		out = append(out, f)
	}
	return out
}

func content(frags []Fragment) string {
	var s string
	for _, f := range frags {
		if f.Kind == FragmentContent {
			s += f.Text
		}
	}
	return s
}

func countKind(frags []Fragment, kind FragmentKind) int {
	n := 0
	for _, f := range frags {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// panicTool stands in for a tool whose implementation blows up.
type panicTool struct {
	name models.ToolName
}

func (p panicTool) Name() models.ToolName { return p.name }
func (p panicTool) Description() string   { return "panics" }
func (p panicTool) FailurePrefix() string { return "失败" }
func (p panicTool) Query(ctx context.Context, query string) *models.ToolResult {
	panic("index out of range")
}
func (p panicTool) Run(ctx context.Context, query string) string {
	return p.Query(ctx, query).Message
}
