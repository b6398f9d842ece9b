package router

import (
	"context"

	"pv-query-router/internal/models"
)

const (
	StrategyReAct   = "react"
	StrategyKeyword = "keyword"
)

// Strategy answers one query. history holds the most recent turns of the
// session; a strategy may ignore it. Events are emitted in production order
// and the returned string is the final answer.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, query string, history []models.Turn, emit EventSink) (string, error)
}

// ToolInvocationPlan is the set of tools a keyword match selected and how
// their outputs are laid out. An empty plan means nothing matched.
type ToolInvocationPlan struct {
	Header string
	Tools  []models.ToolName
	// Labels holds one section label per tool; an empty label puts the tool
	// output directly under the header.
	Labels []string
}

func (p ToolInvocationPlan) Empty() bool {
	return len(p.Tools) == 0
}
