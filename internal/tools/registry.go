package tools

import (
	"context"
	"errors"
	"time"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/common/observability"
	"pv-query-router/internal/models"
)

// Registry maps tool names to adapters and records every run.
type Registry struct {
	tools  map[models.ToolName]Tool
	order  []models.ToolName
	obs    *observability.Observability
	logger logger.Logger
}

func NewRegistry(log logger.Logger, obs *observability.Observability, tools ...Tool) *Registry {
	if obs == nil {
		obs = observability.NewNoop()
	}
	r := &Registry{
		tools:  make(map[models.ToolName]Tool, len(tools)),
		obs:    obs,
		logger: logger.ForComponent(log, "tool-registry"),
	}
	for _, t := range tools {
		if _, dup := r.tools[t.Name()]; !dup {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name models.ToolName) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs one tool and returns its full result. The only error is an
// UNKNOWN_TOOL StandardError.
func (r *Registry) Execute(ctx context.Context, name models.ToolName, query string) (*models.ToolResult, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, apperrors.NewUnknownToolError(string(name))
	}

	ctx, span := r.obs.StartSpan(ctx, "tool.run", map[string]string{"tool": string(name)})
	start := time.Now()

	result := tool.Query(ctx, query)

	metrics.ToolRunDuration.WithLabelValues(string(name)).Observe(time.Since(start).Seconds())
	r.obs.RecordToolInvoked(ctx, string(name), result.Success)
	if result.Success {
		metrics.ToolRunsCompleted.WithLabelValues(string(name)).Inc()
		span.End(nil)
	} else {
		category := apperrors.GetErrorCategory(apperrors.ErrorCode(result.ErrorCode))
		metrics.ToolRunsFailed.WithLabelValues(string(name), category).Inc()
		span.End(errors.New(result.Message))
	}

	r.logger.Info("tool run finished", map[string]interface{}{
		"tool":     string(name),
		"success":  result.Success,
		"duration": time.Since(start).String(),
	})
	return result, nil
}

// Run is runTool: it returns the rendered message of one tool run.
func (r *Registry) Run(ctx context.Context, name models.ToolName, query string) (string, error) {
	result, err := r.Execute(ctx, name, query)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}
