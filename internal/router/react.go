package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/llm"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
)

const (
	DefaultMaxIterations    = 15
	DefaultMaxExecutionTime = 60 * time.Second

	msgBoundExceeded = "抱歉，推理步数或时间已达上限，未能得出完整答案。"
)

var stopSequences = []string{"\nObservation:"}

// ReActStrategy lets a model alternate between thoughts, tool actions and
// observations until it produces a final answer. The loop is bounded by an
// iteration count and a wall-clock budget; hitting either ends the run with a
// best-effort answer built from the last observation.
type ReActStrategy struct {
	llm              llm.Client
	registry         *tools.Registry
	maxIterations    int
	maxExecutionTime time.Duration
	errors           *apperrors.ErrorHandler
	logger           logger.Logger
}

func NewReActStrategy(client llm.Client, registry *tools.Registry, maxIterations int, maxExecutionTime time.Duration, log logger.Logger) *ReActStrategy {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if maxExecutionTime <= 0 {
		maxExecutionTime = DefaultMaxExecutionTime
	}
	log = log.With(map[string]interface{}{"strategy": StrategyReAct})
	return &ReActStrategy{
		llm:              client,
		registry:         registry,
		maxIterations:    maxIterations,
		maxExecutionTime: maxExecutionTime,
		errors:           apperrors.NewErrorHandler(log),
		logger:           log,
	}
}

func (s *ReActStrategy) Name() string { return StrategyReAct }

func (s *ReActStrategy) Execute(ctx context.Context, query string, history []models.Turn, emit EventSink) (string, error) {
	start := time.Now()
	boundCtx, cancel := context.WithTimeout(ctx, s.maxExecutionTime)
	defer cancel()

	prompt := buildPrompt(s.registry.List(), history, query)
	var (
		scratchpad      strings.Builder
		lastObservation string
		iterations      int
	)

	for iterations < s.maxIterations && time.Since(start) < s.maxExecutionTime {
		iterations++

		output, err := s.llm.Complete(boundCtx, []llm.Message{
			{Role: llm.RoleUser, Content: prompt + scratchpad.String()},
		}, stopSequences)
		if err != nil {
			if boundCtx.Err() != nil && ctx.Err() == nil {
				break
			}
			return "", err
		}

		step := ParseStep(output)
		if step.Final {
			emit(AgentThought{Text: step.Thought})
			emit(FinalAnswer{Text: step.Answer, Labeled: true})
			s.observeIterations(iterations)
			return step.Answer, nil
		}

		observation := step.ParseError
		if observation == "" {
			emit(AgentThought{Text: step.Thought})
			emit(ToolInvocation{Tool: step.Action, Input: step.Input})
			observation = s.runTool(boundCtx, step.Action, step.Input)
			emit(ToolObservation{Tool: step.Action, Output: observation})
			lastObservation = observation
		} else {
			s.logger.Warn("unparseable completion", map[string]interface{}{
				"iteration": iterations,
				"reason":    observation,
			})
		}

		scratchpad.WriteString(output)
		scratchpad.WriteString("\nObservation: ")
		scratchpad.WriteString(observation)
		scratchpad.WriteString("\nThought: ")
	}

	s.observeIterations(iterations)
	s.errors.Record(StrategyReAct, apperrors.NewReasoningBoundExceededError(iterations, time.Since(start)))

	answer := lastObservation
	if answer == "" {
		answer = msgBoundExceeded
	}
	emit(FinalAnswer{Text: answer, Labeled: true})
	return answer, nil
}

// runTool returns the observation for one action. The registry only fails on
// names it does not know.
func (s *ReActStrategy) runTool(ctx context.Context, name models.ToolName, input string) string {
	result, err := s.registry.Run(ctx, name, input)
	if err == nil {
		return result
	}
	names := make([]string, 0, len(s.registry.List()))
	for _, t := range s.registry.List() {
		names = append(names, string(t.Name()))
	}
	return fmt.Sprintf("%s is not a valid tool, try one of [%s].", name, strings.Join(names, ", "))
}

func (s *ReActStrategy) observeIterations(n int) {
	metrics.RouterIterations.WithLabelValues(StrategyReAct).Observe(float64(n))
}
